package evaluation

import (
	"context"
	"fmt"
	"sort"

	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// Catalog resolves reference yields for a feedstock kind.
type Catalog interface {
	Profile(ctx context.Context, kind string) (models.FeedstockProfile, error)
}

// DefaultProfiles is the built-in reference table, used when no catalog
// store is configured and to seed one.
var DefaultProfiles = []models.FeedstockProfile{
	{Kind: "cattle_slurry", Description: "Cattle slurry", YieldM3PerTon: 25, MethaneFraction: 0.58},
	{Kind: "pig_slurry", Description: "Pig slurry", YieldM3PerTon: 22, MethaneFraction: 0.65},
	{Kind: "poultry_litter", Description: "Poultry litter", YieldM3PerTon: 90, MethaneFraction: 0.60},
	{Kind: "maize_silage", Description: "Maize silage", YieldM3PerTon: 200, MethaneFraction: 0.52},
	{Kind: "grass_silage", Description: "Grass silage", YieldM3PerTon: 180, MethaneFraction: 0.54},
	{Kind: "food_waste", Description: "Source-separated food waste", YieldM3PerTon: 120, MethaneFraction: 0.60},
}

// StaticCatalog is an in-memory Catalog.
type StaticCatalog struct {
	profiles map[string]models.FeedstockProfile
}

// NewStaticCatalog indexes the given profiles by kind.
func NewStaticCatalog(profiles []models.FeedstockProfile) *StaticCatalog {
	c := &StaticCatalog{profiles: make(map[string]models.FeedstockProfile, len(profiles))}
	for _, p := range profiles {
		c.profiles[p.Kind] = p
	}
	return c
}

// Profile implements Catalog.
func (c *StaticCatalog) Profile(_ context.Context, kind string) (models.FeedstockProfile, error) {
	p, ok := c.profiles[kind]
	if !ok {
		return models.FeedstockProfile{}, fmt.Errorf("%w: %s", models.ErrProfileNotFound, kind)
	}
	return p, nil
}

// Profiles lists the catalog ordered by kind.
func (c *StaticCatalog) Profiles(_ context.Context) ([]models.FeedstockProfile, error) {
	out := make([]models.FeedstockProfile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

// ProfileStore is a writable catalog backend.
type ProfileStore interface {
	Profiles(ctx context.Context) ([]models.FeedstockProfile, error)
	UpsertProfile(ctx context.Context, profile models.FeedstockProfile) error
}

// SeedCatalog inserts the given profiles whose kind is not yet stored and
// returns how many were added. Stored profiles are never overwritten.
func SeedCatalog(ctx context.Context, store ProfileStore, profiles []models.FeedstockProfile) (int, error) {
	existing, err := store.Profiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored profiles: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		known[p.Kind] = struct{}{}
	}

	added := 0
	for _, p := range profiles {
		if _, ok := known[p.Kind]; ok {
			continue
		}
		if err := store.UpsertProfile(ctx, p); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
