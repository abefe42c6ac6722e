package models

import (
	"errors"
	"fmt"
)

// ErrInvalidScenario indicates the submitted inputs fail boundary validation.
var ErrInvalidScenario = errors.New("invalid scenario")

// ErrProfileNotFound indicates the catalog has no profile for a feedstock kind.
var ErrProfileNotFound = errors.New("feedstock profile not found")

// FeedstockRecord captures one line of the feedstock inventory.
//
// UnitCost is signed: a negative value is a gate fee received for accepting
// the material, a positive value is a purchase expense.
type FeedstockRecord struct {
	Name            string  `json:"name" yaml:"name"`
	Kind            string  `json:"kind,omitempty" yaml:"kind"`
	TonsPerYear     float64 `json:"tons_per_year" yaml:"tons_per_year"`
	YieldM3PerTon   float64 `json:"yield_m3_per_ton" yaml:"yield_m3_per_ton"`
	MethaneFraction float64 `json:"methane_fraction" yaml:"methane_fraction"`
	UnitCost        float64 `json:"unit_cost" yaml:"unit_cost"`
}

// Active reports whether the record takes part in aggregation.
func (r FeedstockRecord) Active() bool {
	return r.TonsPerYear > 0
}

// RawVolume is the raw biogas volume in m3/yr produced by the record.
func (r FeedstockRecord) RawVolume() float64 {
	return r.TonsPerYear * r.YieldM3PerTon
}

// Validate checks the domain bounds of a single record.
func (r FeedstockRecord) Validate() error {
	switch {
	case r.TonsPerYear < 0:
		return fmt.Errorf("%w: feedstock %q has negative tonnage", ErrInvalidScenario, r.Name)
	case r.YieldM3PerTon < 0:
		return fmt.Errorf("%w: feedstock %q has negative yield", ErrInvalidScenario, r.Name)
	case r.MethaneFraction < 0 || r.MethaneFraction > 1:
		return fmt.Errorf("%w: feedstock %q methane fraction %.4f outside [0,1]", ErrInvalidScenario, r.Name, r.MethaneFraction)
	}
	return nil
}

// FeedstockProfile holds reference yields for a kind of feedstock.
type FeedstockProfile struct {
	Kind            string  `bson:"kind" json:"kind"`
	Description     string  `bson:"description" json:"description"`
	YieldM3PerTon   float64 `bson:"yield_m3_per_ton" json:"yield_m3_per_ton"`
	MethaneFraction float64 `bson:"methane_fraction" json:"methane_fraction"`
}

// ActiveFeedstocks filters the configured slots down to the records with
// non-zero tonnage, preserving input order.
func ActiveFeedstocks(records []FeedstockRecord) []FeedstockRecord {
	active := make([]FeedstockRecord, 0, len(records))
	for _, r := range records {
		if r.Active() {
			active = append(active, r)
		}
	}
	return active
}
