package evaluation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mamadbah2/biomethane/internal/domain/models"
)

type fakeRecorder struct {
	outcomes []string
	ebitda   float64
	active   int
}

func (f *fakeRecorder) ObserveEvaluation(operation, outcome string, _ time.Duration) {
	f.outcomes = append(f.outcomes, operation+":"+outcome)
}

func (f *fakeRecorder) SetBaseCase(ebitda float64, active int) {
	f.ebitda = ebitda
	f.active = active
}

type failingCatalog struct{ err error }

func (f failingCatalog) Profile(context.Context, string) (models.FeedstockProfile, error) {
	return models.FeedstockProfile{}, f.err
}

func newTestService(catalog Catalog, rec Recorder) *Service {
	svc := NewService(catalog, rec, Settings{}, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "eval-1" }
	return svc
}

func TestEvaluateDefaultScenario(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(nil, rec)

	eval, err := svc.Evaluate(context.Background(), models.DefaultScenario())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if eval.ID != "eval-1" {
		t.Errorf("ID = %q, want eval-1", eval.ID)
	}
	if eval.CO2Policy != "methane_shortfall" {
		t.Errorf("CO2Policy = %q, want methane_shortfall", eval.CO2Policy)
	}
	if math.Abs(eval.Aggregate.EBITDA-66017.75) > 1e-6 {
		t.Errorf("EBITDA = %.4f, want 66017.75", eval.Aggregate.EBITDA)
	}
	if eval.Returns.TotalInvestment != 5000000 {
		t.Errorf("TotalInvestment = %v, want 5000000", eval.Returns.TotalInvestment)
	}
	if len(eval.Sensitivity.Rows) != 4 || len(eval.Sensitivity.Capex) != 5 {
		t.Errorf("sensitivity rows=%d capex=%d, want 4 and 5", len(eval.Sensitivity.Rows), len(eval.Sensitivity.Capex))
	}

	if len(rec.outcomes) != 1 || rec.outcomes[0] != "evaluate:ok" {
		t.Errorf("outcomes = %v, want [evaluate:ok]", rec.outcomes)
	}
	if rec.active != 1 || math.Abs(rec.ebitda-66017.75) > 1e-6 {
		t.Errorf("base case = (%v, %d), want (66017.75, 1)", rec.ebitda, rec.active)
	}
}

func TestEvaluateRejectsInvalidScenario(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(nil, rec)

	s := models.DefaultScenario()
	s.Feedstocks[0].MethaneFraction = 55

	_, err := svc.Evaluate(context.Background(), s)
	if !errors.Is(err, models.ErrInvalidScenario) {
		t.Fatalf("err = %v, want ErrInvalidScenario", err)
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != "evaluate:invalid" {
		t.Errorf("outcomes = %v, want [evaluate:invalid]", rec.outcomes)
	}
}

func TestEvaluateScenarioPolicyOverridesSettings(t *testing.T) {
	svc := NewService(nil, nil, Settings{CO2Policy: "methane_shortfall", CO2FlatFraction: 0.4}, nil)

	s := models.DefaultScenario()
	s.CO2Policy = "flat_fraction"

	eval, err := svc.Evaluate(context.Background(), s)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if eval.CO2Policy != "flat_fraction" {
		t.Fatalf("CO2Policy = %q, want flat_fraction", eval.CO2Policy)
	}
	// 500000 m3 x 0.40 x 0.00198 x 0.90
	if math.Abs(eval.Aggregate.TotalCO2Mass-356.4) > 1e-6 {
		t.Errorf("TotalCO2Mass = %.4f, want 356.4", eval.Aggregate.TotalCO2Mass)
	}

	s.CO2Policy = "bogus"
	if _, err := svc.Evaluate(context.Background(), s); !errors.Is(err, models.ErrInvalidScenario) {
		t.Errorf("unknown policy err = %v, want ErrInvalidScenario", err)
	}
}

func TestResolveFeedstocksFromCatalog(t *testing.T) {
	svc := newTestService(NewStaticCatalog(DefaultProfiles), nil)

	records := []models.FeedstockRecord{
		{Name: "canteen", Kind: "food_waste", TonsPerYear: 1000, UnitCost: -40},
		{Name: "own yield", Kind: "food_waste", TonsPerYear: 10, YieldM3PerTon: 99, MethaneFraction: 0.5},
		{Name: "idle slot", Kind: "unknown_kind"},
	}

	got, err := svc.ResolveFeedstocks(context.Background(), records)
	if err != nil {
		t.Fatalf("ResolveFeedstocks: %v", err)
	}
	if got[0].YieldM3PerTon != 120 || got[0].MethaneFraction != 0.60 {
		t.Errorf("resolved = %+v, want food_waste profile values", got[0])
	}
	if got[1].YieldM3PerTon != 99 || got[1].MethaneFraction != 0.5 {
		t.Errorf("explicit values overwritten: %+v", got[1])
	}
	if records[0].YieldM3PerTon != 0 {
		t.Errorf("input slice mutated")
	}
}

func TestResolveFeedstocksUnknownKind(t *testing.T) {
	svc := newTestService(NewStaticCatalog(DefaultProfiles), nil)

	_, err := svc.ResolveFeedstocks(context.Background(), []models.FeedstockRecord{{Name: "x", Kind: "moon_dust", TonsPerYear: 1}})
	if !errors.Is(err, models.ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}

	noCatalog := newTestService(nil, nil)
	_, err = noCatalog.ResolveFeedstocks(context.Background(), []models.FeedstockRecord{{Name: "x", Kind: "food_waste", TonsPerYear: 1}})
	if !errors.Is(err, models.ErrProfileNotFound) {
		t.Fatalf("no catalog err = %v, want ErrProfileNotFound", err)
	}
}

func TestEvaluateCatalogFailureIsError(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(failingCatalog{err: errors.New("connection reset")}, rec)

	s := models.DefaultScenario()
	s.Feedstocks[0] = models.FeedstockRecord{Name: "silage", Kind: "maize_silage", TonsPerYear: 100}

	if _, err := svc.Evaluate(context.Background(), s); err == nil {
		t.Fatal("expected catalog error")
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != "evaluate:error" {
		t.Errorf("outcomes = %v, want [evaluate:error]", rec.outcomes)
	}
}

func TestSensitivitySelectedDrivers(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(nil, rec)

	report, err := svc.Sensitivity(context.Background(), models.DefaultScenario(), []string{"fixed_opex", "gas_price"})
	if err != nil {
		t.Fatalf("Sensitivity: %v", err)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(report.Rows))
	}
	if report.Rows[0].Driver != "gas_price" || report.Rows[0].Rank != 1 {
		t.Errorf("top row = %+v, want gas_price ranked 1", report.Rows[0])
	}

	if _, err := svc.Sensitivity(context.Background(), models.DefaultScenario(), []string{"tax_rate"}); !errors.Is(err, models.ErrInvalidScenario) {
		t.Errorf("unknown driver err = %v, want ErrInvalidScenario", err)
	}
	if len(rec.outcomes) != 2 || rec.outcomes[1] != "sensitivity:invalid" {
		t.Errorf("outcomes = %v", rec.outcomes)
	}
}

func TestConfiguredDriversIncludeCO2Price(t *testing.T) {
	svc := NewService(nil, nil, Settings{Drivers: []string{"gas_price", "co2_price"}}, nil)

	eval, err := svc.Evaluate(context.Background(), models.DefaultScenario())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(eval.Sensitivity.Rows) != 2 || eval.Sensitivity.Rows[1].Driver != "co2_price" {
		t.Fatalf("rows = %+v", eval.Sensitivity.Rows)
	}

	report, err := svc.Sensitivity(context.Background(), models.DefaultScenario(), nil)
	if err != nil {
		t.Fatalf("Sensitivity: %v", err)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("sensitivity rows = %d, want configured 2", len(report.Rows))
	}
}
