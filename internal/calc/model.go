package calc

import (
	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// Options tune a model run. Zero values select the defaults.
type Options struct {
	Policy       CO2Policy
	HorizonYears int
	Levels       []float64
	Drivers      []Driver
}

// Result is everything derived from one scenario snapshot.
type Result struct {
	Policy      string
	Active      int
	Aggregate   models.AggregateResult
	Financing   models.FinancingResult
	Returns     models.ReturnMetrics
	Sensitivity models.SensitivityReport
}

// Run evaluates the base case, financing, returns and the full sensitivity
// sweep of a scenario that has already passed validation.
func Run(s models.Scenario, opts Options) (Result, error) {
	if opts.HorizonYears < 1 {
		opts.HorizonYears = DefaultHorizonYears
	}

	calculator := NewCalculator(s.Feedstocks, s.Market.CO2Price, opts.Policy)
	base := BaseDrivers(s)
	aggregate := calculator.Evaluate(base)
	outlay := s.Capital.Outlay()

	sensitivity, err := Sweep(calculator, base, opts.Drivers, opts.Levels)
	if err != nil {
		return Result{}, err
	}
	sensitivity.Capex = CapexSweep(outlay, aggregate.EBITDA, opts.HorizonYears, sensitivity.Levels)

	return Result{
		Policy:      calculator.Policy().Name(),
		Active:      calculator.ActiveCount(),
		Aggregate:   aggregate,
		Financing:   Financing(s.Capital, aggregate.EBITDA),
		Returns:     Returns(outlay, aggregate.EBITDA, opts.HorizonYears),
		Sensitivity: sensitivity,
	}, nil
}
