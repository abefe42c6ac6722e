package calc

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// DefaultHorizonYears is the length of the flat cash-flow projection.
const DefaultHorizonYears = 15

const (
	rootImagTolerance = 1e-9
	newtonIterations  = 50
	newtonTolerance   = 1e-12
)

// SimplePayback is outlay over annual EBITDA, defined only for EBITDA > 0.
func SimplePayback(investment, ebitda float64) models.Metric {
	if ebitda <= 0 {
		return models.NotApplicable()
	}
	return models.Some(investment / ebitda)
}

// FlatCashFlows builds [-investment, annual, annual, ...] over years periods.
func FlatCashFlows(investment, annual float64, years int) []float64 {
	if years < 0 {
		years = 0
	}
	flows := make([]float64, years+1)
	flows[0] = -investment
	for t := 1; t <= years; t++ {
		flows[t] = annual
	}
	return flows
}

// NPV discounts a cash-flow stream whose first element falls at t = 0.
//
// FORMULA: NPV = Σ CF_t / (1 + r)^t
func NPV(rate float64, cashFlows []float64) float64 {
	var npv float64
	for t, cf := range cashFlows {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}

// IRR solves NPV(r) = 0.
//
// With x = 1/(1+r) the NPV is the polynomial Σ CF_t x^t. Its roots are the
// eigenvalues of the companion matrix; only real positive roots map to a
// rate above -100%. When several qualify the rate closest to zero wins, and
// it is refined by Newton steps on the NPV. No admissible root, or a
// factorisation failure, gives NotApplicable.
func IRR(cashFlows []float64) models.Metric {
	n := len(cashFlows)
	for n > 0 && cashFlows[n-1] == 0 {
		n--
	}
	if n < 2 {
		return models.NotApplicable()
	}
	flows := cashFlows[:n]
	deg := n - 1
	lead := flows[deg]

	companion := mat.NewDense(deg, deg, nil)
	for j := 0; j < deg; j++ {
		companion.Set(0, j, -flows[deg-1-j]/lead)
	}
	for i := 1; i < deg; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return models.NotApplicable()
	}

	var (
		best  float64
		found bool
	)
	for _, z := range eig.Values(nil) {
		x := real(z)
		if x <= 0 || math.Abs(imag(z)) > rootImagTolerance*math.Max(1, math.Abs(x)) {
			continue
		}
		rate := 1/x - 1
		if !found || math.Abs(rate) < math.Abs(best) {
			best, found = rate, true
		}
	}
	if !found {
		return models.NotApplicable()
	}

	rate := polishRate(best, flows)
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= -1 {
		return models.NotApplicable()
	}
	return models.Some(rate)
}

// polishRate runs Newton iterations on the NPV, keeping the starting guess
// if the iteration leaves the domain.
func polishRate(guess float64, flows []float64) float64 {
	rate := guess
	for i := 0; i < newtonIterations; i++ {
		var f, df float64
		for t, cf := range flows {
			disc := math.Pow(1+rate, -float64(t))
			f += cf * disc
			df -= float64(t) * cf * disc / (1 + rate)
		}
		if df == 0 {
			break
		}
		step := f / df
		next := rate - step
		if math.IsNaN(next) || next <= -1 {
			return guess
		}
		rate = next
		if math.Abs(step) < newtonTolerance {
			break
		}
	}
	return rate
}

// Returns computes payback and IRR for a flat EBITDA annuity.
func Returns(investment, ebitda float64, years int) models.ReturnMetrics {
	if years < 1 {
		years = DefaultHorizonYears
	}
	return models.ReturnMetrics{
		TotalInvestment: investment,
		HorizonYears:    years,
		SimplePayback:   SimplePayback(investment, ebitda),
		IRR:             IRR(FlatCashFlows(investment, ebitda, years)),
	}
}
