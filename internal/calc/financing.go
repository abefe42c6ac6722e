package calc

import (
	"math"

	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// AmortizedPayment is the level annual payment retiring principal over years.
//
// FORMULA: P = L × r / (1 - (1 + r)^-n), or L / n when r = 0
func AmortizedPayment(rate float64, years int, principal float64) float64 {
	if principal == 0 {
		return 0
	}
	if years < 1 {
		years = 1
	}
	n := float64(years)
	if rate == 0 {
		return principal / n
	}
	return principal * rate / (1 - math.Pow(1+rate, -n))
}

// Financing sizes the loan and its debt service against the annual EBITDA.
func Financing(c models.CapitalStructure, ebitda float64) models.FinancingResult {
	outlay := c.Outlay()
	loan := outlay * c.DebtFraction

	var service float64
	if loan != 0 {
		service = AmortizedPayment(c.InterestRate, c.LoanTermYears, loan)
	}

	coverage := models.NotApplicable()
	if service > 0 {
		coverage = models.Some(ebitda / service)
	}

	return models.FinancingResult{
		LoanAmount:          loan,
		EquityOutlay:        outlay - loan,
		AnnualDebtService:   service,
		NetCashFlow:         ebitda - service,
		DebtServiceCoverage: coverage,
	}
}
