package calc

import (
	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// Drivers are the inputs the sensitivity sweep can perturb independently.
type Drivers struct {
	GasPrice                float64
	FixedOpex               float64
	VariableOpexRate        float64
	FeedstockCostMultiplier float64
	CO2PriceMultiplier      float64
}

// BaseDrivers extracts the unperturbed drivers of a scenario.
func BaseDrivers(s models.Scenario) Drivers {
	return Drivers{
		GasPrice:                s.Market.GasPrice,
		FixedOpex:               s.Operating.FixedOpex,
		VariableOpexRate:        s.Operating.VariableOpexRate,
		FeedstockCostMultiplier: 1,
		CO2PriceMultiplier:      1,
	}
}

// Calculator evaluates the annual P&L for a fixed feedstock set and CO2
// price. The CO2 price only moves through Drivers.CO2PriceMultiplier, which
// the default sweep leaves at 1.
type Calculator struct {
	active   []models.FeedstockRecord
	co2Price float64
	policy   CO2Policy
}

// NewCalculator filters the records to the active set and binds the CO2
// price and policy. A nil policy selects MethaneShortfall.
func NewCalculator(records []models.FeedstockRecord, co2Price float64, policy CO2Policy) *Calculator {
	if policy == nil {
		policy = MethaneShortfall{}
	}
	return &Calculator{
		active:   models.ActiveFeedstocks(records),
		co2Price: co2Price,
		policy:   policy,
	}
}

// ActiveCount is the number of records taking part in the evaluation.
func (c *Calculator) ActiveCount() int { return len(c.active) }

// Policy returns the CO2 policy in use.
func (c *Calculator) Policy() CO2Policy { return c.policy }

// Evaluate recomputes the whole P&L for the given drivers.
//
// FORMULA: EBITDA = (RevGas + RevCO2) + GateFees - Purchases - (Fixed + Raw × VarRate)
func (c *Calculator) Evaluate(d Drivers) models.AggregateResult {
	y := AggregateYields(c.active, c.policy)
	rev := SalesRevenue(y, d.GasPrice, c.co2Price*d.CO2PriceMultiplier)
	costs := SplitCosts(c.active, d.FeedstockCostMultiplier)
	opex := d.FixedOpex + y.RawVolume*d.VariableOpexRate

	return models.AggregateResult{
		TotalRawVolume:     y.RawVolume,
		TotalMethaneVolume: y.MethaneVolume,
		TotalCO2Mass:       y.CO2Mass,
		RevenueGas:         rev.Gas,
		RevenueCO2:         rev.CO2,
		GateFeeIncome:      costs.GateFeeIncome,
		PurchaseExpense:    costs.PurchaseExpense,
		TotalOpex:          opex,
		EBITDA:             rev.Total() + costs.GateFeeIncome - costs.PurchaseExpense - opex,
	}
}

// EBITDA is Evaluate reduced to its bottom line.
func (c *Calculator) EBITDA(d Drivers) float64 {
	return c.Evaluate(d).EBITDA
}
