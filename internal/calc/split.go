package calc

import (
	"math"

	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// CostSplit separates signed feedstock costs into income and expense.
type CostSplit struct {
	GateFeeIncome   float64
	PurchaseExpense float64
}

// SplitCosts classifies every record by the sign of its scaled unit cost.
//
// FORMULA: GateFees = Σ |tons × cost × m|  where cost < 0
//
//	Purchases = Σ tons × cost × m    where cost > 0
//
// The multiplier m is expected to be positive, so it rescales magnitudes
// without moving a record between the two buckets. Zero-cost records
// contribute to neither.
func SplitCosts(active []models.FeedstockRecord, multiplier float64) CostSplit {
	var split CostSplit
	for _, r := range active {
		cost := r.UnitCost * multiplier
		switch {
		case cost < 0:
			split.GateFeeIncome += math.Abs(r.TonsPerYear * cost)
		case cost > 0:
			split.PurchaseExpense += r.TonsPerYear * cost
		}
	}
	return split
}

// Revenue is the sales side of the P&L.
type Revenue struct {
	Gas float64
	CO2 float64
}

// Total returns gas plus CO2 revenue.
func (r Revenue) Total() float64 { return r.Gas + r.CO2 }

// SalesRevenue prices the methane and CO2 streams.
//
// FORMULA: RevGas = CH4 × gasPrice, RevCO2 = CO2 × co2Price
func SalesRevenue(y Yields, gasPrice, co2Price float64) Revenue {
	return Revenue{
		Gas: y.MethaneVolume * gasPrice,
		CO2: y.CO2Mass * co2Price,
	}
}
