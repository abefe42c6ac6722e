package calc

import (
	"fmt"
	"math"
	"sort"

	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// Driver names one perturbable input of the EBITDA calculation.
type Driver string

const (
	DriverGasPrice         Driver = "gas_price"
	DriverFixedOpex        Driver = "fixed_opex"
	DriverVariableOpexRate Driver = "variable_opex_rate"
	DriverFeedstockCost    Driver = "feedstock_cost"
	DriverCO2Price         Driver = "co2_price"
)

// DefaultDrivers lists the swept EBITDA drivers in presentation order. The
// CO2 price is held fixed unless DriverCO2Price is requested explicitly.
var DefaultDrivers = []Driver{DriverGasPrice, DriverFixedOpex, DriverVariableOpexRate, DriverFeedstockCost}

// AllDrivers is DefaultDrivers plus the opt-in drivers.
var AllDrivers = append(append([]Driver(nil), DefaultDrivers...), DriverCO2Price)

// DefaultLevels are the canonical one-at-a-time perturbations.
var DefaultLevels = []float64{-0.20, -0.10, 0, 0.10, 0.20}

// Apply scales this driver by (1 + level) and leaves the others at base.
func (d Driver) Apply(base Drivers, level float64) (Drivers, error) {
	factor := 1 + level
	switch d {
	case DriverGasPrice:
		base.GasPrice *= factor
	case DriverFixedOpex:
		base.FixedOpex *= factor
	case DriverVariableOpexRate:
		base.VariableOpexRate *= factor
	case DriverFeedstockCost:
		base.FeedstockCostMultiplier *= factor
	case DriverCO2Price:
		base.CO2PriceMultiplier *= factor
	default:
		return Drivers{}, fmt.Errorf("unknown sensitivity driver %q", d)
	}
	return base, nil
}

// ParseDriver maps a wire name onto a Driver.
func ParseDriver(name string) (Driver, error) {
	for _, d := range AllDrivers {
		if string(d) == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown sensitivity driver %q", name)
}

// EBITDAEvaluator is the only dependency of the sweep.
type EBITDAEvaluator interface {
	EBITDA(d Drivers) float64
}

// Sweep runs the one-at-a-time sensitivity of EBITDA and ranks the drivers
// for a tornado chart. Empty drivers or levels fall back to the defaults.
//
// For each driver the impact range is EBITDA(highest level) - EBITDA(lowest
// level); the low and high deltas are measured from the base case.
func Sweep(eval EBITDAEvaluator, base Drivers, drivers []Driver, levels []float64) (models.SensitivityReport, error) {
	if len(drivers) == 0 {
		drivers = DefaultDrivers
	}
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	lo, hi := levelBounds(levels)

	report := models.SensitivityReport{
		Levels:     append([]float64(nil), levels...),
		BaseEBITDA: eval.EBITDA(base),
		Rows:       make([]models.SensitivityRow, 0, len(drivers)),
	}

	for _, d := range drivers {
		row := models.SensitivityRow{Driver: string(d), Values: make([]models.LevelValue, 0, len(levels))}
		for _, level := range levels {
			perturbed, err := d.Apply(base, level)
			if err != nil {
				return models.SensitivityReport{}, err
			}
			row.Values = append(row.Values, models.LevelValue{Level: level, Value: eval.EBITDA(perturbed)})
		}

		low, high := row.Values[lo].Value, row.Values[hi].Value
		row.ImpactRange = high - low
		row.LowDelta = report.BaseEBITDA - low
		row.HighDelta = high - report.BaseEBITDA
		report.Rows = append(report.Rows, row)
	}

	RankTornado(report.Rows)
	return report, nil
}

// RankTornado orders rows by descending |ImpactRange|, ties kept in input
// order, and assigns 1-based ranks.
func RankTornado(rows []models.SensitivityRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return math.Abs(rows[i].ImpactRange) > math.Abs(rows[j].ImpactRange)
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

// CapexSweep perturbs the capital outlay with EBITDA held at base and
// reports the effect on IRR and payback.
func CapexSweep(investment, ebitda float64, years int, levels []float64) []models.CapexLevel {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	out := make([]models.CapexLevel, 0, len(levels))
	for _, level := range levels {
		outlay := investment * (1 + level)
		r := Returns(outlay, ebitda, years)
		out = append(out, models.CapexLevel{
			Level:         level,
			Outlay:        outlay,
			IRR:           r.IRR,
			SimplePayback: r.SimplePayback,
		})
	}
	return out
}

func levelBounds(levels []float64) (lo, hi int) {
	for i, l := range levels {
		if l < levels[lo] {
			lo = i
		}
		if l > levels[hi] {
			hi = i
		}
	}
	return lo, hi
}
