package models

import (
	"encoding/json"
	"time"
)

// Metric is a derived figure that may be undefined, e.g. payback on a
// loss-making plant or an IRR with no real root.
type Metric struct {
	Value      float64
	Applicable bool
}

// Some wraps a computed value.
func Some(v float64) Metric { return Metric{Value: v, Applicable: true} }

// NotApplicable is the sentinel for a metric that cannot be computed.
func NotApplicable() Metric { return Metric{} }

// Get returns the value and whether it is defined.
func (m Metric) Get() (float64, bool) { return m.Value, m.Applicable }

// MarshalJSON encodes a number, or null when not applicable.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Applicable {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = NotApplicable()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Some(v)
	return nil
}

// AggregateResult is the annual run-rate P&L of one evaluation.
type AggregateResult struct {
	TotalRawVolume     float64 `json:"total_raw_volume"`
	TotalMethaneVolume float64 `json:"total_methane_volume"`
	TotalCO2Mass       float64 `json:"total_co2_mass"`
	RevenueGas         float64 `json:"revenue_gas"`
	RevenueCO2         float64 `json:"revenue_co2"`
	GateFeeIncome      float64 `json:"gate_fee_income"`
	PurchaseExpense    float64 `json:"purchase_expense"`
	TotalOpex          float64 `json:"total_opex"`
	EBITDA             float64 `json:"ebitda"`
}

// FinancingResult is the debt side of the capital structure.
type FinancingResult struct {
	LoanAmount          float64 `json:"loan_amount"`
	EquityOutlay        float64 `json:"equity_outlay"`
	AnnualDebtService   float64 `json:"annual_debt_service"`
	NetCashFlow         float64 `json:"net_cash_flow"`
	DebtServiceCoverage Metric  `json:"debt_service_coverage"`
}

// ReturnMetrics summarise the project return on the full outlay.
type ReturnMetrics struct {
	TotalInvestment float64 `json:"total_investment"`
	HorizonYears    int     `json:"horizon_years"`
	SimplePayback   Metric  `json:"simple_payback"`
	IRR             Metric  `json:"irr"`
}

// LevelValue pairs a perturbation level with the value it produced.
type LevelValue struct {
	Level float64 `json:"level"`
	Value float64 `json:"value"`
}

// SensitivityRow is one driver of the tornado chart.
type SensitivityRow struct {
	Driver      string       `json:"driver"`
	Values      []LevelValue `json:"values"`
	ImpactRange float64      `json:"impact_range"`
	LowDelta    float64      `json:"low_delta"`
	HighDelta   float64      `json:"high_delta"`
	Rank        int          `json:"rank"`
}

// CapexLevel is the outcome of perturbing the capital outlay alone.
type CapexLevel struct {
	Level         float64 `json:"level"`
	Outlay        float64 `json:"outlay"`
	IRR           Metric  `json:"irr"`
	SimplePayback Metric  `json:"simple_payback"`
}

// SensitivityReport holds the ranked EBITDA rows plus the capex row, which
// measures return impact and is not comparable with the EBITDA rows.
type SensitivityReport struct {
	Levels     []float64        `json:"levels"`
	BaseEBITDA float64          `json:"base_ebitda"`
	Rows       []SensitivityRow `json:"rows"`
	Capex      []CapexLevel     `json:"capex"`
}

// Evaluation is the full output for one input snapshot.
type Evaluation struct {
	ID          string            `json:"id"`
	EvaluatedAt time.Time         `json:"evaluated_at"`
	CO2Policy   string            `json:"co2_policy"`
	Active      int               `json:"active_feedstocks"`
	Aggregate   AggregateResult   `json:"aggregate"`
	Financing   FinancingResult   `json:"financing"`
	Returns     ReturnMetrics     `json:"returns"`
	Sensitivity SensitivityReport `json:"sensitivity"`
}
