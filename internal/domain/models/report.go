package models

import "time"

// SnapshotReport is the condensed figure set pushed by the scheduled job.
type SnapshotReport struct {
	EvaluationID    string    `json:"evaluation_id"`
	Source          string    `json:"source"`
	GasPrice        float64   `json:"gas_price"`
	CO2Price        float64   `json:"co2_price"`
	ActiveFeedstock int       `json:"active_feedstock"`
	EBITDA          float64   `json:"ebitda"`
	NetCashFlow     float64   `json:"net_cash_flow"`
	IRR             Metric    `json:"irr"`
	SimplePayback   Metric    `json:"simple_payback"`
	TopDriver       string    `json:"top_driver"`
	GeneratedAt     time.Time `json:"generated_at"`
}
