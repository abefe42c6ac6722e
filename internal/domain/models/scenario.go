package models

import "fmt"

// MarketAssumptions are the sale prices shared by every feedstock.
type MarketAssumptions struct {
	GasPrice float64 `json:"gas_price" yaml:"gas_price"` // $/m3 methane
	CO2Price float64 `json:"co2_price" yaml:"co2_price"` // $/ton CO2
}

// OperatingAssumptions describe cash operating costs.
type OperatingAssumptions struct {
	FixedOpex        float64 `json:"fixed_opex" yaml:"fixed_opex"`                 // $/yr
	VariableOpexRate float64 `json:"variable_opex_rate" yaml:"variable_opex_rate"` // $/m3 raw biogas
}

// CapitalStructure describes the upfront outlay and how it is financed.
type CapitalStructure struct {
	TotalInvestment   float64 `json:"total_investment" yaml:"total_investment"`
	PurchasePrice     float64 `json:"purchase_price" yaml:"purchase_price"`
	ConstructionCapex float64 `json:"construction_capex" yaml:"construction_capex"`
	DebtFraction      float64 `json:"debt_fraction" yaml:"debt_fraction"`
	InterestRate      float64 `json:"interest_rate" yaml:"interest_rate"`
	LoanTermYears     int     `json:"loan_term_years" yaml:"loan_term_years"`
}

// Outlay returns the total capital outlay. An explicit TotalInvestment wins,
// otherwise the purchase price and construction capex are summed.
func (c CapitalStructure) Outlay() float64 {
	if c.TotalInvestment != 0 {
		return c.TotalInvestment
	}
	return c.PurchasePrice + c.ConstructionCapex
}

// Scenario is the immutable input snapshot for one evaluation pass.
type Scenario struct {
	Feedstocks []FeedstockRecord    `json:"feedstocks" yaml:"feedstocks"`
	Market     MarketAssumptions    `json:"market" yaml:"market"`
	Operating  OperatingAssumptions `json:"operating" yaml:"operating"`
	Capital    CapitalStructure     `json:"capital" yaml:"capital"`
	CO2Policy  string               `json:"co2_policy,omitempty" yaml:"co2_policy"`
}

// Validate enforces the input boundary rules. The engine itself assumes
// validated input.
func (s Scenario) Validate() error {
	for _, f := range s.Feedstocks {
		if err := f.Validate(); err != nil {
			return err
		}
	}

	c := s.Capital
	switch {
	case c.Outlay() < 0:
		return fmt.Errorf("%w: capital outlay must not be negative", ErrInvalidScenario)
	case c.DebtFraction < 0 || c.DebtFraction > 1:
		return fmt.Errorf("%w: debt fraction %.4f outside [0,1]", ErrInvalidScenario, c.DebtFraction)
	case c.InterestRate < 0:
		return fmt.Errorf("%w: interest rate must not be negative", ErrInvalidScenario)
	case c.DebtFraction > 0 && c.LoanTermYears < 1:
		return fmt.Errorf("%w: loan term must be at least one year", ErrInvalidScenario)
	}

	if s.Operating.VariableOpexRate < 0 || s.Operating.FixedOpex < 0 {
		return fmt.Errorf("%w: operating costs must not be negative", ErrInvalidScenario)
	}

	return nil
}

// DefaultScenario mirrors the base case of the acquisition model: one
// 5,000 t/yr feedstock, a $2M purchase and $3M retrofit.
func DefaultScenario() Scenario {
	return Scenario{
		Feedstocks: []FeedstockRecord{
			{Name: "FS 1", TonsPerYear: 5000, YieldM3PerTon: 100, MethaneFraction: 0.55},
		},
		Market:    MarketAssumptions{GasPrice: 1.05, CO2Price: 45},
		Operating: OperatingAssumptions{FixedOpex: 180000, VariableOpexRate: 0.11},
		Capital: CapitalStructure{
			PurchasePrice:     2000000,
			ConstructionCapex: 3000000,
			DebtFraction:      0.6,
			InterestRate:      0.07,
			LoanTermYears:     10,
		},
	}
}
