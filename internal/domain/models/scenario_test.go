package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCapitalOutlay(t *testing.T) {
	c := CapitalStructure{PurchasePrice: 2000000, ConstructionCapex: 3000000}
	if got := c.Outlay(); got != 5000000 {
		t.Fatalf("Outlay() = %v, want 5000000", got)
	}

	c.TotalInvestment = 4200000
	if got := c.Outlay(); got != 4200000 {
		t.Fatalf("explicit TotalInvestment ignored: got %v", got)
	}
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantErr bool
	}{
		{name: "default is valid", mutate: func(*Scenario) {}},
		{name: "negative tonnage", mutate: func(s *Scenario) { s.Feedstocks[0].TonsPerYear = -1 }, wantErr: true},
		{name: "methane above one", mutate: func(s *Scenario) { s.Feedstocks[0].MethaneFraction = 1.2 }, wantErr: true},
		{name: "debt fraction above one", mutate: func(s *Scenario) { s.Capital.DebtFraction = 1.5 }, wantErr: true},
		{name: "debt without term", mutate: func(s *Scenario) { s.Capital.LoanTermYears = 0 }, wantErr: true},
		{name: "no debt no term", mutate: func(s *Scenario) { s.Capital.DebtFraction = 0; s.Capital.LoanTermYears = 0 }},
		{name: "negative gate fee is fine", mutate: func(s *Scenario) { s.Feedstocks[0].UnitCost = -40 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultScenario()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidScenario) {
					t.Fatalf("Validate() = %v, want ErrInvalidScenario", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestActiveFeedstocksKeepsOrder(t *testing.T) {
	records := []FeedstockRecord{
		{Name: "a", TonsPerYear: 10},
		{Name: "b"},
		{Name: "c", TonsPerYear: 5},
	}

	active := ActiveFeedstocks(records)
	if len(active) != 2 || active[0].Name != "a" || active[1].Name != "c" {
		t.Fatalf("ActiveFeedstocks() = %+v", active)
	}
}

func TestMetricJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}{A: Some(1.5), B: NotApplicable()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":1.5,"b":null}` {
		t.Fatalf("unexpected encoding %s", data)
	}

	var back struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := back.A.Get(); !ok || v != 1.5 {
		t.Fatalf("A = %+v", back.A)
	}
	if back.B.Applicable {
		t.Fatalf("B should be not applicable")
	}
}
