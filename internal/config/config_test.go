package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mamadbah2/biomethane/internal/domain/models"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "PROJECTION_YEARS", "SENSITIVITY_LEVELS", "CO2_POLICY", "GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID", "MONGODB_URI"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Model.ProjectionYears != 15 {
		t.Errorf("projection years = %d", cfg.Model.ProjectionYears)
	}
	if len(cfg.Model.SensitivityLevels) != 5 || cfg.Model.SensitivityLevels[0] != -0.2 {
		t.Errorf("levels = %v", cfg.Model.SensitivityLevels)
	}
	if cfg.Sheets.Enabled() || cfg.MongoDB.Enabled() {
		t.Errorf("optional integrations enabled without settings")
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("CO2_POLICY", "")
	os.Unsetenv("APP_PORT")
	os.Unsetenv("CO2_POLICY")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("APP_PORT=9090\nCO2_POLICY=flat_fraction\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Model.CO2Policy != "flat_fraction" {
		t.Fatalf("env file not applied: %+v", cfg.Model)
	}
}

func TestValidateRejects(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Model:     ModelConfig{ProjectionYears: 15, SensitivityLevels: []float64{-0.2, 0, 0.2}, CO2Policy: "methane_shortfall", CO2FlatFraction: 0.4},
			Sheets:    SheetsConfig{InventoryRange: "Feedstock!A2:F"},
			Reporting: ReportingConfig{CronSchedule: "0 7 * * 1", Timezone: "UTC"},
		}
	}

	tests := map[string]func(*Config){
		"no port":          func(c *Config) { c.Server.Port = "" },
		"zero horizon":     func(c *Config) { c.Model.ProjectionYears = 0 },
		"single level":     func(c *Config) { c.Model.SensitivityLevels = []float64{0} },
		"sign flip":        func(c *Config) { c.Model.SensitivityLevels = []float64{-1, 0} },
		"unknown policy":   func(c *Config) { c.Model.CO2Policy = "fixed" },
		"unknown driver":   func(c *Config) { c.Model.SensitivityDrivers = []string{"tax_rate"} },
		"half sheets":      func(c *Config) { c.Sheets.SpreadsheetID = "abc" },
		"missing timezone": func(c *Config) { c.Reporting.Timezone = "" },
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestParseLevels(t *testing.T) {
	levels, err := ParseLevels(" -0.3, 0 ,0.3,")
	if err != nil {
		t.Fatalf("ParseLevels: %v", err)
	}
	if len(levels) != 3 || levels[0] != -0.3 || levels[2] != 0.3 {
		t.Fatalf("levels = %v", levels)
	}
	if _, err := ParseLevels("a,b"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateLevels(t *testing.T) {
	tests := map[string]struct {
		levels  []float64
		wantErr bool
	}{
		"default sweep": {levels: []float64{-0.2, -0.1, 0, 0.1, 0.2}},
		"deep cut":      {levels: []float64{-0.99, 0}},
		"single level":  {levels: []float64{0.1}, wantErr: true},
		"full cut":      {levels: []float64{-1, 0}, wantErr: true},
		"beyond zero":   {levels: []float64{-1.5, 0}, wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateLevels(tc.levels)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateLevels(%v) err = %v, wantErr %v", tc.levels, err, tc.wantErr)
			}
		})
	}
}

func TestParseScenario(t *testing.T) {
	doc := []byte(`
feedstocks:
  - name: Dairy slurry
    kind: cattle_slurry
    tons_per_year: 12000
    yield_m3_per_ton: 25
    methane_fraction: 0.58
    unit_cost: 0
  - name: Food waste
    tons_per_year: 3000
    yield_m3_per_ton: 120
    methane_fraction: 0.6
    unit_cost: -45
market:
  gas_price: 1.1
  co2_price: 50
operating:
  fixed_opex: 200000
  variable_opex_rate: 0.1
capital:
  purchase_price: 2000000
  construction_capex: 3500000
  debt_fraction: 0.5
  interest_rate: 0.065
  loan_term_years: 12
co2_policy: flat_fraction
`)

	s, err := ParseScenario(doc)
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}
	if len(s.Feedstocks) != 2 || s.Feedstocks[1].UnitCost != -45 || s.Feedstocks[0].Kind != "cattle_slurry" {
		t.Fatalf("feedstocks = %+v", s.Feedstocks)
	}
	if s.Capital.Outlay() != 5500000 || s.Capital.LoanTermYears != 12 {
		t.Fatalf("capital = %+v", s.Capital)
	}
	if s.CO2Policy != "flat_fraction" {
		t.Fatalf("co2 policy = %q", s.CO2Policy)
	}
}

func TestParseScenarioRejectsInvalid(t *testing.T) {
	_, err := ParseScenario([]byte("feedstocks:\n  - name: bad\n    tons_per_year: -5\n"))
	if !errors.Is(err, models.ErrInvalidScenario) {
		t.Fatalf("err = %v, want ErrInvalidScenario", err)
	}

	if _, err := ParseScenario([]byte("unknown_block: 1\n")); err == nil {
		t.Fatalf("expected strict decode error")
	}
}

func TestLoadScenarioDefault(t *testing.T) {
	s, err := LoadScenario("")
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if s.Capital.Outlay() != 5000000 {
		t.Fatalf("default outlay = %v", s.Capital.Outlay())
	}
}

func TestParseList(t *testing.T) {
	got := ParseList(" gas_price, ,co2_price,")
	if len(got) != 2 || got[0] != "gas_price" || got[1] != "co2_price" {
		t.Fatalf("ParseList = %v", got)
	}
	if ParseList("") != nil {
		t.Fatalf("empty setting should give nil")
	}
}
