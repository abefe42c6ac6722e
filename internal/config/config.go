package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mamadbah2/biomethane/internal/calc"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Model     ModelConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
	Market    MarketConfig
	Notify    NotifyConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string
}

// ModelConfig holds the calculation settings shared by every evaluation.
type ModelConfig struct {
	ScenarioFile       string
	ProjectionYears    int
	SensitivityLevels  []float64
	SensitivityDrivers []string
	CO2Policy          string
	CO2FlatFraction    float64
}

// SheetsConfig locates the feedstock inventory spreadsheet.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	InventoryRange  string
}

// Enabled reports whether the Sheets inventory source is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// MongoDBConfig holds settings for the feedstock catalog store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether the MongoDB catalog is configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// MarketConfig points at an optional price feed.
type MarketConfig struct {
	FeedURL string
	Token   string
}

// NotifyConfig holds the webhook receiving snapshot reports.
type NotifyConfig struct {
	WebhookURL string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	years, err := strconv.Atoi(getenvWithDefault("PROJECTION_YEARS", "15"))
	if err != nil {
		return nil, fmt.Errorf("PROJECTION_YEARS: %w", err)
	}

	levels, err := ParseLevels(getenvWithDefault("SENSITIVITY_LEVELS", "-0.2,-0.1,0,0.1,0.2"))
	if err != nil {
		return nil, fmt.Errorf("SENSITIVITY_LEVELS: %w", err)
	}

	flat, err := strconv.ParseFloat(getenvWithDefault("CO2_FLAT_FRACTION", "0.40"), 64)
	if err != nil {
		return nil, fmt.Errorf("CO2_FLAT_FRACTION: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Model: ModelConfig{
			ScenarioFile:       os.Getenv("SCENARIO_FILE"),
			ProjectionYears:    years,
			SensitivityLevels:  levels,
			SensitivityDrivers: ParseList(os.Getenv("SENSITIVITY_DRIVERS")),
			CO2Policy:          getenvWithDefault("CO2_POLICY", "methane_shortfall"),
			CO2FlatFraction:    flat,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			InventoryRange:  getenvWithDefault("SHEETS_INVENTORY_RANGE", "Feedstock!A2:F"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "biomethane"),
		},
		Market: MarketConfig{
			FeedURL: os.Getenv("MARKET_FEED_URL"),
			Token:   os.Getenv("MARKET_FEED_TOKEN"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 7 * * 1"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Model.ProjectionYears < 1 {
		return errors.New("PROJECTION_YEARS must be at least 1")
	}

	if err := ValidateLevels(c.Model.SensitivityLevels); err != nil {
		return fmt.Errorf("SENSITIVITY_LEVELS: %w", err)
	}

	for _, d := range c.Model.SensitivityDrivers {
		if _, err := calc.ParseDriver(d); err != nil {
			return fmt.Errorf("SENSITIVITY_DRIVERS: %w", err)
		}
	}

	switch c.Model.CO2Policy {
	case "methane_shortfall", "flat_fraction":
	default:
		return fmt.Errorf("CO2_POLICY %q is not supported", c.Model.CO2Policy)
	}

	if c.Model.CO2FlatFraction < 0 || c.Model.CO2FlatFraction > 1 {
		return errors.New("CO2_FLAT_FRACTION must be within [0,1]")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	if c.Sheets.Enabled() && c.Sheets.InventoryRange == "" {
		return errors.New("SHEETS_INVENTORY_RANGE must not be empty")
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Notify.WebhookURL != "" && c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

// ParseLevels reads a comma separated list of decimal perturbations.
func ParseLevels(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	levels := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parse level %q: %w", p, err)
		}
		levels = append(levels, v)
	}
	return levels, nil
}

// ValidateLevels requires at least two perturbation levels, each above -1 so
// a scaled driver keeps its sign.
func ValidateLevels(levels []float64) error {
	if len(levels) < 2 {
		return errors.New("needs at least two levels")
	}
	for _, l := range levels {
		if l <= -1 {
			return fmt.Errorf("level %v would flip a driver's sign", l)
		}
	}
	return nil
}

// ParseList splits a comma separated setting, dropping blank items.
func ParseList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
