package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// LoadScenario reads a YAML scenario file. An empty path returns the built-in
// default scenario.
func LoadScenario(path string) (models.Scenario, error) {
	if path == "" {
		return models.DefaultScenario(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.Scenario{}, fmt.Errorf("read scenario %s: %w", path, err)
	}

	return ParseScenario(data)
}

// ParseScenario decodes a YAML scenario and validates it.
func ParseScenario(data []byte) (models.Scenario, error) {
	var s models.Scenario
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return models.Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return models.Scenario{}, err
	}
	return s, nil
}
