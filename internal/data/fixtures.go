package data

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"option-live/internal/model"

	"gopkg.in/yaml.v3"
)

// Fixture is one recorded exchange with the calculation service.
type Fixture struct {
	Name     string                  `yaml:"name,omitempty" json:"name,omitempty"`
	Inputs   model.Inputs            `yaml:"inputs" json:"inputs"`
	Response model.CalculateResponse `yaml:"response" json:"response"`
	// Status overrides the HTTP status when replayed (0 means 200).
	Status int `yaml:"status,omitempty" json:"status,omitempty"`
	// DelayMS holds the reply back to simulate a slow service.
	DelayMS int64 `yaml:"delay_ms,omitempty" json:"delay_ms,omitempty"`
}

// FixtureSet is the on-disk fixture file shape (YAML; JSON also parses).
type FixtureSet struct {
	Service   string    `yaml:"service,omitempty" json:"service,omitempty"`
	UpdatedAt string    `yaml:"updated_at,omitempty" json:"updated_at,omitempty"` // ISO 8601 timestamp
	Fixtures  []Fixture `yaml:"fixtures" json:"fixtures"`
}

// Match returns the first fixture recorded for in.
func (s *FixtureSet) Match(in model.Inputs) (Fixture, bool) {
	if s == nil {
		return Fixture{}, false
	}
	for _, f := range s.Fixtures {
		if sameInputs(f.Inputs, in) {
			return f, true
		}
	}
	return Fixture{}, false
}

func sameInputs(a, b model.Inputs) bool {
	for _, f := range model.Fields {
		x, y := a.Get(f), b.Get(f)
		if math.Abs(x-y) > 1e-9*math.Max(1, math.Max(math.Abs(x), math.Abs(y))) {
			return false
		}
	}
	return true
}

// LoadFixtures loads fixtures from a YAML or JSON file
func LoadFixtures(filePath string) (*FixtureSet, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file: %w", err)
	}

	var set FixtureSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures file: %w", err)
	}

	return &set, nil
}

// SaveFixtures saves fixtures to a YAML file
func SaveFixtures(set *FixtureSet, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := yaml.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal fixtures: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write fixtures file: %w", err)
	}

	return nil
}

// GetDefaultFixturesPath returns the default path for the fixtures file
func GetDefaultFixturesPath() string {
	if path := os.Getenv("FIXTURES_FILE"); path != "" {
		return path
	}
	return "./data/fixtures.yaml"
}
