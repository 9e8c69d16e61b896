package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
)

// Settings is the per-engine configuration document. Each section maps to
// one engine's config; composite lists the default aggregation weights.
type Settings struct {
	Risk      domain.RiskConfig     `yaml:"risk"`
	Exposure  domain.ExposureConfig `yaml:"exposure"`
	Drift     domain.DriftConfig    `yaml:"drift"`
	Composite []domain.EngineWeight `yaml:"composite"`
}

// DefaultSettings returns the documented defaults for all engines and the
// default composite weighting.
func DefaultSettings() Settings {
	return Settings{
		Risk:     domain.DefaultRiskConfig(),
		Exposure: domain.DefaultExposureConfig(),
		Drift:    domain.DefaultDriftConfig(),
		Composite: []domain.EngineWeight{
			{Engine: "risk", Weight: 0.4},
			{Engine: "exposure", Weight: 0.35},
			{Engine: "drift", Weight: 0.25},
		},
	}
}

// LoadSettings reads a YAML settings file over the defaults. Unknown keys
// are rejected rather than silently ignored; out-of-range values fail the
// engines' validation at Configure time.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	for _, ew := range settings.Composite {
		if ew.Engine == "" {
			return Settings{}, fmt.Errorf("composite entry missing engine name")
		}
		if ew.Weight < 0 {
			return Settings{}, fmt.Errorf("composite weight for %q must be non-negative", ew.Engine)
		}
	}
	return settings, nil
}
