package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings_EmptyPathGivesDefaults(t *testing.T) {
	settings, err := LoadSettings("")
	require.NoError(t, err)

	assert.NoError(t, settings.Risk.Validate())
	assert.NoError(t, settings.Exposure.Validate())
	assert.NoError(t, settings.Drift.Validate())
	require.Len(t, settings.Composite, 3)
	assert.Equal(t, "risk", settings.Composite[0].Engine)
}

func TestLoadSettings_PartialOverlayKeepsDefaults(t *testing.T) {
	path := writeSettings(t, `
risk:
  vulnerability_points: 25
drift:
  critical_multiplier: 2.0
`)
	settings, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, 25.0, settings.Risk.VulnerabilityPoints)
	assert.Equal(t, 2.0, settings.Drift.CriticalMultiplier)

	// Everything not mentioned keeps its default
	defaults := DefaultSettings()
	assert.Equal(t, defaults.Risk.VulnerabilityWeight, settings.Risk.VulnerabilityWeight)
	assert.Equal(t, defaults.Exposure, settings.Exposure)
	assert.Equal(t, defaults.Composite, settings.Composite)
}

func TestLoadSettings_CompositeOverride(t *testing.T) {
	path := writeSettings(t, `
composite:
  - engine: risk
    weight: 0.7
  - engine: drift
    weight: 0.3
`)
	settings, err := LoadSettings(path)
	require.NoError(t, err)

	require.Len(t, settings.Composite, 2)
	assert.Equal(t, 0.7, settings.Composite[0].Weight)
	assert.Equal(t, "drift", settings.Composite[1].Engine)
}

func TestLoadSettings_UnknownKeyRejected(t *testing.T) {
	path := writeSettings(t, `
risk:
  vulnerability_pts: 25
`)
	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoadSettings_NegativeCompositeWeightRejected(t *testing.T) {
	path := writeSettings(t, `
composite:
  - engine: risk
    weight: -0.5
`)
	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative")
}

func TestLoadSettings_MissingEngineNameRejected(t *testing.T) {
	path := writeSettings(t, `
composite:
  - weight: 0.5
`)
	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing engine name")
}

func TestLoadSettings_EmptyFileGivesDefaults(t *testing.T) {
	path := writeSettings(t, "")
	settings, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestLoadSettings_MissingFileFails(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
