package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaselineCloneIsDeep(t *testing.T) {
	original := Baseline{
		EntityID:   "example.com",
		Properties: map[string]string{"registrar": "ACME Registrar"},
		Signals: []Signal{
			{ID: "s1", Type: SignalOpenPort, Severity: SeverityMedium, EntityID: "example.com", Data: map[string]any{"port": 443}},
		},
		CapturedAt: time.Now().UTC(),
	}

	clone := original.Clone()
	original.Properties["registrar"] = "mutated"
	original.Signals[0].Data["port"] = 23

	assert.Equal(t, "ACME Registrar", clone.Properties["registrar"])
	assert.Equal(t, 443, clone.Signals[0].Data["port"])

	// And the other direction: mutating the clone leaves the source intact.
	clone.Signals[0].Data["port"] = 80
	assert.Equal(t, 23, original.Signals[0].Data["port"])
}

func TestBaselineCloneHandlesNilMaps(t *testing.T) {
	clone := Baseline{EntityID: "e1"}.Clone()
	assert.Nil(t, clone.Properties)
	assert.Nil(t, clone.Signals)
	require.Equal(t, "e1", clone.EntityID)
}
