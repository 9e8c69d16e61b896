package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityFromScore(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected Severity
	}{
		{"zero", 0, SeverityInfo},
		{"just below low", 19.99, SeverityInfo},
		{"low boundary", 20, SeverityLow},
		{"medium boundary", 40, SeverityMedium},
		{"high boundary", 60, SeverityHigh},
		{"just below critical", 79.9, SeverityHigh},
		{"critical boundary", 80, SeverityCritical},
		{"maximum", 100, SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SeverityFromScore(tt.score))
		})
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Greater(t, SeverityLow.Rank(), SeverityInfo.Rank())
}

func TestScoringResultRoundTrip(t *testing.T) {
	original := ScoringResult{
		ID:         "f2b3c4d5",
		EngineName: "risk",
		EntityID:   "entity-1",
		Score:      87.5,
		Severity:   SeverityCritical,
		Timestamp:  time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC),
		Details: map[string]any{
			"signal_count": float64(12),
			"reason":       "scored",
		},
		Metrics: map[string]float64{
			"vulnerability_score": 80,
			"confidence":          0.9,
		},
		Recommendations: []string{"Reset exposed credentials immediately"},
	}

	b, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ScoringResult
	require.NoError(t, json.Unmarshal(b, &decoded))

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.EngineName, decoded.EngineName)
	assert.Equal(t, original.EntityID, decoded.EntityID)
	assert.Equal(t, original.Score, decoded.Score)
	assert.Equal(t, original.Severity, decoded.Severity)
	assert.True(t, original.Timestamp.Equal(decoded.Timestamp), "timestamp precision must survive the round trip")
	assert.Equal(t, original.Details, decoded.Details)
	assert.Equal(t, original.Metrics, decoded.Metrics)
	assert.Equal(t, original.Recommendations, decoded.Recommendations)
}

func TestSignalPortExtraction(t *testing.T) {
	tests := []struct {
		name   string
		data   map[string]any
		port   int
		wantOK bool
	}{
		{"int port", map[string]any{"port": 443}, 443, true},
		{"json float port", map[string]any{"port": float64(3306)}, 3306, true},
		{"string port", map[string]any{"port": "8080"}, 8080, true},
		{"missing", map[string]any{}, 0, false},
		{"garbage string", map[string]any{"port": "not-a-port"}, 0, false},
		{"zero", map[string]any{"port": 0}, 0, false},
		{"out of range", map[string]any{"port": 70000}, 0, false},
		{"negative", map[string]any{"port": -22}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Signal{Type: SignalOpenPort, Data: tt.data}
			port, ok := s.Port()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.port, port)
			}
		})
	}
}

func TestContextSignalsFor(t *testing.T) {
	sc := Context{
		Signals: []Signal{
			{ID: "a", EntityID: "e1"},
			{ID: "b", EntityID: "e2"},
			{ID: "c"}, // global
		},
	}

	got := sc.SignalsFor("e1")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}
