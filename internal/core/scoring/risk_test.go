package scoring

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
)

func signalsOf(entityID string, typ domain.SignalType, sev domain.Severity, n int) []domain.Signal {
	signals := make([]domain.Signal, n)
	for i := range signals {
		signals[i] = domain.Signal{
			Type:      typ,
			Severity:  sev,
			EntityID:  entityID,
			Timestamp: time.Now().UTC(),
		}
	}
	return signals
}

func TestRiskEngine_ZeroSignals(t *testing.T) {
	engine := NewRiskEngine()
	entity := domain.Entity{ID: "e1", Type: domain.EntityDomain, DiscoveredAt: time.Now()}

	res, err := engine.Score(context.Background(), entity, domain.Context{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, domain.SeverityInfo, res.Severity)
	assert.Empty(t, res.Recommendations)
}

func TestRiskEngine_UnknownEntityTypeNotScorable(t *testing.T) {
	engine := NewRiskEngine()
	entity := domain.Entity{ID: "e1", Type: "satellite"}
	sc := domain.Context{Signals: signalsOf("e1", domain.SignalVulnerability, domain.SeverityCritical, 3)}

	res, err := engine.Score(context.Background(), entity, sc)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, "not_scorable", res.Details["reason"])
}

func TestRiskEngine_DocumentedExampleScenario(t *testing.T) {
	// 8 critical vulnerabilities, 12 critical credential exposures,
	// 3 high-severity malware signals, discovered 365 days ago.
	engine := NewRiskEngine()
	entity := domain.Entity{
		ID:           "breached-host",
		Type:         domain.EntityHost,
		DiscoveredAt: time.Now().UTC().Add(-365 * 24 * time.Hour),
	}
	var signals []domain.Signal
	signals = append(signals, signalsOf(entity.ID, domain.SignalVulnerability, domain.SeverityCritical, 8)...)
	signals = append(signals, signalsOf(entity.ID, domain.SignalCredentialExposure, domain.SeverityCritical, 12)...)
	signals = append(signals, signalsOf(entity.ID, domain.SignalMalware, domain.SeverityHigh, 3)...)

	res, err := engine.Score(context.Background(), entity, domain.Context{Signals: signals})
	require.NoError(t, err)

	assert.Greater(t, res.Score, 80.0)
	assert.Equal(t, domain.SeverityCritical, res.Severity)
	require.NotEmpty(t, res.Recommendations)
	assert.True(t, strings.Contains(strings.ToLower(res.Recommendations[0]), "credential"),
		"credential reset must lead the recommendations, got %q", res.Recommendations[0])
}

func TestRiskEngine_MonotonicUnderAddedCriticalVulnerability(t *testing.T) {
	engine := NewRiskEngine()
	entity := domain.Entity{ID: "e1", Type: domain.EntityHost, DiscoveredAt: time.Now().UTC().Add(-24 * time.Hour)}

	signals := signalsOf("e1", domain.SignalVulnerability, domain.SeverityCritical, 2)
	prev := -1.0
	for i := 0; i < 15; i++ {
		res, err := engine.Score(context.Background(), entity, domain.Context{Signals: signals})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Score, prev, "adding a critical vulnerability must never decrease the score")
		prev = res.Score
		signals = append(signals, domain.Signal{
			Type: domain.SignalVulnerability, Severity: domain.SeverityCritical, EntityID: "e1", Timestamp: time.Now().UTC(),
		})
	}
}

func TestRiskEngine_Idempotent(t *testing.T) {
	engine := NewRiskEngine()
	entity := domain.Entity{ID: "e1", Type: domain.EntityDomain, DiscoveredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	sc := domain.Context{Signals: signalsOf("e1", domain.SignalVulnerability, domain.SeverityHigh, 4)}

	first, err := engine.Score(context.Background(), entity, sc)
	require.NoError(t, err)
	require.Greater(t, first.Score, 0.0)

	for i := 0; i < 200; i++ {
		res, err := engine.Score(context.Background(), entity, sc)
		require.NoError(t, err)
		assert.Equal(t, first.Score, res.Score, "repeated scoring with identical inputs must be bit-identical")
		assert.Equal(t, first.Severity, res.Severity)
	}
}

func TestRiskEngine_CriticalPortsWeighHigher(t *testing.T) {
	engine := NewRiskEngine()
	entity := domain.Entity{ID: "e1", Type: domain.EntityIPAddress, DiscoveredAt: time.Now()}

	dbPort := domain.Context{Signals: []domain.Signal{
		{Type: domain.SignalOpenPort, Severity: domain.SeverityMedium, EntityID: "e1", Data: map[string]any{"port": 3306}},
	}}
	plainPort := domain.Context{Signals: []domain.Signal{
		{Type: domain.SignalOpenPort, Severity: domain.SeverityMedium, EntityID: "e1", Data: map[string]any{"port": 8123}},
	}}

	dbRes, err := engine.Score(context.Background(), entity, dbPort)
	require.NoError(t, err)
	plainRes, err := engine.Score(context.Background(), entity, plainPort)
	require.NoError(t, err)

	assert.Greater(t, dbRes.Score, plainRes.Score)
}

func TestRiskEngine_DisabledReturnsError(t *testing.T) {
	engine := NewRiskEngine()
	engine.Disable()

	_, err := engine.Score(context.Background(), domain.Entity{ID: "e1", Type: domain.EntityDomain}, domain.Context{})
	assert.ErrorIs(t, err, domain.ErrEngineDisabled)

	engine.Enable()
	_, err = engine.Score(context.Background(), domain.Entity{ID: "e1", Type: domain.EntityDomain}, domain.Context{})
	assert.NoError(t, err)
}

func TestRiskEngine_ConfigureKeepsPriorConfigOnFailure(t *testing.T) {
	engine := NewRiskEngine()

	good := domain.DefaultRiskConfig()
	good.VulnerabilityPoints = 20
	require.NoError(t, engine.Configure(good))

	bad := domain.DefaultRiskConfig()
	bad.DecayRatePerDay = -1
	err := engine.Configure(bad)
	require.Error(t, err)
	var ice *domain.InvalidConfigError
	assert.ErrorAs(t, err, &ice)

	// Prior config still in effect
	assert.Equal(t, 20.0, engine.cfg.VulnerabilityPoints)
}

func TestRiskEngine_StatusTracksRuns(t *testing.T) {
	engine := NewRiskEngine()
	entity := domain.Entity{ID: "e1", Type: domain.EntityDomain, DiscoveredAt: time.Now()}

	st := engine.Status()
	assert.True(t, st.Enabled)
	assert.Zero(t, st.RunCount)

	_, err := engine.Score(context.Background(), entity, domain.Context{})
	require.NoError(t, err)

	st = engine.Status()
	assert.Equal(t, int64(1), st.RunCount)
	assert.False(t, st.LastRunAt.IsZero())
}
