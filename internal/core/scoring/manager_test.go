package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
	"github.com/lcalzada-xor/riskmap/internal/core/ports"
)

// stubEngine returns a fixed score for every entity.
type stubEngine struct {
	name    string
	score   float64
	enabled bool
	recs    []string
}

func (s *stubEngine) Name() string                                  { return s.name }
func (s *stubEngine) Configure(domain.EngineConfig) error           { return nil }
func (s *stubEngine) ValidateConfig(domain.EngineConfig) error      { return nil }
func (s *stubEngine) Enable()                                       { s.enabled = true }
func (s *stubEngine) Disable()                                      { s.enabled = false }
func (s *stubEngine) Status() ports.EngineStatus                    { return ports.EngineStatus{Enabled: s.enabled} }
func (s *stubEngine) Score(_ context.Context, entity domain.Entity, _ domain.Context) (domain.ScoringResult, error) {
	if !s.enabled {
		return domain.ScoringResult{}, domain.ErrEngineDisabled
	}
	return newResult(s.name, entity.ID, s.score, nil, nil, s.recs), nil
}

func TestManager_CompositeWeightedSum(t *testing.T) {
	mgr := NewManager()
	mgr.Register(&stubEngine{name: "risk", score: 80, enabled: true, recs: []string{"patch things"}})
	mgr.Register(&stubEngine{name: "exposure", score: 40, enabled: true})

	weights := []domain.EngineWeight{
		{Engine: "risk", Weight: 0.5},
		{Engine: "exposure", Weight: 0.5},
	}
	res, err := mgr.Composite(context.Background(), domain.Entity{ID: "e1", Type: domain.EntityDomain}, domain.Context{}, weights)
	require.NoError(t, err)

	assert.Equal(t, 60.0, res.Score)
	assert.Equal(t, domain.SeverityHigh, res.Severity)
	assert.Equal(t, CompositeEngineName, res.EngineName)
	assert.Contains(t, res.Recommendations, "patch things")

	// Per-engine results embedded for traceability
	engines, ok := res.Details["engines"].(map[string]any)
	require.True(t, ok)
	riskRes, ok := engines["risk"].(domain.ScoringResult)
	require.True(t, ok)
	assert.Equal(t, 80.0, riskRes.Score)
}

func TestManager_DisabledEngineDilutesWithoutRenormalizing(t *testing.T) {
	mgr := NewManager()
	mgr.Register(&stubEngine{name: "risk", score: 80, enabled: true})
	mgr.Register(&stubEngine{name: "drift", score: 90, enabled: false})

	weights := []domain.EngineWeight{
		{Engine: "risk", Weight: 0.5},
		{Engine: "drift", Weight: 0.5},
	}
	res, err := mgr.Composite(context.Background(), domain.Entity{ID: "e1"}, domain.Context{}, weights)
	require.NoError(t, err)

	// The disabled engine contributes 0 and its weight is NOT
	// redistributed: the composite is diluted to 40, not held at 80.
	assert.Equal(t, 40.0, res.Score)

	engines := res.Details["engines"].(map[string]any)
	note, ok := engines["drift"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, note["note"], "disabled")
}

func TestManager_UnregisteredEngineNoted(t *testing.T) {
	mgr := NewManager()
	mgr.Register(&stubEngine{name: "risk", score: 50, enabled: true})

	weights := []domain.EngineWeight{
		{Engine: "risk", Weight: 1.0},
		{Engine: "phantom", Weight: 1.0},
	}
	res, err := mgr.Composite(context.Background(), domain.Entity{ID: "e1"}, domain.Context{}, weights)
	require.NoError(t, err)

	assert.Equal(t, 50.0, res.Score)
	engines := res.Details["engines"].(map[string]any)
	note := engines["phantom"].(map[string]any)
	assert.Contains(t, note["note"], "not registered")
}

func TestManager_CompositeClamped(t *testing.T) {
	mgr := NewManager()
	mgr.Register(&stubEngine{name: "risk", score: 100, enabled: true})
	mgr.Register(&stubEngine{name: "exposure", score: 100, enabled: true})

	weights := []domain.EngineWeight{
		{Engine: "risk", Weight: 1.0},
		{Engine: "exposure", Weight: 1.0},
	}
	res, err := mgr.Composite(context.Background(), domain.Entity{ID: "e1"}, domain.Context{}, weights)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Score)
}

func TestManager_ScoreAllKeepsEntityOrder(t *testing.T) {
	mgr := NewManager()
	mgr.Register(&stubEngine{name: "risk", score: 70, enabled: true})

	sc := domain.Context{
		Entities: []domain.Entity{
			{ID: "a", Type: domain.EntityDomain, DiscoveredAt: time.Now()},
			{ID: "b", Type: domain.EntityDomain, DiscoveredAt: time.Now()},
			{ID: "c", Type: domain.EntityDomain, DiscoveredAt: time.Now()},
		},
	}
	weights := []domain.EngineWeight{{Engine: "risk", Weight: 1.0}}

	results, err := mgr.ScoreAll(context.Background(), sc, weights, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, id, results[i].EntityID)
		assert.Equal(t, 70.0, results[i].Score)
	}
}

func TestManager_RealEnginesEndToEnd(t *testing.T) {
	mgr := NewManager()
	mgr.Register(NewRiskEngine())
	mgr.Register(NewExposureEngine())

	entity := domain.Entity{ID: "e1", Type: domain.EntityDomain, DiscoveredAt: time.Now().UTC().Add(-10 * 24 * time.Hour)}
	sc := domain.Context{
		Entities: []domain.Entity{entity},
		Signals: []domain.Signal{
			{Type: domain.SignalVulnerability, Severity: domain.SeverityCritical, EntityID: "e1", Timestamp: time.Now().UTC()},
			{Type: domain.SignalOpenPort, Severity: domain.SeverityMedium, EntityID: "e1", Data: map[string]any{"port": 3306}, Timestamp: time.Now().UTC()},
		},
	}
	weights := []domain.EngineWeight{
		{Engine: "risk", Weight: 0.5},
		{Engine: "exposure", Weight: 0.5},
	}

	res, err := mgr.Composite(context.Background(), entity, sc, weights)
	require.NoError(t, err)

	assert.Greater(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 100.0)
	assert.Equal(t, domain.SeverityFromScore(res.Score), res.Severity)
}
