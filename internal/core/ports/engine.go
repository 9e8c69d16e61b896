package ports

import (
	"context"
	"time"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
)

// EngineStatus is a point-in-time view of an engine's run state.
type EngineStatus struct {
	Enabled   bool      `json:"enabled"`
	RunCount  int64     `json:"run_count"`
	LastRunAt time.Time `json:"last_run_at"`
}

// Engine is the contract every scoring engine implements. Score must be a
// pure function of (entity, context, current config); the drift engine's
// baseline store is the only sanctioned exception, scoped per entity ID.
type Engine interface {
	// Name returns the registry name of the engine (e.g. "risk").
	Name() string

	// Configure validates cfg and swaps it in. On validation failure the
	// engine keeps its prior working configuration.
	Configure(cfg domain.EngineConfig) error

	// ValidateConfig checks cfg without applying it.
	ValidateConfig(cfg domain.EngineConfig) error

	// Score computes a result for one entity against the signals in sc.
	// Calling Score on a disabled engine returns domain.ErrEngineDisabled,
	// never a zero score, so callers can tell "not applicable" apart from
	// "scored zero".
	Score(ctx context.Context, entity domain.Entity, sc domain.Context) (domain.ScoringResult, error)

	Enable()
	Disable()
	Status() EngineStatus
}
