package scoring

import (
	"sync"
	"time"

	"github.com/lcalzada-xor/riskmap/internal/core/ports"
	"github.com/lcalzada-xor/riskmap/internal/telemetry"
)

// engineState carries the run-state every engine shares: enablement and run
// accounting. Config swaps are guarded by the same lock so a Score call
// always sees one coherent configuration.
type engineState struct {
	name      string
	mu        sync.RWMutex
	enabled   bool
	runCount  int64
	lastRunAt time.Time
}

func newEngineState(name string) engineState {
	return engineState{name: name, enabled: true}
}

// Name returns the registry name of the engine.
func (s *engineState) Name() string { return s.name }

// Enable makes the engine accept Score calls again.
func (s *engineState) Enable() {
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
}

// Disable makes subsequent Score calls fail with ErrEngineDisabled.
func (s *engineState) Disable() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
}

// Status reports the engine's current run state.
func (s *engineState) Status() ports.EngineStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ports.EngineStatus{
		Enabled:   s.enabled,
		RunCount:  s.runCount,
		LastRunAt: s.lastRunAt,
	}
}

// recordRun accounts one completed Score call.
func (s *engineState) recordRun(start time.Time) {
	s.mu.Lock()
	s.runCount++
	s.lastRunAt = time.Now().UTC()
	s.mu.Unlock()
	telemetry.ScoreRuns.WithLabelValues(s.name).Inc()
	telemetry.ScoreDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
}
