package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
	"github.com/lcalzada-xor/riskmap/internal/core/ports"
	"github.com/lcalzada-xor/riskmap/internal/telemetry"
)

// CompositeEngineName is the engine name reported on composite results.
const CompositeEngineName = "composite"

// Manager holds the registered engines and combines their scores into
// weighted composites.
type Manager struct {
	mu      sync.RWMutex
	engines map[string]ports.Engine
	tracer  trace.Tracer
}

// NewManager returns an empty engine registry.
func NewManager() *Manager {
	return &Manager{
		engines: make(map[string]ports.Engine),
		tracer:  otel.Tracer("riskmap/scoring"),
	}
}

// Register adds an engine under its own name, replacing any previous
// registration.
func (m *Manager) Register(e ports.Engine) {
	m.mu.Lock()
	m.engines[e.Name()] = e
	m.mu.Unlock()
}

// Engine returns a registered engine by name.
func (m *Manager) Engine(name string) (ports.Engine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.engines[name]
	return e, ok
}

// Composite runs the named engines over one entity and combines their
// scores with the supplied weights. Disabled or unregistered engines
// contribute 0 with an explicit note; weights are NOT renormalized to
// exclude them, so callers see the true dilution effect.
func (m *Manager) Composite(ctx context.Context, entity domain.Entity, sc domain.Context, weights []domain.EngineWeight) (domain.ScoringResult, error) {
	ctx, span := m.tracer.Start(ctx, "scoring.Composite",
		trace.WithAttributes(
			attribute.String("entity.id", entity.ID),
			attribute.String("entity.type", string(entity.Type)),
		))
	defer span.End()

	start := time.Now()
	var total float64
	engineDetails := make(map[string]any, len(weights))
	metrics := make(map[string]float64, len(weights))
	var recs []string

	for _, ew := range weights {
		engine, ok := m.Engine(ew.Engine)
		if !ok {
			engineDetails[ew.Engine] = map[string]any{"note": "engine not registered, contributed 0"}
			telemetry.ScoreErrors.WithLabelValues(ew.Engine, "not_registered").Inc()
			continue
		}
		res, err := engine.Score(ctx, entity, sc)
		if err != nil {
			if errors.Is(err, domain.ErrEngineDisabled) {
				engineDetails[ew.Engine] = map[string]any{"note": "engine disabled, contributed 0"}
				telemetry.ScoreErrors.WithLabelValues(ew.Engine, "disabled").Inc()
				continue
			}
			telemetry.ScoreErrors.WithLabelValues(ew.Engine, "error").Inc()
			return domain.ScoringResult{}, fmt.Errorf("engine %q: %w", ew.Engine, err)
		}
		total += res.Score * ew.Weight
		engineDetails[ew.Engine] = res
		metrics[ew.Engine+"_score"] = res.Score
		metrics[ew.Engine+"_weight"] = ew.Weight
		recs = append(recs, res.Recommendations...)
	}

	telemetry.CompositeRuns.Inc()
	telemetry.ScoreDuration.WithLabelValues(CompositeEngineName).Observe(time.Since(start).Seconds())

	result := newResult(CompositeEngineName, entity.ID, total,
		map[string]any{"engines": engineDetails},
		metrics, recs)
	span.SetAttributes(attribute.Float64("score", result.Score))
	return result, nil
}

// ScoreAll fans a composite run out over every entity in the context.
// Entities have no data dependency on each other, so the work is bounded
// only by the worker count. Results keep the entity order of sc.Entities.
func (m *Manager) ScoreAll(ctx context.Context, sc domain.Context, weights []domain.EngineWeight, workers int) ([]domain.ScoringResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]domain.ScoringResult, len(sc.Entities))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, entity := range sc.Entities {
		i, entity := i, entity
		g.Go(func() error {
			res, err := m.Composite(ctx, entity, sc, weights)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
