// Package scoring contains the risk, exposure and drift scoring engines,
// the shared engine state, and the manager that combines engine results
// into composite scores.
package scoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
)

// Clamp bounds a score to the [0,100] domain.
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// capAt bounds a sub-score contribution to a configured maximum.
func capAt(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}

// Confidence estimates how much weight a result deserves based on signal
// volume and recency. Sparse or stale evidence lowers confidence; the floor
// for signal-less results matches the "historical/unverified" level.
func Confidence(signals []domain.Signal, now time.Time) float64 {
	if len(signals) == 0 {
		return 0.3
	}
	conf := 0.5
	n := len(signals)
	if n > 10 {
		n = 10
	}
	conf += float64(n) * 0.04

	var newest time.Time
	for _, s := range signals {
		if s.Timestamp.After(newest) {
			newest = s.Timestamp
		}
	}
	if !newest.IsZero() && now.Sub(newest) < 7*24*time.Hour {
		conf += 0.1
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// newResult builds a fully-populated ScoringResult. The severity label is
// always derived from the clamped score, never set independently.
func newResult(engine, entityID string, score float64, details map[string]any, metrics map[string]float64, recs []string) domain.ScoringResult {
	score = Clamp(score)
	return domain.ScoringResult{
		ID:              uuid.New().String(),
		EngineName:      engine,
		EntityID:        entityID,
		Score:           score,
		Severity:        domain.SeverityFromScore(score),
		Timestamp:       time.Now().UTC(),
		Details:         details,
		Metrics:         metrics,
		Recommendations: recs,
	}
}

// notApplicable builds the defined zero-score result used when an engine has
// nothing to say about an entity type. A policy outcome, not an error.
func notApplicable(engine, entityID, reason string) domain.ScoringResult {
	return newResult(engine, entityID, 0,
		map[string]any{"reason": reason},
		map[string]float64{"confidence": 1},
		nil)
}

// partitionByType groups signals by their type.
func partitionByType(signals []domain.Signal) map[domain.SignalType][]domain.Signal {
	parts := make(map[domain.SignalType][]domain.Signal)
	for _, s := range signals {
		parts[s.Type] = append(parts[s.Type], s)
	}
	return parts
}
