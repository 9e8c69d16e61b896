package ports

import "github.com/lcalzada-xor/riskmap/internal/core/domain"

// BaselineStore is the persistence boundary for drift baselines. The drift
// engine owns the record shape; durable storage is delegated to whichever
// implementation is injected. Implementations must support concurrent reads
// and writes across entity IDs and must never expose a partially-applied
// baseline to a concurrent reader.
type BaselineStore interface {
	// Get returns the baseline for an entity. The bool is false when no
	// baseline has been captured; that is an expected condition, not an
	// error.
	Get(entityID string) (domain.Baseline, bool, error)

	// Put replaces the stored baseline for an entity wholesale.
	Put(entityID string, b domain.Baseline) error
}

// ResultStore persists scoring results for later retrieval.
type ResultStore interface {
	SaveResult(r domain.ScoringResult) error
	GetResults(entityID string) ([]domain.ScoringResult, error)
	Close() error
}
