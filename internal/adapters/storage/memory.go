package storage

import (
	"sync"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
)

const numShards = 16

type baselineShard struct {
	mu        sync.RWMutex
	baselines map[string]domain.Baseline
}

// MemoryBaselineStore implements ports.BaselineStore with sharded RW locks.
// Writes replace the whole record under the shard lock and reads return a
// deep copy, so a concurrent reader can never observe a partially-applied
// baseline.
type MemoryBaselineStore struct {
	shards []*baselineShard
}

// NewMemoryBaselineStore creates an empty in-memory baseline store.
func NewMemoryBaselineStore() *MemoryBaselineStore {
	s := &MemoryBaselineStore{shards: make([]*baselineShard, numShards)}
	for i := 0; i < numShards; i++ {
		s.shards[i] = &baselineShard{baselines: make(map[string]domain.Baseline)}
	}
	return s
}

func (s *MemoryBaselineStore) getShard(entityID string) *baselineShard {
	hash := uint32(0)
	for i := 0; i < len(entityID); i++ {
		hash = hash*31 + uint32(entityID[i])
	}
	return s.shards[hash%uint32(len(s.shards))]
}

// Get returns a copy of the stored baseline for an entity.
func (s *MemoryBaselineStore) Get(entityID string) (domain.Baseline, bool, error) {
	shard := s.getShard(entityID)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	b, ok := shard.baselines[entityID]
	if !ok {
		return domain.Baseline{}, false, nil
	}
	return b.Clone(), true, nil
}

// Put replaces the baseline for an entity wholesale. Last writer wins.
func (s *MemoryBaselineStore) Put(entityID string, b domain.Baseline) error {
	shard := s.getShard(entityID)
	shard.mu.Lock()
	shard.baselines[entityID] = b.Clone()
	shard.mu.Unlock()
	return nil
}
