package adapter

import (
	"sync"

	"appointment-scanner/internal/features/availability/domain"
)

// MemorySnapshotStore keeps the most recent cycle result in memory for the
// status API. Nothing is retained across process restarts.
type MemorySnapshotStore struct {
	mu     sync.RWMutex
	latest *domain.AggregatedResult
}

// NewMemorySnapshotStore creates an empty snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

// Put replaces the stored snapshot.
func (s *MemorySnapshotStore) Put(result *domain.AggregatedResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = result
}

// Latest returns the stored snapshot, or false before the first cycle.
func (s *MemorySnapshotStore) Latest() (*domain.AggregatedResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, false
	}
	return s.latest, true
}
