package ports

import "appointment-scanner/internal/features/availability/domain"

// SnapshotStore holds the most recent cycle result for the status API.
type SnapshotStore interface {
	// Put replaces the stored snapshot.
	Put(result *domain.AggregatedResult)
	// Latest returns the stored snapshot, or false before the first cycle.
	Latest() (*domain.AggregatedResult, bool)
}
