package ports

import (
	"context"
	"time"

	"appointment-scanner/internal/features/availability/domain"
)

// SlotProvider defines the interface for upstream appointment-availability
// sources. One call performs exactly one attempt; retry policy lives with
// the caller.
type SlotProvider interface {
	// FetchDay requests availability for a single calendar date and parses
	// the response into location records. An empty slice is a valid result
	// (a date with no open appointments).
	FetchDay(ctx context.Context, date time.Time) ([]domain.LocationRecord, error)
}
