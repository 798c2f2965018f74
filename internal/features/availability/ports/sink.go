package ports

import (
	"context"

	"appointment-scanner/internal/features/availability/domain"
)

// Sink consumes one cycle's filtered result.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string
	// Publish delivers the result. Implementations must not mutate it.
	Publish(ctx context.Context, result *domain.AggregatedResult) error
}
