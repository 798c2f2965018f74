package service

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces outgoing fetch attempts. It is shared by every worker in a
// cycle so the configured interval holds between any two consecutive
// grants, not per worker.
type Pacer interface {
	// Acquire blocks until a grant is available. The only failure mode is
	// context cancellation.
	Acquire(ctx context.Context) error
}

// IntervalPacer enforces a minimum interval between grants using a shared
// token-bucket limiter with burst 1. Grants are served in request order.
type IntervalPacer struct {
	limiter *rate.Limiter
}

// NewIntervalPacer creates a pacer with the given minimum spacing between
// grants. A non-positive interval disables throttling entirely.
func NewIntervalPacer(minInterval time.Duration) *IntervalPacer {
	if minInterval <= 0 {
		return &IntervalPacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &IntervalPacer{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Acquire blocks until the interval since the previous grant has elapsed.
func (p *IntervalPacer) Acquire(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
