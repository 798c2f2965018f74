package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"appointment-scanner/internal/features/availability/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyProvider fails its first failFirst attempts, then succeeds.
type flakyProvider struct {
	failFirst int
	records   []domain.LocationRecord
	attempts  int
}

// FetchDay implements SlotProvider.
func (p *flakyProvider) FetchDay(ctx context.Context, date time.Time) ([]domain.LocationRecord, error) {
	p.attempts++
	if p.attempts <= p.failFirst {
		return nil, errors.New("upstream unavailable")
	}
	return p.records, nil
}

// countingPacer counts grants and never delays.
type countingPacer struct {
	acquires int32
}

// Acquire implements Pacer.
func (p *countingPacer) Acquire(ctx context.Context) error {
	atomic.AddInt32(&p.acquires, 1)
	return ctx.Err()
}

func testDate() time.Time {
	return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
}

// TestRetryingFetcher_SucceedsAfterRetries verifies that a date whose first
// attempts fail still succeeds within the retry budget, and that the pacer
// is acquired before every attempt.
func TestRetryingFetcher_SucceedsAfterRetries(t *testing.T) {
	provider := &flakyProvider{
		failFirst: 2,
		records:   []domain.LocationRecord{{ID: 5020, Name: "Enrollment Center", State: "CA"}},
	}
	pacer := &countingPacer{}

	fetcher := NewRetryingFetcher(provider, pacer, 2)
	fetcher.backoffInitial = time.Millisecond

	outcome := fetcher.FetchDay(context.Background(), testDate())

	require.False(t, outcome.Failed())
	assert.Len(t, outcome.Records, 1)
	assert.Equal(t, 3, provider.attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&pacer.acquires))
}

// TestRetryingFetcher_ExhaustsRetries verifies that persistent failures
// become a typed terminal outcome instead of a fault.
func TestRetryingFetcher_ExhaustsRetries(t *testing.T) {
	provider := &flakyProvider{failFirst: 100}
	pacer := &countingPacer{}

	fetcher := NewRetryingFetcher(provider, pacer, 2)
	fetcher.backoffInitial = time.Millisecond

	outcome := fetcher.FetchDay(context.Background(), testDate())

	require.True(t, outcome.Failed())
	assert.Contains(t, outcome.Err.Error(), "upstream unavailable")
	assert.Equal(t, testDate(), outcome.Date)
	assert.Equal(t, 3, provider.attempts)
}

// TestRetryingFetcher_EmptyResultIsSuccess verifies that a date with no
// appointments is a success, not a retryable condition.
func TestRetryingFetcher_EmptyResultIsSuccess(t *testing.T) {
	provider := &flakyProvider{records: []domain.LocationRecord{}}
	pacer := &countingPacer{}

	fetcher := NewRetryingFetcher(provider, pacer, 3)
	fetcher.backoffInitial = time.Millisecond

	outcome := fetcher.FetchDay(context.Background(), testDate())

	require.False(t, outcome.Failed())
	assert.Empty(t, outcome.Records)
	assert.Equal(t, 1, provider.attempts)
}

// TestRetryingFetcher_CancelledContext verifies that cancellation surfaces
// as a terminal outcome without further attempts.
func TestRetryingFetcher_CancelledContext(t *testing.T) {
	provider := &flakyProvider{failFirst: 100}
	pacer := &countingPacer{}

	fetcher := NewRetryingFetcher(provider, pacer, 5)
	fetcher.backoffInitial = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := fetcher.FetchDay(ctx, testDate())

	require.True(t, outcome.Failed())
	assert.Equal(t, 0, provider.attempts)
}
