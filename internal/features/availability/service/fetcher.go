package service

import (
	"context"
	"time"

	"appointment-scanner/internal/core/logger"
	"appointment-scanner/internal/features/availability/domain"
	"appointment-scanner/internal/features/availability/ports"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// RetryingFetcher wraps a SlotProvider with the per-date retry policy:
// up to maxRetries retries after the initial attempt, exponential backoff
// between attempts, and the shared Pacer acquired before every attempt.
// Retry exhaustion becomes a typed failure outcome; nothing escapes the
// FetchDay boundary.
type RetryingFetcher struct {
	provider   ports.SlotProvider
	pacer      Pacer
	maxRetries int
	// backoffInitial is the first retry delay; each retry doubles it.
	backoffInitial time.Duration
	logger         *zap.Logger
}

// NewRetryingFetcher creates a RetryingFetcher. maxRetries is the number of
// retries after the initial attempt, so a date is attempted at most
// maxRetries+1 times.
func NewRetryingFetcher(provider ports.SlotProvider, pacer Pacer, maxRetries int) *RetryingFetcher {
	return &RetryingFetcher{
		provider:       provider,
		pacer:          pacer,
		maxRetries:     maxRetries,
		backoffInitial: time.Second,
		logger:         logger.Get(),
	}
}

// FetchDay fetches one date, retrying transient failures. Transport errors,
// non-success statuses and unparsable bodies are all retryable; an empty
// parsed result is a success. The returned outcome is always terminal.
func (f *RetryingFetcher) FetchDay(ctx context.Context, date time.Time) domain.FetchOutcome {
	dateKey := date.Format(domain.DateKeyLayout)

	operation := func() ([]domain.LocationRecord, error) {
		if err := f.pacer.Acquire(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		return f.provider.FetchDay(ctx, date)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = f.backoffInitial
	expo.Multiplier = 2

	records, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(f.maxRetries)+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			f.logger.Warn("Fetch attempt failed, retrying",
				zap.String("date", dateKey),
				zap.Duration("next_retry_in", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		f.logger.Warn("Retries exhausted for date",
			zap.String("date", dateKey),
			zap.Int("max_retries", f.maxRetries),
			zap.Error(err),
		)
		return domain.FetchOutcome{Date: date, Err: err}
	}

	f.logger.Debug("Date fetched",
		zap.String("date", dateKey),
		zap.Int("locations", len(records)),
	)
	return domain.FetchOutcome{Date: date, Records: records}
}
