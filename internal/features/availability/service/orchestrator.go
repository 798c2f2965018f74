package service

import (
	"context"
	"sync"
	"time"

	"appointment-scanner/internal/core/logger"
	"appointment-scanner/internal/features/availability/domain"

	"go.uber.org/zap"
)

// DayFetcher produces a terminal outcome for one calendar date.
type DayFetcher interface {
	FetchDay(ctx context.Context, date time.Time) domain.FetchOutcome
}

// Orchestrator fans a date range out over a bounded worker pool and merges
// the per-date outcomes into one AggregatedResult. The collecting loop is
// the single writer to the accumulator, so completion order across dates is
// irrelevant and one date's failure never touches its siblings.
type Orchestrator struct {
	fetcher DayFetcher
	logger  *zap.Logger
}

// NewOrchestrator creates an Orchestrator around the given fetcher.
func NewOrchestrator(fetcher DayFetcher) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		logger:  logger.Get(),
	}
}

// Run fetches every date in the range with at most maxConcurrency fetches
// in flight and returns once every date has reached a terminal outcome.
// Cancellation surfaces as terminal failures on the dates still in flight;
// Run still drains and returns a consistent result.
func (o *Orchestrator) Run(ctx context.Context, dateRange domain.DateRange, maxConcurrency int) *domain.AggregatedResult {
	dates := dateRange.Dates()
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	if maxConcurrency > len(dates) {
		maxConcurrency = len(dates)
	}

	o.logger.Info("Dispatching fetch tasks",
		zap.String("start", dateRange.Start.Format(domain.DateKeyLayout)),
		zap.String("end", dateRange.End.Format(domain.DateKeyLayout)),
		zap.Int("dates", len(dates)),
		zap.Int("max_concurrency", maxConcurrency),
	)

	tasks := make(chan time.Time, len(dates))
	outcomes := make(chan domain.FetchOutcome, len(dates))

	var wg sync.WaitGroup
	for i := 0; i < maxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for date := range tasks {
				outcomes <- o.fetcher.FetchDay(ctx, date)
			}
		}()
	}

	for _, date := range dates {
		tasks <- date
	}
	close(tasks)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	result := domain.NewAggregatedResult()
	for outcome := range outcomes {
		result.Merge(outcome)
		if outcome.Failed() {
			o.logger.Warn("Date failed terminally",
				zap.String("date", outcome.Date.Format(domain.DateKeyLayout)),
				zap.Error(outcome.Err),
			)
		}
	}
	result.FinishedAt = time.Now()

	o.logger.Info("Fetch cycle merged",
		zap.Int("locations", len(result.Entries)),
		zap.Int("failed_dates", len(result.Failed)),
	)
	return result
}
