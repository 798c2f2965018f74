package service

import (
	"context"
	"fmt"
	"time"

	"appointment-scanner/internal/core/logger"
	"appointment-scanner/internal/features/availability/domain"
	"appointment-scanner/internal/features/availability/ports"

	"go.uber.org/zap"
)

// DriverConfig carries the resolved settings one Driver runs with.
type DriverConfig struct {
	// DateRange is the inclusive range of dates scanned each cycle.
	DateRange domain.DateRange
	// Regions is the accepted set of region codes.
	Regions domain.RegionSet
	// MaxConcurrency bounds simultaneously in-flight fetches.
	MaxConcurrency int
	// Interval is the pause between cycles; 0 means run exactly once.
	Interval time.Duration
	// SinkErrorsFatal stops the loop on the first sink failure.
	SinkErrorsFatal bool
}

// Driver runs the fetch→filter→sink cycle, once or on a fixed interval.
type Driver struct {
	orchestrator *Orchestrator
	sink         ports.Sink
	snapshots    ports.SnapshotStore
	cfg          DriverConfig
	logger       *zap.Logger
}

// NewDriver creates a Driver. snapshots may be nil when no status API is
// mounted.
func NewDriver(orchestrator *Orchestrator, sink ports.Sink, snapshots ports.SnapshotStore, cfg DriverConfig) *Driver {
	return &Driver{
		orchestrator: orchestrator,
		sink:         sink,
		snapshots:    snapshots,
		cfg:          cfg,
		logger:       logger.Get(),
	}
}

// Run executes cycles until the configured single run completes or ctx is
// cancelled. Sink failures are logged and the loop continues unless
// SinkErrorsFatal is set. The inter-cycle sleep is interruptible, so
// shutdown never waits out a long interval.
func (d *Driver) Run(ctx context.Context) error {
	for cycle := 1; ; cycle++ {
		d.logger.Info("Starting cycle", zap.Int("cycle", cycle))

		result := d.orchestrator.Run(ctx, d.cfg.DateRange, d.cfg.MaxConcurrency)
		if err := ctx.Err(); err != nil {
			// Cancelled mid-cycle: in-flight work was drained above, but a
			// partial result must not reach the sink.
			return err
		}

		filtered := FilterByRegion(result, d.cfg.Regions)
		d.logger.Info("Cycle complete",
			zap.Int("matched_locations", len(filtered.Entries)),
			zap.Int("dropped_locations", len(result.Entries)-len(filtered.Entries)),
			zap.Strings("failed_dates", filtered.FailedDates()),
		)

		if d.snapshots != nil {
			d.snapshots.Put(filtered)
		}

		if err := d.sink.Publish(ctx, filtered); err != nil {
			if d.cfg.SinkErrorsFatal {
				return fmt.Errorf("sink %s failed: %w", d.sink.Name(), err)
			}
			d.logger.Error("Sink publish failed",
				zap.String("sink", d.sink.Name()),
				zap.Error(err),
			)
		}

		if d.cfg.Interval <= 0 {
			return nil
		}

		d.logger.Info("Sleeping until next cycle", zap.Duration("interval", d.cfg.Interval))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.cfg.Interval):
		}
	}
}
