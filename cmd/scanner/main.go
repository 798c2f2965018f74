package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"appointment-scanner/internal/core/cache"
	"appointment-scanner/internal/core/config"
	"appointment-scanner/internal/core/logger"
	"appointment-scanner/internal/core/server"
	adapter "appointment-scanner/internal/features/availability/adapters"
	"appointment-scanner/internal/features/availability/domain"
	"appointment-scanner/internal/features/availability/handler"
	"appointment-scanner/internal/features/availability/ports"
	"appointment-scanner/internal/features/availability/service"

	"go.uber.org/zap"
)

// @title Appointment Scanner API
// @version 1.0
// @description Status API exposing the latest appointment availability scan.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start, end, err := cfg.Scan.Dates(time.Now())
	if err != nil {
		l.Fatal("Invalid date configuration", zap.Error(err))
	}
	dateRange, err := domain.NewDateRange(start, end)
	if err != nil {
		l.Fatal("Invalid date range", zap.Error(err))
	}
	l.Info("Scan configured",
		zap.String("start", dateRange.Start.Format(domain.DateKeyLayout)),
		zap.String("end", dateRange.End.Format(domain.DateKeyLayout)),
		zap.Strings("states", cfg.Scan.States()),
	)

	// Optional upstream response cache.
	var store cache.Cache
	if cfg.Cache.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.Cache.RedisURL)
		if err != nil {
			l.Fatal("Failed to create Redis cache", zap.Error(err))
		}
		if err := redisCache.Ping(ctx); err != nil {
			l.Fatal("Redis health check failed", zap.Error(err))
		}
		defer redisCache.Close()
		store = redisCache
		l.Info("Upstream response cache enabled")
	}

	provider := adapter.NewSchedulerAdapter(cfg.Scheduler, store, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	pacer := service.NewIntervalPacer(time.Duration(cfg.Scan.RateLimitSeconds * float64(time.Second)))
	fetcher := service.NewRetryingFetcher(provider, pacer, cfg.Scan.MaxRetries)
	orchestrator := service.NewOrchestrator(fetcher)

	var sink ports.Sink
	if cfg.Slack.Enabled {
		sink = adapter.NewSlackSink(cfg.Slack)
	} else {
		sink = adapter.NewCSVSink(cfg.Output.CSVPath)
	}
	l.Info("Sink selected", zap.String("sink", sink.Name()))

	snapshots := adapter.NewMemorySnapshotStore()

	var srv *server.Server
	if cfg.StatusServerEnabled {
		statusHandler := handler.NewStatusHandler(snapshots)
		srv = server.New(cfg)
		srv.App.Get("/healthz", statusHandler.Healthz)
		srv.App.Get("/availability/latest", statusHandler.LatestAvailability)

		go func() {
			if err := srv.Run(); err != nil {
				l.Error("Status server stopped", zap.Error(err))
			}
		}()
	}

	driver := service.NewDriver(orchestrator, sink, snapshots, service.DriverConfig{
		DateRange:       dateRange,
		Regions:         domain.NewRegionSet(cfg.Scan.States()),
		MaxConcurrency:  cfg.Scan.MaxConcurrentFetches,
		Interval:        time.Duration(cfg.Scan.FetchIntervalMinutes) * time.Minute,
		SinkErrorsFatal: cfg.Output.SinkErrorsFatal,
	})

	err = driver.Run(ctx)
	stop()

	if srv != nil {
		if err := srv.Shutdown(); err != nil {
			l.Error("Status server shutdown failed", zap.Error(err))
		}
	}

	switch {
	case err == nil:
		l.Info("Scan complete")
	case errors.Is(err, context.Canceled):
		l.Info("Shutdown signal received, exiting")
	default:
		l.Fatal("Scanner failed", zap.Error(err))
	}
}
