package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"appointment-scanner/internal/core/cache"
	"appointment-scanner/internal/core/config"
	"appointment-scanner/internal/core/httpclient"
	"appointment-scanner/internal/core/logger"
	"appointment-scanner/internal/features/availability/domain"

	"go.uber.org/zap"
)

// SchedulerAdapter implements the SlotProvider port against the TTP
// scheduler API. One call is one HTTP attempt; the retry policy lives in
// the service layer.
type SchedulerAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the upstream connection details.
	config config.SchedulerConfig
	// store is an optional short-TTL response cache; nil disables caching.
	store    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSchedulerAdapter creates a new instance of SchedulerAdapter. store may
// be nil when no response cache is configured.
func NewSchedulerAdapter(cfg config.SchedulerConfig, store cache.Cache, cacheTTL time.Duration) *SchedulerAdapter {
	return &SchedulerAdapter{
		client:   httpclient.NewClient(time.Duration(cfg.FetchTimeoutSeconds) * time.Second),
		config:   cfg,
		store:    store,
		cacheTTL: cacheTTL,
		logger:   logger.Get(),
	}
}

// FetchDay requests availability for one date and parses the response. A
// non-200 status or a body that is not a JSON array is an error (the caller
// retries); individual entries that fail to parse are skipped with a
// warning, matching upstream behavior of mixing entry shapes.
func (a *SchedulerAdapter) FetchDay(ctx context.Context, date time.Time) ([]domain.LocationRecord, error) {
	dateKey := date.Format(domain.DateKeyLayout)
	cacheKey := "slots:" + dateKey

	if a.store != nil {
		if body, err := a.store.Get(ctx, cacheKey); err == nil {
			records, err := a.parseBody(body)
			if err == nil {
				a.logger.Debug("Served availability from cache", zap.String("date", dateKey))
				return records, nil
			}
			a.logger.Warn("Discarding unparsable cached response", zap.String("date", dateKey), zap.Error(err))
		}
	}

	reqURL := fmt.Sprintf("%s/slots/asLocations?minimum=1&filterTimestampBy=on&timestamp=%s&serviceName=%s",
		a.config.URL, dateKey, url.QueryEscape(a.config.ServiceName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scheduler API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	records, err := a.parseBody(body)
	if err != nil {
		return nil, err
	}

	if a.store != nil {
		if err := a.store.Set(ctx, cacheKey, body, a.cacheTTL); err != nil {
			a.logger.Warn("Failed to cache scheduler response", zap.String("date", dateKey), zap.Error(err))
		}
	}

	return records, nil
}

// parseBody decodes the upstream JSON array, keeping each entry's verbatim
// payload alongside the parsed record.
func (a *SchedulerAdapter) parseBody(body []byte) ([]domain.LocationRecord, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, fmt.Errorf("failed to parse scheduler response: %w", err)
	}

	records := make([]domain.LocationRecord, 0, len(elems))
	for _, elem := range elems {
		var rec domain.LocationRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			a.logger.Warn("Skipping malformed location entry", zap.Error(err))
			continue
		}
		rec.Raw = append(json.RawMessage(nil), elem...)
		records = append(records, rec)
	}
	return records, nil
}
