package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"appointment-scanner/internal/core/config"
	"appointment-scanner/internal/core/httpclient"
	"appointment-scanner/internal/core/logger"
	"appointment-scanner/internal/features/availability/domain"

	"go.uber.org/zap"
)

// maxSummaryEntries caps how many locations the Slack summary lists.
const maxSummaryEntries = 5

// SlackSink posts a bounded-size summary of one cycle's result to a Slack
// channel via chat.postMessage with a static bearer token.
type SlackSink struct {
	client *http.Client
	config config.SlackConfig
	// apiURL is overridable in tests.
	apiURL string
	logger *zap.Logger
}

// NewSlackSink creates a SlackSink from the given configuration.
func NewSlackSink(cfg config.SlackConfig) *SlackSink {
	return &SlackSink{
		client: httpclient.NewClient(10 * time.Second),
		config: cfg,
		apiURL: "https://slack.com/api/chat.postMessage",
		logger: logger.Get(),
	}
}

// Name identifies the sink in logs.
func (s *SlackSink) Name() string {
	return "slack"
}

// slackResponse is the subset of the chat.postMessage response we inspect.
type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Publish formats the summary and posts it to the configured channel.
func (s *SlackSink) Publish(ctx context.Context, result *domain.AggregatedResult) error {
	payload := map[string]string{
		"channel": s.config.ChannelID,
		"text":    buildMessage(result),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API returned status: %d", resp.StatusCode)
	}

	var sr slackResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return fmt.Errorf("failed to decode slack response: %w", err)
	}
	if !sr.OK {
		return fmt.Errorf("slack API error: %s", sr.Error)
	}

	s.logger.Info("Posted availability summary to Slack",
		zap.String("channel", s.config.ChannelID),
		zap.Int("locations", len(result.Entries)),
	)
	return nil
}

// buildMessage renders the first maxSummaryEntries locations plus a count
// of the remainder.
func buildMessage(result *domain.AggregatedResult) string {
	if len(result.Entries) == 0 {
		return "No appointments found."
	}

	var buf bytes.Buffer
	buf.WriteString("*Appointment Availability*\n\n")

	for i, entry := range result.Entries {
		if i == maxSummaryEntries {
			break
		}
		rec := entry.Record
		phone := rec.PhoneNumber
		if phone == "" {
			phone = "N/A"
		}
		fmt.Fprintf(&buf, "%d. (Date: %s) *%s* (ID: %d) in %s, %s\nAddress: %s %s\nZip: %s\nPhone: %s\n\n",
			i+1,
			entry.Date.Format(domain.DateKeyLayout),
			rec.Name,
			rec.ID,
			rec.City,
			rec.State,
			rec.Address,
			rec.AddressAdditional,
			rec.PostalCode,
			phone,
		)
	}

	if len(result.Entries) > maxSummaryEntries {
		fmt.Fprintf(&buf, "...and %d more.\n", len(result.Entries)-maxSummaryEntries)
	}
	return buf.String()
}
