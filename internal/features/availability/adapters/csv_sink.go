package adapter

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"appointment-scanner/internal/core/logger"
	"appointment-scanner/internal/features/availability/domain"

	"go.uber.org/zap"
)

// csvHeader is the export column order, including the verbatim upstream
// payload as the last column.
var csvHeader = []string{"Date", "ID", "Name", "State", "City", "Address", "PostalCode", "Phone", "RawJSON"}

// CSVSink writes one cycle's result to a CSV file, one row per location.
// Each cycle replaces the previous file via a temp-file rename so readers
// never observe a half-written export.
type CSVSink struct {
	path   string
	logger *zap.Logger
}

// NewCSVSink creates a CSVSink writing to the given path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{
		path:   path,
		logger: logger.Get(),
	}
}

// Name identifies the sink in logs.
func (s *CSVSink) Name() string {
	return "csv"
}

// Publish writes the result to the configured file.
func (s *CSVSink) Publish(ctx context.Context, result *domain.AggregatedResult) error {
	tmp := s.path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, entry := range result.Entries {
		rec := entry.Record
		phone := rec.PhoneNumber
		if phone == "" {
			phone = "N/A"
		}
		row := []string{
			entry.Date.Format(domain.DateKeyLayout),
			strconv.Itoa(rec.ID),
			rec.Name,
			rec.State,
			rec.City,
			rec.Address,
			rec.PostalCode,
			phone,
			string(rec.Raw),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to finalize export file: %w", err)
	}

	s.logger.Info("Exported availability to CSV",
		zap.String("path", s.path),
		zap.Int("rows", len(result.Entries)),
	)
	return nil
}
