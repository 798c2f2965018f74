package adapter

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"appointment-scanner/internal/features/availability/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvResult() *domain.AggregatedResult {
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.AggregatedResult{
		Entries: []domain.Entry{
			{Date: date, Record: domain.LocationRecord{
				ID:          5020,
				Name:        "West Enrollment Center",
				State:       "CA",
				City:        "Fresno",
				Address:     "100 Main St",
				PostalCode:  "93727",
				PhoneNumber: "(559) 555-0100",
				Raw:         json.RawMessage(`{"id":5020,"shortName":"WEC"}`),
			}},
			{Date: date, Record: domain.LocationRecord{
				ID:    7820,
				Name:  "East Enrollment Center",
				State: "NY",
				City:  "Albany",
				Raw:   json.RawMessage(`{"id":7820}`),
			}},
		},
		Failed: map[string]error{},
	}
}

// TestCSVSink_Publish verifies the export layout, including the verbatim
// payload column and the N/A phone placeholder.
func TestCSVSink_Publish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appointments.csv")
	sink := NewCSVSink(path)

	err := sink.Publish(context.Background(), csvResult())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])

	assert.Equal(t, []string{
		"2025-01-01", "5020", "West Enrollment Center", "CA", "Fresno",
		"100 Main St", "93727", "(559) 555-0100", `{"id":5020,"shortName":"WEC"}`,
	}, rows[1])

	// Missing phone becomes N/A.
	assert.Equal(t, "N/A", rows[2][7])
}

// TestCSVSink_Publish_EmptyResult verifies an empty cycle still writes a
// header-only file.
func TestCSVSink_Publish_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appointments.csv")
	sink := NewCSVSink(path)

	err := sink.Publish(context.Background(), &domain.AggregatedResult{})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, csvHeader, rows[0])
}

// TestCSVSink_Publish_ReplacesPreviousExport verifies each cycle overwrites
// the prior file rather than appending.
func TestCSVSink_Publish_ReplacesPreviousExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appointments.csv")
	sink := NewCSVSink(path)
	ctx := context.Background()

	require.NoError(t, sink.Publish(ctx, csvResult()))
	require.NoError(t, sink.Publish(ctx, &domain.AggregatedResult{}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// TestCSVSink_Publish_BadPath verifies a filesystem error is reported to
// the caller.
func TestCSVSink_Publish_BadPath(t *testing.T) {
	sink := NewCSVSink(filepath.Join(t.TempDir(), "missing", "appointments.csv"))

	err := sink.Publish(context.Background(), csvResult())

	assert.Error(t, err)
}
