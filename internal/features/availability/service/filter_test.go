package service

import (
	"errors"
	"testing"
	"time"

	"appointment-scanner/internal/features/availability/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *domain.AggregatedResult {
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.AggregatedResult{
		Entries: []domain.Entry{
			{Date: date, Record: domain.LocationRecord{ID: 1, State: "CA"}},
			{Date: date, Record: domain.LocationRecord{ID: 2, State: "NY"}},
			{Date: date, Record: domain.LocationRecord{ID: 3, State: "CA"}},
		},
		Failed: map[string]error{
			"2025-01-03": errors.New("retries exhausted"),
		},
	}
}

// TestFilterByRegion_KeepsAcceptedRegions verifies membership filtering and
// order preservation.
func TestFilterByRegion_KeepsAcceptedRegions(t *testing.T) {
	result := sampleResult()

	filtered := FilterByRegion(result, domain.NewRegionSet([]string{"CA"}))

	require.Len(t, filtered.Entries, 2)
	assert.Equal(t, 1, filtered.Entries[0].Record.ID)
	assert.Equal(t, 3, filtered.Entries[1].Record.ID)
	assert.Contains(t, filtered.Failed, "2025-01-03")
}

// TestFilterByRegion_DoesNotMutateInput verifies the filter is pure.
func TestFilterByRegion_DoesNotMutateInput(t *testing.T) {
	result := sampleResult()

	FilterByRegion(result, domain.NewRegionSet([]string{"CA"}))

	assert.Len(t, result.Entries, 3)
	assert.Len(t, result.Failed, 1)
}

// TestFilterByRegion_Idempotent verifies filtering twice with the same
// criteria yields an identical result.
func TestFilterByRegion_Idempotent(t *testing.T) {
	regions := domain.NewRegionSet([]string{"CA"})

	once := FilterByRegion(sampleResult(), regions)
	twice := FilterByRegion(once, regions)

	assert.Equal(t, once, twice)
}

// TestFilterByRegion_CaseSensitive verifies that comparison is an exact
// match on the 2-letter code.
func TestFilterByRegion_CaseSensitive(t *testing.T) {
	filtered := FilterByRegion(sampleResult(), domain.NewRegionSet([]string{"ca"}))

	assert.Empty(t, filtered.Entries)
}

// TestFilterByRegion_EmptySet verifies that no accepted regions yields no
// entries while failures survive.
func TestFilterByRegion_EmptySet(t *testing.T) {
	filtered := FilterByRegion(sampleResult(), domain.NewRegionSet(nil))

	assert.Empty(t, filtered.Entries)
	assert.Len(t, filtered.Failed, 1)
}
