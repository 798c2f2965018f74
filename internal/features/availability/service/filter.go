package service

import "appointment-scanner/internal/features/availability/domain"

// FilterByRegion returns a new result keeping only entries whose region
// code is in the accepted set. Comparison is a case-sensitive exact match
// on the 2-letter code and the relative order of survivors is preserved.
// The failed-date map and cycle timestamps are carried through untouched;
// the input is never mutated. An empty set yields no entries.
func FilterByRegion(result *domain.AggregatedResult, regions domain.RegionSet) *domain.AggregatedResult {
	filtered := &domain.AggregatedResult{
		Entries:    make([]domain.Entry, 0, len(result.Entries)),
		Failed:     make(map[string]error, len(result.Failed)),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}

	for _, entry := range result.Entries {
		if regions.Contains(entry.Record.State) {
			filtered.Entries = append(filtered.Entries, entry)
		}
	}
	for date, err := range result.Failed {
		filtered.Failed[date] = err
	}

	return filtered
}
