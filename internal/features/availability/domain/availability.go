package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// DateKeyLayout is the canonical layout for per-date keys (search dates,
// failure map keys, cache keys).
const DateKeyLayout = "2006-01-02"

var (
	// ErrInvalidDateRange is returned when the range end precedes the start.
	ErrInvalidDateRange = errors.New("date range end precedes start")
)

// DateRange is an inclusive range of calendar dates. One fetch task is
// dispatched per date in the range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a DateRange, truncating both bounds to day precision.
// Returns ErrInvalidDateRange when end < start.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = Day(start)
	end = Day(end)
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange,
			start.Format(DateKeyLayout), end.Format(DateKeyLayout))
	}
	return DateRange{Start: start, End: end}, nil
}

// Day truncates a timestamp to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Dates expands the range into its ordered sequence of calendar dates.
func (r DateRange) Dates() []time.Time {
	dates := make([]time.Time, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Days returns the number of dates in the range (inclusive bounds).
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// LocationRecord is one appointment location returned by the scheduler API
// for a given search date. Raw carries the verbatim upstream JSON for the
// entry so downstream consumers get the complete payload. Immutable once
// parsed.
type LocationRecord struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	State             string `json:"state"`
	City              string `json:"city"`
	Address           string `json:"address"`
	AddressAdditional string `json:"addressAdditional"`
	PostalCode        string `json:"postalCode"`
	PhoneNumber       string `json:"phoneNumber"`

	Raw json.RawMessage `json:"-"`
}

// FetchOutcome is the terminal result of fetching one date: either the
// parsed records (possibly none) or the last error after retries were
// exhausted. Exactly one of Records/Err is meaningful.
type FetchOutcome struct {
	Date    time.Time
	Records []LocationRecord
	Err     error
}

// Failed reports whether the outcome is a terminal failure.
func (o FetchOutcome) Failed() bool {
	return o.Err != nil
}

// Entry pairs a search date with one location record.
type Entry struct {
	Date   time.Time
	Record LocationRecord
}

// AggregatedResult is the merged collection of one cycle's fetch outcomes.
// Entries keeps arrival order; Failed tracks terminally failed dates by
// date key. A fresh result is built every cycle.
type AggregatedResult struct {
	Entries    []Entry
	Failed     map[string]error
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewAggregatedResult returns an empty result stamped with the cycle start.
func NewAggregatedResult() *AggregatedResult {
	return &AggregatedResult{
		Entries:   make([]Entry, 0),
		Failed:    make(map[string]error),
		StartedAt: time.Now(),
	}
}

// Merge records one fetch outcome. Successful records are appended in
// arrival order; failures are keyed by date so completion order never
// matters.
func (r *AggregatedResult) Merge(outcome FetchOutcome) {
	if outcome.Failed() {
		r.Failed[outcome.Date.Format(DateKeyLayout)] = outcome.Err
		return
	}
	for _, rec := range outcome.Records {
		r.Entries = append(r.Entries, Entry{Date: outcome.Date, Record: rec})
	}
}

// FailedDates returns the sorted date keys of terminally failed dates.
func (r *AggregatedResult) FailedDates() []string {
	dates := make([]string, 0, len(r.Failed))
	for d := range r.Failed {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// RegionSet is the set of accepted 2-letter region codes. Membership is a
// case-sensitive exact match.
type RegionSet map[string]struct{}

// NewRegionSet builds a RegionSet from a list of codes.
func NewRegionSet(codes []string) RegionSet {
	set := make(RegionSet, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// Contains reports whether the code is an accepted region.
func (s RegionSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// Codes returns the sorted region codes in the set.
func (s RegionSet) Codes() []string {
	codes := make([]string, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// ValidRegionCode reports whether code is a 2-letter uppercase region code.
func ValidRegionCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
