// Package window resolves symbolic date ranges into concrete inclusive
// bounds and filters records against them.
package window

import (
	"fmt"
	"strings"
	"time"

	"nps-insights-go/internal/types"
)

type Selector string

const (
	PastWeek  Selector = "past-week"
	PastMonth Selector = "past-month"
	AllTime   Selector = "all-time"
	Custom    Selector = "custom"
)

const (
	week  = 7 * 24 * time.Hour
	month = 30 * 24 * time.Hour
)

// Bounds are the optional user supplied dates for a Custom selector. Only
// the calendar date of each bound is used.
type Bounds struct {
	Start *time.Time
	End   *time.Time
}

// ParseSelector accepts the CLI/API spellings of a range.
func ParseSelector(s string) (Selector, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.NewReplacer("_", "-", " ", "-").Replace(n)
	switch n {
	case "past-week", "week", "7d":
		return PastWeek, nil
	case "past-month", "month", "30d":
		return PastMonth, nil
	case "", "all-time", "all":
		return AllTime, nil
	case "custom", "custom-date-range":
		return Custom, nil
	}
	return "", fmt.Errorf("%w: unknown range %q", types.ErrInvalidWindow, s)
}

// Resolve turns a selector into inclusive bounds. datasetMin and datasetMax
// are the extreme timestamps of the full, unfiltered dataset. Explicit bounds
// are only accepted with Custom.
func Resolve(sel Selector, now time.Time, b Bounds, datasetMin, datasetMax time.Time) (types.TimeWindow, error) {
	w := types.TimeWindow{Selector: string(sel)}
	if sel != Custom && (b.Start != nil || b.End != nil) {
		return types.TimeWindow{}, fmt.Errorf("%w: start/end dates need the custom range, got %q",
			types.ErrInvalidWindow, sel)
	}
	switch sel {
	case PastWeek:
		w.Start, w.End = now.Add(-week), now
	case PastMonth:
		w.Start, w.End = now.Add(-month), now
	case AllTime:
		w.Start, w.End = datasetMin, datasetMax
	case Custom:
		start, end := datasetMin, datasetMax
		if b.Start != nil {
			start = *b.Start
		}
		if b.End != nil {
			end = *b.End
		}
		w.Start, w.End = StartOfDay(start), EndOfDay(end)
		if w.Start.After(w.End) {
			return types.TimeWindow{}, fmt.Errorf("%w: start %s is after end %s",
				types.ErrInvalidWindow, w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
		}
	default:
		return types.TimeWindow{}, fmt.Errorf("%w: unknown selector %q", types.ErrInvalidWindow, sel)
	}
	return w, nil
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay is the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Filter keeps records with start <= SubmittedAt <= end. The input slice is
// not modified.
func Filter(records []types.Response, w types.TimeWindow) []types.Response {
	out := make([]types.Response, 0, len(records))
	for _, r := range records {
		if w.Contains(r.SubmittedAt) {
			out = append(out, r)
		}
	}
	return out
}

// Span returns the earliest and latest SubmittedAt. ok is false for an
// empty slice.
func Span(records []types.Response) (first, last time.Time, ok bool) {
	for i, r := range records {
		if i == 0 || r.SubmittedAt.Before(first) {
			first = r.SubmittedAt
		}
		if i == 0 || r.SubmittedAt.After(last) {
			last = r.SubmittedAt
		}
	}
	return first, last, len(records) > 0
}

// ParseBounds reads optional YYYY-MM-DD dates for a Custom window.
func ParseBounds(start, end string, loc *time.Location) (Bounds, error) {
	var b Bounds
	parse := func(s string) (*time.Time, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		t, err := time.ParseInLocation(time.DateOnly, s, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q, want YYYY-MM-DD", types.ErrInvalidWindow, s)
		}
		return &t, nil
	}
	var err error
	if b.Start, err = parse(start); err != nil {
		return Bounds{}, err
	}
	if b.End, err = parse(end); err != nil {
		return Bounds{}, err
	}
	return b, nil
}
