package dates

import (
	"errors"
	"time"
)

// Layout is the external date format accepted at the HTTP boundary.
const Layout = "02-01-2006"

var ErrInvalidRange = errors.New("dates: startDate must be before endDate")

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a DD-MM-YYYY day string as UTC midnight.
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(Layout, value, time.UTC)
}

func FormatDay(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Range is an inclusive pair of calendar days [Start, End].
type Range struct {
	Start time.Time
	End   time.Time
}

func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: Day(start), End: Day(end)}
	if r.Start.After(r.End) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// ParseRange parses start/end day strings; both must be present.
func ParseRange(start, end string) (Range, error) {
	s, err := ParseDay(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return Range{}, err
	}
	return NewRange(s, e)
}

// CurrentMonth returns the first and last day of the month containing now.
func CurrentMonth(now time.Time) Range {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return Range{Start: first, End: last}
}

func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Overlaps reports whether the inclusive ranges share at least one day.
func (r Range) Overlaps(other Range) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

func (r Range) Contains(day time.Time) bool {
	day = Day(day)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Clip narrows r to the intersection with bounds. The caller must ensure
// the ranges overlap.
func (r Range) Clip(bounds Range) Range {
	out := r
	if bounds.Start.After(out.Start) {
		out.Start = bounds.Start
	}
	if bounds.End.Before(out.End) {
		out.End = bounds.End
	}
	return out
}
