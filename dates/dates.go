/*
Package dates provides day-granularity date handling for the attendance engine.

PURPOSE:
  Every business rule in this system operates on calendar days: leave spans,
  remote-work dates, attendance-correction windows, reporting-edge validity.
  Date normalizes away clock time so "the same day" compares equal regardless
  of the hour a request arrived.

KEY CONCEPTS:
  - Date:  A calendar day (UTC-normalized)
  - Range: An inclusive [Start, End] span of days
  - WeekOf: The Sunday-to-Saturday week containing a date (remote-work caps)

USAGE:
  d := dates.Today()
  r := dates.Range{Start: d, End: d.AddDays(4)}
  if r.Contains(dates.Today().AddDays(2)) { ... }

SEE ALSO:
  - hierarchy: edge validity intervals built on Date
  - request: all per-type validation windows built on Date and Range
*/
package dates

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - A calendar day
// =============================================================================

// Date is a day-granularity point in time. The zero value is "no date".
type Date struct {
	t time.Time
}

// New constructs a Date for the given calendar day.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a time.Time to its calendar day.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return New(u.Year(), u.Month(), u.Day())
}

// Today returns the current calendar day.
func Today() Date {
	return FromTime(time.Now())
}

// Parse parses an ISO date (YYYY-MM-DD).
func Parse(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return FromTime(t), nil
}

// MustParse parses an ISO date and panics on failure. Test helper.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }
func (d Date) IsZero() bool                  { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysBetween returns the number of days from d to other (negative if other
// is earlier).
func DaysBetween(d, other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// MarshalJSON encodes the date as an ISO string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes an ISO date string. null yields the zero Date.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		// Accept RFC3339 timestamps too; clients often send full instants.
		t, terr := time.Parse(time.RFC3339, s)
		if terr != nil {
			return err
		}
		parsed = FromTime(t)
	}
	*d = parsed
	return nil
}

// =============================================================================
// RANGE - Inclusive day span
// =============================================================================

// Range is an inclusive [Start, End] span of calendar days.
type Range struct {
	Start Date
	End   Date
}

// NewRange validates and constructs a range. End must not precede Start.
func NewRange(start, end Date) (Range, error) {
	if end.Before(start) {
		return Range{}, fmt.Errorf("invalid range: end %s before start %s", end, start)
	}
	return Range{Start: start, End: end}, nil
}

// Contains reports whether day falls inside the range (inclusive).
func (r Range) Contains(day Date) bool {
	return r.Start.BeforeOrEqual(day) && day.BeforeOrEqual(r.End)
}

// Overlaps reports whether two inclusive ranges intersect.
func (r Range) Overlaps(other Range) bool {
	return r.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(r.End)
}

// Days returns the number of calendar days in the range (at least 1).
func (r Range) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

func (r Range) String() string { return r.Start.String() + ".." + r.End.String() }

// =============================================================================
// WEEK ARITHMETIC
// =============================================================================

// WeekOf returns the Sunday-to-Saturday week containing day.
func WeekOf(day Date) Range {
	start := day.AddDays(-int(day.Weekday()))
	return Range{Start: start, End: start.AddDays(6)}
}
