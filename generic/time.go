package generic

import (
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - Day-granular date (payroll never cares about hours)
// =============================================================================

// TimePoint is a calendar day in UTC. The zero value means "no date".
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func TimePointOf(t time.Time) TimePoint {
	if t.IsZero() {
		return TimePoint{}
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsWeekend() bool       { wd := tp.Weekday(); return wd == time.Saturday || wd == time.Sunday }
func (tp TimePoint) IsWorkday() bool       { return !tp.IsWeekend() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// String renders the ISO date, or "" for the zero value.
func (tp TimePoint) String() string {
	if tp.IsZero() {
		return ""
	}
	return tp.Time.Format("2006-01-02")
}

// BR renders dd/mm/yyyy, or "" for the zero value.
func (tp TimePoint) BR() string {
	if tp.IsZero() {
		return ""
	}
	return tp.Time.Format("02/01/2006")
}

// =============================================================================
// TOLERANT DATE PARSING
// =============================================================================

// dateLayouts are tried in order. Day-first layouts come before month-first
// because every source is Brazilian.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
}

// ParseDate parses a loosely formatted date. Unparseable or empty input is
// reported as absent, never as an error.
func ParseDate(s string) (TimePoint, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return TimePoint{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, t); err == nil {
			return TimePointOf(parsed), true
		}
	}
	return TimePoint{}, false
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func EndOfMonth(year int, month time.Month) TimePoint {
	return TimePoint{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}
