package generic

// =============================================================================
// PERIOD - Inclusive day range
// =============================================================================

// Period is the inclusive day range [Start, End].
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period. Empty when End is before Start.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// DAY BASIS - Which days count when prorating
// =============================================================================

// DayBasis selects which days of a period qualify when counting.
type DayBasis string

const (
	BasisBusiness DayBasis = "business" // Monday to Friday
	BasisCalendar DayBasis = "calendar" // every day
)

// Valid reports whether b is a known basis.
func (b DayBasis) Valid() bool {
	return b == BasisBusiness || b == BasisCalendar
}

// Count returns how many days of p qualify under the basis.
func (b DayBasis) Count(p Period) int {
	n := 0
	for _, d := range p.Days() {
		if b == BasisCalendar || d.IsWorkday() {
			n++
		}
	}
	return n
}
