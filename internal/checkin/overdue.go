package checkin

import "time"

// Unit sizes for threshold computation. Months use a fixed 30-day
// approximation; this is intentional and matches the product's observed
// behavior rather than calendar months.
const (
	unitSecond = time.Second
	unitDay    = 24 * time.Hour
	unitWeek   = 7 * unitDay
	unitMonth  = 30 * unitDay
)

// Threshold returns how long after the last contact a friend becomes overdue.
// Returns 0 for the None cadence.
func Threshold(c Cadence) time.Duration {
	var unit time.Duration
	switch c.Interval {
	case IntervalSeconds:
		unit = unitSecond
	case IntervalDays:
		unit = unitDay
	case IntervalWeeks:
		unit = unitWeek
	case IntervalMonths:
		unit = unitMonth
	default:
		return 0
	}
	return time.Duration(c.Every) * unit
}

// IsOverdue reports whether a friend needs a check-in. lastSeen is nil when
// the friend has never been seen; such friends are always overdue once a
// cadence is active. The boundary is inclusive: exactly-at-threshold counts
// as overdue.
func IsOverdue(lastSeen *time.Time, c Cadence, enabled bool, now time.Time) bool {
	if !enabled {
		return false
	}
	if c.Interval == IntervalNone {
		return false
	}
	if lastSeen == nil {
		return true
	}
	return now.Sub(*lastSeen) >= Threshold(c)
}

// IsOverdueISO evaluates overdue state from a raw ISO-8601 last-seen string.
// Unparseable timestamps fail closed: they are treated as "never seen", so the
// friend shows as overdue rather than silently dropping off the reminder list.
func IsOverdueISO(lastSeen string, c Cadence, enabled bool, now time.Time) bool {
	return IsOverdue(ParseLastSeen(lastSeen), c, enabled, now)
}

// ParseLastSeen parses an ISO-8601 timestamp, returning nil when the value is
// empty or malformed.
func ParseLastSeen(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
