package util

import "time"

const isoDateLayout = "2006-01-02"

// ParseISODate parses a zero-padded YYYY-MM-DD string as a UTC date.
// Returns (t, true) if it parsed.
func ParseISODate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(isoDateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatISODate renders a time as zero-padded YYYY-MM-DD. The padding matters:
// every date comparison downstream is lexicographic.
func FormatISODate(t time.Time) string {
	return t.UTC().Format(isoDateLayout)
}

// DaysBetween returns calendar days from start to end (negative when end
// precedes start). ok is false when either string is not an ISO date.
// UTC midnight anchoring keeps the division exact across DST and leap years.
func DaysBetween(start, end string) (int, bool) {
	s, ok := ParseISODate(start)
	if !ok {
		return 0, false
	}
	e, ok := ParseISODate(end)
	if !ok {
		return 0, false
	}
	return int(e.Sub(s).Hours() / 24), true
}
