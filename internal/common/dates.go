package common

import (
	"strings"
	"time"
)

// DayFormat is the wire format for business days and operating days.
const DayFormat = "2006-01-02"

// ParseDay parses a calendar date in YYYY-MM-DD form. The zone is always UTC;
// business days are dates, never instants.
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(DayFormat, strings.TrimSpace(value), time.UTC)
}

// FormatDay renders a calendar date in YYYY-MM-DD form.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}

// Today returns the current calendar date truncated to UTC midnight.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
