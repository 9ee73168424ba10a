package util

import (
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
}

// ParseDate tries the ISO-8601 layouts the hydromet API emits, most specific first.
// Returns (t, true) if any worked.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDateDefault parses a date or returns default if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return def
}

// FormatMonth renders a timestamp as year-month, the granularity of the
// metamodel series.
func FormatMonth(t time.Time) string {
	return t.Format("2006-01")
}
