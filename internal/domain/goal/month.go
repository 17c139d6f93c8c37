package goal

import (
	"regexp"
	"strings"
	"time"
)

// MonthLayout is the time layout for a YYYY-MM target month bucket.
const MonthLayout = "2006-01"

// DateLayout is the normalized date form all inputs are rewritten to.
const DateLayout = "2006-01-02"

var (
	monthRe   = regexp.MustCompile(`^\d{4}-\d{2}$`)
	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmyDateRe = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
)

// NormalizeMonth reduces a YYYY-MM or YYYY-MM-DD string to its YYYY-MM
// bucket. Anything else yields the empty string.
func NormalizeMonth(value string) string {
	trimmed := strings.TrimSpace(value)
	switch {
	case monthRe.MatchString(trimmed):
		return trimmed
	case isoDateRe.MatchString(trimmed):
		return trimmed[:7]
	default:
		return ""
	}
}

// ParseTargetDate parses a goal due date. Accepted forms are YYYY-MM-DD,
// DD-MM-YYYY and RFC 3339 timestamps; all are normalized to a UTC date.
func ParseTargetDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	if isoDateRe.MatchString(trimmed) {
		t, err := time.ParseInLocation(DateLayout, trimmed, time.UTC)
		return t, err == nil
	}
	if dmyDateRe.MatchString(trimmed) {
		t, err := time.ParseInLocation("02-01-2006", trimmed, time.UTC)
		return t, err == nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// PrevMonth returns the YYYY-MM bucket immediately before month, or the
// empty string when month is not a valid bucket.
func PrevMonth(month string) string {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return ""
	}
	return t.AddDate(0, -1, 0).Format(MonthLayout)
}

// MonthsFrom returns n consecutive YYYY-MM buckets starting at start.
// An invalid start yields nil.
func MonthsFrom(start string, n int) []string {
	t, err := time.Parse(MonthLayout, start)
	if err != nil || n <= 0 {
		return nil
	}
	months := make([]string, 0, n)
	for i := range n {
		months = append(months, t.AddDate(0, i, 0).Format(MonthLayout))
	}
	return months
}

// MonthLabel renders a YYYY-MM bucket as a human-readable label, e.g.
// "March 2025". Invalid buckets are returned unchanged.
func MonthLabel(month string) string {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}
