package board

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for every date on the board.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate formats the calendar day of t, ignoring its clock and zone.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// Day truncates t to its calendar day in t's own location and returns that
// day as midnight UTC, so day arithmetic never crosses a DST boundary.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DatesBetween lists every calendar day from start to end inclusive.
// end before start yields an empty slice.
func DatesBetween(start, end time.Time) []string {
	s, e := Day(start), Day(end)
	if e.Before(s) {
		return []string{}
	}
	out := make([]string, 0, int(e.Sub(s).Hours()/24)+1)
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, FormatDate(d))
	}
	return out
}

// BuildAxis returns the window [today, today+days-1]. Bounds on days are the
// caller's business; days <= 0 yields an empty axis.
func BuildAxis(today time.Time, days int) []string {
	if days <= 0 {
		return []string{}
	}
	start := Day(today)
	return DatesBetween(start, start.AddDate(0, 0, days-1))
}

// IndexOf returns the column of date in axis, or -1.
func IndexOf(axis []string, date string) int {
	if date == "" {
		return -1
	}
	for i, d := range axis {
		if d == date {
			return i
		}
	}
	return -1
}
