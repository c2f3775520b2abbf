package board

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HoursPerDay converts effort estimates into calendar days.
const HoursPerDay = 8

// SpanDays is the number of calendar days a job of the given effort occupies:
// ceil(hours/8), never less than one day.
func SpanDays(hours float64) int {
	days := int(math.Ceil(hours / HoursPerDay))
	if days < 1 {
		return 1
	}
	return days
}

// EndDate derives the last day of a job starting on start.
func EndDate(start string, hours float64) (string, error) {
	return AddDays(start, SpanDays(hours)-1)
}

// ParseHours parses an effort value typed by the user. Blank, non-numeric,
// negative and non-finite inputs are rejected.
func ParseHours(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidHours)
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHours, raw)
	}
	if h < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidHours, raw)
	}
	return h, nil
}
