// Package calendar holds the date arithmetic used by the projection engine.
// All values are civil dates: midnight in the configured location.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ISOLayout is the wire format for dates stored with projections.
const ISOLayout = "2006-01-02"

const usLayout = "1/2/2006"

// ErrInvalidDate is returned when a date string or value cannot be used.
var ErrInvalidDate = errors.New("invalid date")

// InvalidDateError carries the offending input.
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD or M/D/YYYY", e.Input)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// ParseFlexibleDate accepts YYYY-MM-DD (anything after the first ten characters,
// such as a time component, is ignored) or M/D/YYYY.
func ParseFlexibleDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		if t, err := time.ParseInLocation(ISOLayout, s[:10], loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation(usLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, &InvalidDateError{Input: s}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("start of day: %w", ErrInvalidDate)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), nil
}

// MustStartOfDay is StartOfDay for values already known to be valid.
func MustStartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CalendarDayDiff returns the number of calendar days from b to a.
// DST transitions do not affect the result.
func CalendarDayDiff(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ua.Sub(ub).Hours() / 24)
}

// MonthDiff returns whole calendar months from b's month to a's month.
func MonthDiff(a, b time.Time) int {
	return (a.Year()-b.Year())*12 + int(a.Month()) - int(b.Month())
}

// LastDayOfMonth returns the number of days in t's month.
func LastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateInMonth builds year/month/day in loc, clamping day to the month length.
func DateInMonth(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	if last := LastDayOfMonth(first); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// ISODate formats t as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format(ISOLayout)
}
