package calendar

import "time"

// Direction selects which way a non-business day is moved.
type Direction int

const (
	// Forward moves bills to the next business day.
	Forward Direction = iota
	// Backward moves paychecks to the previous business day.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// DirectionFor returns Backward for income deposits and Forward for everything else.
func DirectionFor(isPaycheck bool) Direction {
	if isPaycheck {
		return Backward
	}
	return Forward
}

// HolidaySet is a set of ISO dates.
type HolidaySet map[string]struct{}

// NewHolidaySet builds a set from ISO date strings.
func NewHolidaySet(dates ...string) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// Has reports whether the ISO date is a holiday. A nil set has no holidays.
func (h HolidaySet) Has(iso string) bool {
	_, ok := h[iso]
	return ok
}

// Add inserts an ISO date.
func (h HolidaySet) Add(iso string) {
	h[iso] = struct{}{}
}

// Merge copies every date of other into h.
func (h HolidaySet) Merge(other HolidaySet) {
	for d := range other {
		h[d] = struct{}{}
	}
}

// IsWeekend reports Saturday or Sunday in t's location.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBusinessDay reports a weekday that is not a holiday.
func IsBusinessDay(t time.Time, holidays HolidaySet) bool {
	return !IsWeekend(t) && !holidays.Has(ISODate(t))
}

// AdjustToBusinessDay moves t onto a business day.
//
// Backward steps one day at a time. Forward jumps straight to Monday from a
// weekend but steps a single day off a holiday, and re-checks the weekend after
// every step, so a Friday holiday lands on the following Monday.
func AdjustToBusinessDay(t time.Time, dir Direction, holidays HolidaySet) time.Time {
	d := t
	for {
		if dir == Backward {
			if !IsBusinessDay(d, holidays) {
				d = d.AddDate(0, 0, -1)
				continue
			}
			return d
		}

		if IsWeekend(d) {
			d = d.AddDate(0, 0, (8-int(d.Weekday()))%7)
			continue
		}
		if holidays.Has(ISODate(d)) {
			d = d.AddDate(0, 0, 1)
			continue
		}
		return d
	}
}
