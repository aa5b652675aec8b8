// Package forecast turns bill definitions into a day-by-day balance projection.
// Nothing in this package performs I/O.
package forecast

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"budget_calendar/internal/calendar"
	"budget_calendar/internal/domain/bill"
)

// edgePadDays widens the range of intended dates on both sides of the window so
// that occurrences adjusted across the window edges are still seen.
const edgePadDays = 7

// ErrUnknownFrequency is returned for a bill whose frequency is not supported.
var ErrUnknownFrequency = errors.New("unknown bill frequency")

// BillError records a bill that was skipped during a run.
type BillError struct {
	Bill bill.Bill
	Err  error
}

func (e BillError) Error() string {
	return fmt.Sprintf("bill %s (%s): %v", e.Bill.ID, e.Bill.Name, e.Err)
}

func (e BillError) Unwrap() error { return e.Err }

// BillSchedule is where a single bill lands relative to a projection window.
type BillSchedule struct {
	// OccursToday is set when an adjusted occurrence falls on today.
	OccursToday bool
	// Future holds adjusted occurrence dates strictly after today and before the
	// end of the window, ascending and unique.
	Future []time.Time
}

type billBounds struct {
	start  time.Time
	end    time.Time
	hasEnd bool
}

// contains applies the start/end bounds to both the intended and the adjusted
// date, paychecks included.
func (b billBounds) contains(intended, adjusted time.Time) bool {
	earliest, latest := intended, adjusted
	if adjusted.Before(intended) {
		earliest, latest = adjusted, intended
	}
	if calendar.CalendarDayDiff(earliest, b.start) < 0 {
		return false
	}
	if b.hasEnd && calendar.CalendarDayDiff(latest, b.end) > 0 {
		return false
	}
	return true
}

func parseBounds(b bill.Bill, loc *time.Location) (billBounds, error) {
	start, err := calendar.ParseFlexibleDate(b.StartDate, loc)
	if err != nil {
		return billBounds{}, fmt.Errorf("start date: %w", err)
	}
	bounds := billBounds{start: start}
	if strings.TrimSpace(b.EndDate) != "" {
		end, err := calendar.ParseFlexibleDate(b.EndDate, loc)
		if err != nil {
			return billBounds{}, fmt.Errorf("end date: %w", err)
		}
		bounds.end = end
		bounds.hasEnd = true
	}
	return bounds, nil
}

// Occurrences places one bill on the window [today, today+horizon).
// today must be a civil date; its location is used to parse the bill's dates.
func Occurrences(b bill.Bill, today time.Time, horizon int, holidays calendar.HolidaySet) (BillSchedule, error) {
	if !b.Frequency.Valid() {
		return BillSchedule{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, b.Frequency)
	}
	bounds, err := parseBounds(b, today.Location())
	if err != nil {
		return BillSchedule{}, err
	}

	from := today.AddDate(0, 0, -edgePadDays)
	to := today.AddDate(0, 0, horizon+edgePadDays)
	dir := calendar.DirectionFor(b.IsPaycheck())

	var sched BillSchedule
	seen := make(map[string]struct{})
	for _, intended := range intendedDates(b, bounds.start, from, to) {
		adjusted := intended
		if b.Frequency != bill.FrequencyDaily {
			adjusted = calendar.AdjustToBusinessDay(intended, dir, holidays)
		}
		if !bounds.contains(intended, adjusted) {
			continue
		}

		offset := calendar.CalendarDayDiff(adjusted, today)
		switch {
		case offset == 0:
			sched.OccursToday = true
		case offset > 0 && offset < horizon:
			key := calendar.ISODate(adjusted)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			sched.Future = append(sched.Future, adjusted)
		}
	}

	sort.Slice(sched.Future, func(i, j int) bool { return sched.Future[i].Before(sched.Future[j]) })
	return sched, nil
}

// intendedDates lists the unadjusted occurrence dates of b that fall in
// [from, to]. The start bound is not applied here.
func intendedDates(b bill.Bill, start, from, to time.Time) []time.Time {
	n := b.Interval()
	var out []time.Time

	switch b.Frequency {
	case bill.FrequencyOneTime:
		if inRange(start, from, to) {
			out = append(out, start)
		}

	case bill.FrequencyDaily, bill.FrequencyWeekly:
		step := n
		if b.Frequency == bill.FrequencyWeekly {
			step = 7 * n
		}
		k := 0
		if lead := calendar.CalendarDayDiff(from, start); lead > 0 {
			k = ceilDiv(lead, step)
		}
		for d := start.AddDate(0, 0, k*step); calendar.CalendarDayDiff(d, to) <= 0; d = d.AddDate(0, 0, step) {
			out = append(out, d)
		}

	case bill.FrequencyMonthly:
		m := 0
		if lead := calendar.MonthDiff(from, start); lead > 0 {
			m = ceilDiv(lead, n) * n
		}
		for ; ; m += n {
			cursor := time.Date(start.Year(), start.Month()+time.Month(m), 1, 0, 0, 0, 0, start.Location())
			if calendar.CalendarDayDiff(cursor, to) > 0 {
				break
			}
			d := calendar.DateInMonth(cursor.Year(), cursor.Month(), start.Day(), start.Location())
			if inRange(d, from, to) {
				out = append(out, d)
			}
		}

	case bill.FrequencyYearly:
		y := 0
		if lead := from.Year() - start.Year(); lead > 0 {
			y = ceilDiv(lead, n) * n
		}
		for ; start.Year()+y <= to.Year(); y += n {
			d := calendar.DateInMonth(start.Year()+y, start.Month(), start.Day(), start.Location())
			if inRange(d, from, to) {
				out = append(out, d)
			}
		}
	}

	return out
}

func inRange(d, from, to time.Time) bool {
	return calendar.CalendarDayDiff(d, from) >= 0 && calendar.CalendarDayDiff(d, to) <= 0
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
