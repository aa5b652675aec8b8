package forecast

import (
	"errors"
	"fmt"
	"time"

	"budget_calendar/internal/calendar"
	"budget_calendar/internal/domain/account"
	"budget_calendar/internal/domain/bill"
	"budget_calendar/internal/domain/projection"

	"github.com/shopspring/decimal"
)

// ErrNoAccounts means there is no balance to project from.
var ErrNoAccounts = errors.New("no accounts found, cannot compute projections")

// ErrInvalidHorizon is returned when ProjectionDays is below one.
var ErrInvalidHorizon = errors.New("projection days must be at least 1")

// Input is everything a projection run depends on.
type Input struct {
	Today    time.Time // civil date in the run's timezone
	Accounts []account.Account
	Bills    []bill.Bill
	Holidays calendar.HolidaySet
	Settings projection.Settings
}

// Result is the output of Compute.
type Result struct {
	Today           string
	StartingBalance decimal.Decimal
	// Projections has one entry per day, today first.
	Projections []projection.Projection
	// TodayBills are listed on today's entry but already reflected in the balance.
	TodayBills []bill.Bill
	// Skipped lists bills that could not be scheduled. The run still succeeds.
	Skipped []BillError
	// FirstBreach is the earliest day below the balance threshold, if any.
	FirstBreach *projection.Projection
}

// Future returns the projections after today.
func (r *Result) Future() []projection.Projection {
	if len(r.Projections) < 2 {
		return nil
	}
	return r.Projections[1:]
}

// StartingBalance is the manual override when set, otherwise the account total.
func StartingBalance(accounts []account.Account, settings projection.Settings) decimal.Decimal {
	if settings.ManualBalanceOverride.Valid {
		return settings.ManualBalanceOverride.Decimal
	}
	return account.TotalBalance(accounts)
}

// Compute builds the projection for [today, today+ProjectionDays).
//
// Bills landing on today are listed on today's entry but not applied to its
// balance: the starting balance is assumed to already include them.
func Compute(in Input) (*Result, error) {
	if len(in.Accounts) == 0 {
		return nil, ErrNoAccounts
	}
	horizon := in.Settings.ProjectionDays
	if horizon < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizon)
	}
	today, err := calendar.StartOfDay(in.Today)
	if err != nil {
		return nil, fmt.Errorf("today: %w", err)
	}

	res := &Result{
		Today:           calendar.ISODate(today),
		StartingBalance: StartingBalance(in.Accounts, in.Settings),
	}

	todayBills := newDayBills()
	billsByDate := make(map[string]*dayBills)
	for _, b := range in.Bills {
		sched, err := Occurrences(b, today, horizon, in.Holidays)
		if err != nil {
			res.Skipped = append(res.Skipped, BillError{Bill: b, Err: err})
			continue
		}
		if sched.OccursToday {
			todayBills.add(b)
		}
		for _, d := range sched.Future {
			key := calendar.ISODate(d)
			day, ok := billsByDate[key]
			if !ok {
				day = newDayBills()
				billsByDate[key] = day
			}
			day.add(b)
		}
	}

	res.TodayBills = todayBills.list
	res.Projections = make([]projection.Projection, 0, horizon)
	res.Projections = append(res.Projections, projection.Projection{
		ProjDate:         res.Today,
		ProjectedBalance: res.StartingBalance.Round(2),
		Bills:            todayBills.list,
	})

	running := res.StartingBalance
	for i := 1; i < horizon; i++ {
		key := calendar.ISODate(today.AddDate(0, 0, i))
		var billsForDay []bill.Bill
		if day, ok := billsByDate[key]; ok {
			billsForDay = day.list
		}
		for _, b := range billsForDay {
			running = running.Add(b.Amount)
		}
		res.Projections = append(res.Projections, projection.Projection{
			ProjDate:         key,
			ProjectedBalance: running.Round(2),
			Bills:            nonNil(billsForDay),
		})
	}

	markExtremes(res.Projections)
	res.FirstBreach = firstBelow(res.Projections, in.Settings.BalanceThreshold)
	return res, nil
}

// markExtremes flags the first maximum and first minimum, ignoring today.
func markExtremes(rows []projection.Projection) {
	if len(rows) < 2 {
		return
	}
	hi, lo := 1, 1
	for i := 2; i < len(rows); i++ {
		if rows[i].ProjectedBalance.GreaterThan(rows[hi].ProjectedBalance) {
			hi = i
		}
		if rows[i].ProjectedBalance.LessThan(rows[lo].ProjectedBalance) {
			lo = i
		}
	}
	rows[hi].Highest = true
	rows[lo].Lowest = true
}

func firstBelow(rows []projection.Projection, threshold decimal.Decimal) *projection.Projection {
	for i := range rows {
		if rows[i].ProjectedBalance.LessThan(threshold) {
			p := rows[i]
			return &p
		}
	}
	return nil
}

// dayBills keeps insertion order and drops repeated bill ids.
type dayBills struct {
	ids  map[string]struct{}
	list []bill.Bill
}

func newDayBills() *dayBills {
	return &dayBills{ids: make(map[string]struct{}), list: []bill.Bill{}}
}

func (d *dayBills) add(b bill.Bill) {
	if _, dup := d.ids[b.ID]; dup {
		return
	}
	d.ids[b.ID] = struct{}{}
	d.list = append(d.list, b)
}

func nonNil(bills []bill.Bill) []bill.Bill {
	if bills == nil {
		return []bill.Bill{}
	}
	return bills
}
