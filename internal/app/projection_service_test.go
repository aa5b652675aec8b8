package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget_calendar/internal/calendar"
	"budget_calendar/internal/domain/account"
	"budget_calendar/internal/domain/bill"
	"budget_calendar/internal/domain/holiday"
	"budget_calendar/internal/domain/projection"
	"budget_calendar/internal/forecast"

	"github.com/shopspring/decimal"
)

type harness struct {
	accounts *fakeAccounts
	bills    *fakeBills
	settings *fakeSettings
	store    *fakeStore
	alerts   *fakeAlerts
	svc      *ProjectionService
}

func newHarness(days, batchSize int) *harness {
	settings := projection.DefaultSettings()
	settings.ProjectionDays = days
	h := &harness{
		accounts: &fakeAccounts{accounts: []account.Account{
			{ID: "checking", LastBalance: decimal.NewFromInt(1500)},
			{ID: "savings", LastBalance: decimal.NewFromInt(500)},
		}},
		bills: &fakeBills{bills: []bill.Bill{
			{ID: "rent", Name: "Rent", Amount: decimal.NewFromInt(-1200), Frequency: bill.FrequencyMonthly, StartDate: "2023-06-15"},
		}},
		settings: &fakeSettings{settings: settings},
		store:    newFakeStore(),
		alerts:   &fakeAlerts{},
	}
	h.svc = NewProjectionService(
		h.accounts, h.bills, h.settings, h.store,
		holiday.Static(calendar.NewHolidaySet("2024-01-15")),
		h.alerts,
		ProjectionServiceConfig{
			Location:  time.UTC,
			BatchSize: batchSize,
			Clock:     func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
		},
		testLogger(),
	)
	return h
}

func TestRunPersistsInBatches(t *testing.T) {
	h := newHarness(25, 10)

	report, err := h.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" {
		t.Error("missing run id")
	}
	if report.Batches != 3 {
		t.Errorf("Batches = %d, want 3", report.Batches)
	}

	wantSizes := []int{10, 10, 5}
	if len(h.store.batches) != len(wantSizes) {
		t.Fatalf("got %d insert batches, want %d", len(h.store.batches), len(wantSizes))
	}
	for i, size := range wantSizes {
		if len(h.store.batches[i]) != size {
			t.Errorf("batch %d has %d rows, want %d", i, len(h.store.batches[i]), size)
		}
	}

	wantCalls := []string{"delete 2024-01-01", "clear", "insert", "insert", "insert"}
	if len(h.store.calls) != len(wantCalls) {
		t.Fatalf("calls = %v, want %v", h.store.calls, wantCalls)
	}
	for i := range wantCalls {
		if h.store.calls[i] != wantCalls[i] {
			t.Errorf("call %d = %q, want %q", i, h.store.calls[i], wantCalls[i])
		}
	}

	if len(h.settings.projected) != 1 {
		t.Errorf("MarkProjected called %d times, want 1", len(h.settings.projected))
	}

	rent, ok := h.store.rows["2024-01-16"]
	if !ok || len(rent.Bills) != 1 || !rent.ProjectedBalance.Equal(decimal.NewFromInt(800)) {
		t.Errorf("rent day row = %+v", rent)
	}
	if h.alerts.lowCount != 1 {
		t.Errorf("low balance alerts = %d, want 1", h.alerts.lowCount)
	}
}

func TestRunWithoutAccountsWritesNothing(t *testing.T) {
	h := newHarness(7, 10)
	h.accounts.accounts = nil

	_, err := h.svc.Run(context.Background())
	if !errors.Is(err, forecast.ErrNoAccounts) {
		t.Fatalf("error = %v, want ErrNoAccounts", err)
	}
	if len(h.store.calls) != 0 {
		t.Errorf("store calls = %v, want none", h.store.calls)
	}
	if len(h.settings.projected) != 0 {
		t.Error("MarkProjected called on a failed run")
	}
	if len(h.alerts.failures) != 1 {
		t.Errorf("failure alerts = %d, want 1", len(h.alerts.failures))
	}
}

func TestRunFetchFailureIsPersistenceError(t *testing.T) {
	h := newHarness(7, 10)
	h.bills.err = errBoom

	_, err := h.svc.Run(context.Background())
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want ErrPersistence wrapping boom", err)
	}
	if len(h.store.calls) != 0 {
		t.Errorf("store calls = %v, want none", h.store.calls)
	}
}

func TestRunInsertFailureStopsRun(t *testing.T) {
	h := newHarness(25, 10)
	h.store.failInsertAt = 2

	_, err := h.svc.Run(context.Background())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
	if len(h.store.batches) != 1 {
		t.Errorf("committed batches = %d, want 1", len(h.store.batches))
	}
	if len(h.settings.projected) != 0 {
		t.Error("MarkProjected called after insert failure")
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	h := newHarness(7, 10)
	h.store.entered = make(chan struct{})
	h.store.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Run(context.Background())
		done <- err
	}()
	<-h.store.entered

	if _, err := h.svc.Run(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("second run error = %v, want ErrRunInProgress", err)
	}

	close(h.store.release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}

func TestRunLockHeldElsewhere(t *testing.T) {
	h := newHarness(7, 10)
	h.store.lockErr = projection.ErrRunLocked

	_, err := h.svc.Run(context.Background())
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("error = %v, want ErrRunInProgress", err)
	}
	if len(h.alerts.failures) != 0 {
		t.Error("lock contention should not raise a failure alert")
	}
}

func TestRunDaysOverride(t *testing.T) {
	h := newHarness(7, 10)
	h.svc.cfg.DaysOverride = 3

	report, err := h.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len(report.Result.Projections); got != 3 {
		t.Errorf("projected %d days, want 3", got)
	}
}

func TestPreviewDoesNotWrite(t *testing.T) {
	h := newHarness(7, 10)

	res, err := h.svc.Preview(context.Background(), 45)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(res.Projections) != 45 {
		t.Errorf("len(Projections) = %d, want 45", len(res.Projections))
	}
	if len(h.store.calls) != 0 {
		t.Errorf("store calls = %v, want none", h.store.calls)
	}
}

func TestValidateAfterRun(t *testing.T) {
	h := newHarness(30, 10)
	ctx := context.Background()

	if _, err := h.svc.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	report, err := h.svc.Validate(ctx)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !report.Valid() {
		t.Fatalf("fresh run should validate: %+v", report)
	}

	// A new bill that was never projected shows up as missing.
	h.bills.bills = append(h.bills.bills, bill.Bill{
		ID: "gym", Name: "Gym", Amount: decimal.NewFromInt(-40), Frequency: bill.FrequencyOneTime, StartDate: "2024-01-10",
	})
	report, err = h.svc.Validate(ctx)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if names := report.MissingBillNames(); len(names) != 1 || names[0] != "Gym" {
		t.Errorf("MissingBillNames() = %v, want [Gym]", names)
	}
}

func TestUpcomingOnlyDaysWithBills(t *testing.T) {
	h := newHarness(60, 10)
	ctx := context.Background()
	if _, err := h.svc.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rows, err := h.svc.Upcoming(ctx, 1)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(rows) != 1 || rows[0].ProjDate != "2024-01-16" {
		t.Errorf("Upcoming = %+v, want the rent day", rows)
	}
}

func TestBalanceUsesOverride(t *testing.T) {
	h := newHarness(7, 10)
	h.settings.settings.ManualBalanceOverride = decimal.NewNullDecimal(decimal.NewFromInt(42))

	sum, err := h.svc.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !sum.Total.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("Total = %s, want 2000", sum.Total)
	}
	if !sum.Starting.Equal(decimal.NewFromInt(42)) {
		t.Errorf("Starting = %s, want 42", sum.Starting)
	}
}
