package app

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"budget_calendar/internal/domain/account"
	"budget_calendar/internal/domain/bill"
	"budget_calendar/internal/domain/projection"
	"budget_calendar/internal/forecast"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var errBoom = errors.New("boom")

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fakeAccounts struct {
	accounts []account.Account
	err      error
}

func (f *fakeAccounts) ListAll(context.Context) ([]account.Account, error) {
	return f.accounts, f.err
}

type fakeBills struct {
	bills []bill.Bill
	err   error
}

func (f *fakeBills) ListAll(context.Context) ([]bill.Bill, error) {
	return f.bills, f.err
}

type fakeSettings struct {
	mu        sync.Mutex
	settings  projection.Settings
	projected []time.Time
}

func (f *fakeSettings) Get(context.Context) (projection.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings, nil
}

func (f *fakeSettings) MarkProjected(_ context.Context, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projected = append(f.projected, at)
	return nil
}

// fakeStore keeps rows in memory and records every call.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[string]projection.Projection
	calls   []string
	batches [][]projection.Projection

	failInsertAt int // 1-based batch number; 0 never fails
	lockErr      error
	// When set, WithRunLock signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]projection.Projection)}
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeStore) DeleteFrom(_ context.Context, date string) error {
	f.record("delete " + date)
	f.mu.Lock()
	defer f.mu.Unlock()
	for d := range f.rows {
		if d >= date {
			delete(f.rows, d)
		}
	}
	return nil
}

func (f *fakeStore) ClearStaleFlags(context.Context) error {
	f.record("clear")
	f.mu.Lock()
	defer f.mu.Unlock()
	for d, p := range f.rows {
		p.Highest, p.Lowest = false, false
		f.rows[d] = p
	}
	return nil
}

func (f *fakeStore) InsertBatch(_ context.Context, rows []projection.Projection) error {
	f.record("insert")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsertAt > 0 && len(f.batches)+1 == f.failInsertAt {
		return errBoom
	}
	f.batches = append(f.batches, append([]projection.Projection(nil), rows...))
	for _, p := range rows {
		f.rows[p.ProjDate] = p
	}
	return nil
}

func (f *fakeStore) ListFrom(_ context.Context, date string) ([]projection.Projection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []projection.Projection
	for d, p := range f.rows {
		if d >= date {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjDate < out[j].ProjDate })
	return out, nil
}

func (f *fakeStore) WithRunLock(ctx context.Context, fn func(context.Context) error) error {
	if f.lockErr != nil {
		return f.lockErr
	}
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	return fn(ctx)
}

type fakeAlerts struct {
	mu       sync.Mutex
	lowCount int
	failures []error
}

func (f *fakeAlerts) NotifyLowBalance(context.Context, *forecast.Result, decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lowCount++
	return nil
}

func (f *fakeAlerts) NotifyRunFailure(_ context.Context, _ string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, err)
	return nil
}
