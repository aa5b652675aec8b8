package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"budget_calendar/internal/calendar"
	"budget_calendar/internal/domain/account"
	"budget_calendar/internal/domain/bill"
	"budget_calendar/internal/domain/holiday"
	"budget_calendar/internal/domain/projection"
	"budget_calendar/internal/forecast"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultInsertBatchSize is how many projection rows go into one transaction.
const DefaultInsertBatchSize = 10

// holidayPadDays matches the padding the occurrence generator looks past the window.
const holidayPadDays = 7

// ProjectionServiceConfig tunes a ProjectionService.
type ProjectionServiceConfig struct {
	Location  *time.Location
	BatchSize int
	// DaysOverride replaces the stored ProjectionDays when positive.
	DaysOverride int
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// RunReport summarises a persisted projection run.
type RunReport struct {
	RunID  string
	Result *forecast.Result
	// Batches is the number of insert transactions committed.
	Batches int
}

// ProjectionService loads inputs, computes the forecast and persists it.
// At most one Run executes at a time per process; the store lock extends that
// across processes.
type ProjectionService struct {
	accounts account.Repository
	bills    bill.Repository
	settings projection.SettingsRepository
	store    projection.Repository
	holidays holiday.Provider
	alerts   AlertService
	cfg      ProjectionServiceConfig
	logger   *logrus.Entry

	runMu sync.Mutex
}

func NewProjectionService(
	accounts account.Repository,
	bills bill.Repository,
	settings projection.SettingsRepository,
	store projection.Repository,
	holidays holiday.Provider,
	alerts AlertService,
	cfg ProjectionServiceConfig,
	logger *logrus.Entry,
) *ProjectionService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultInsertBatchSize
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if alerts == nil {
		alerts = NewLogAlertService(logger)
	}
	return &ProjectionService{
		accounts: accounts,
		bills:    bills,
		settings: settings,
		store:    store,
		holidays: holidays,
		alerts:   alerts,
		cfg:      cfg,
		logger:   logger.WithField("component", "projection_service"),
	}
}

// Today is the current civil date in the configured timezone.
func (s *ProjectionService) Today() time.Time {
	return calendar.MustStartOfDay(s.cfg.Clock().In(s.cfg.Location))
}

// Run recomputes projections from today and replaces the stored rows.
// The owner is alerted on failure and when the balance dips below threshold.
func (s *ProjectionService) Run(ctx context.Context) (*RunReport, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	report := &RunReport{RunID: uuid.NewString()}
	logCtx := s.logger.WithField("run_id", report.RunID)
	started := s.cfg.Clock()
	logCtx.Info("Projection run started")

	var settings projection.Settings
	err := s.store.WithRunLock(ctx, func(ctx context.Context) error {
		in, err := s.loadInput(ctx, s.Today(), 0)
		if err != nil {
			return err
		}
		settings = in.Settings

		res, err := forecast.Compute(in)
		if err != nil {
			return err
		}
		report.Result = res
		for _, skipped := range res.Skipped {
			logCtx.WithError(skipped.Err).WithFields(logrus.Fields{
				"bill_id":    skipped.Bill.ID,
				"bill_name":  skipped.Bill.Name,
				"start_date": skipped.Bill.StartDate,
			}).Warn("Skipping bill that cannot be scheduled")
		}

		report.Batches, err = s.persist(ctx, res)
		if err != nil {
			return err
		}
		if err := s.settings.MarkProjected(ctx, s.cfg.Clock()); err != nil {
			return fmt.Errorf("%w: mark projected: %w", ErrPersistence, err)
		}
		return nil
	})
	if errors.Is(err, projection.ErrRunLocked) {
		logCtx.Warn("Another process holds the projection run lock")
		return nil, fmt.Errorf("%w: %w", ErrRunInProgress, err)
	}
	if err != nil {
		logCtx.WithError(err).Error("Projection run failed")
		if alertErr := s.alerts.NotifyRunFailure(ctx, report.RunID, err); alertErr != nil {
			logCtx.WithError(alertErr).Warn("Failure alert not delivered")
		}
		return nil, err
	}

	res := report.Result
	logCtx.WithFields(logrus.Fields{
		"today":            res.Today,
		"days":             len(res.Projections),
		"starting_balance": res.StartingBalance.StringFixed(2),
		"skipped_bills":    len(res.Skipped),
		"batches":          report.Batches,
		"duration":         s.cfg.Clock().Sub(started).String(),
	}).Info("Projection run completed")

	if res.FirstBreach != nil {
		if err := s.alerts.NotifyLowBalance(ctx, res, settings.BalanceThreshold); err != nil {
			logCtx.WithError(err).Warn("Low balance alert not delivered")
		}
	}
	return report, nil
}

// Preview computes the projection without touching stored rows.
// days overrides the horizon when positive.
func (s *ProjectionService) Preview(ctx context.Context, days int) (*forecast.Result, error) {
	in, err := s.loadInput(ctx, s.Today(), days)
	if err != nil {
		return nil, err
	}
	return forecast.Compute(in)
}

// Validate compares stored rows from today on with a fresh computation.
func (s *ProjectionService) Validate(ctx context.Context) (forecast.ValidationReport, error) {
	res, err := s.Preview(ctx, 0)
	if err != nil {
		return forecast.ValidationReport{}, err
	}
	stored, err := s.store.ListFrom(ctx, res.Today)
	if err != nil {
		return forecast.ValidationReport{}, fmt.Errorf("%w: list projections: %w", ErrPersistence, err)
	}
	return forecast.Validate(stored, res.Projections), nil
}

// Upcoming returns stored rows from today that carry at least one bill,
// at most limit of them.
func (s *ProjectionService) Upcoming(ctx context.Context, limit int) ([]projection.Projection, error) {
	rows, err := s.store.ListFrom(ctx, calendar.ISODate(s.Today()))
	if err != nil {
		return nil, fmt.Errorf("%w: list projections: %w", ErrPersistence, err)
	}
	var out []projection.Projection
	for _, p := range rows {
		if len(p.Bills) == 0 {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// BalanceSummary is the starting balance a run would use.
type BalanceSummary struct {
	Accounts    []account.Account
	Total       decimal.Decimal
	Override    decimal.NullDecimal
	Starting    decimal.Decimal
	Threshold   decimal.Decimal
	ProjectedAt *time.Time
}

func (s *ProjectionService) Balance(ctx context.Context) (BalanceSummary, error) {
	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return BalanceSummary{}, fmt.Errorf("%w: list accounts: %w", ErrPersistence, err)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return BalanceSummary{}, fmt.Errorf("%w: get settings: %w", ErrPersistence, err)
	}
	return BalanceSummary{
		Accounts:    accounts,
		Total:       account.TotalBalance(accounts),
		Override:    settings.ManualBalanceOverride,
		Starting:    forecast.StartingBalance(accounts, settings),
		Threshold:   settings.BalanceThreshold,
		ProjectedAt: settings.LastProjectedAt,
	}, nil
}

// CashFlow normalises every bill to monthly amounts.
func (s *ProjectionService) CashFlow(ctx context.Context) (forecast.CashFlow, error) {
	bills, err := s.bills.ListAll(ctx)
	if err != nil {
		return forecast.CashFlow{}, fmt.Errorf("%w: list bills: %w", ErrPersistence, err)
	}
	return forecast.MonthlyCashFlow(bills), nil
}

// loadInput fetches accounts, bills and holidays concurrently once settings are
// known. days, then the configured override, replace the stored horizon when positive.
func (s *ProjectionService) loadInput(ctx context.Context, today time.Time, days int) (forecast.Input, error) {
	in := forecast.Input{Today: today}

	// Settings decide the holiday range, so they are read first.
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return in, fmt.Errorf("%w: get settings: %w", ErrPersistence, err)
	}
	switch {
	case days > 0:
		settings.ProjectionDays = days
	case s.cfg.DaysOverride > 0:
		settings.ProjectionDays = s.cfg.DaysOverride
	}
	in.Settings = settings

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		accounts, err := s.accounts.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("%w: list accounts: %w", ErrPersistence, err)
		}
		in.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		bills, err := s.bills.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("%w: list bills: %w", ErrPersistence, err)
		}
		in.Bills = bills
		return nil
	})
	g.Go(func() error {
		set, err := s.fetchHolidays(gctx, today, settings.ProjectionDays)
		if err != nil {
			return err
		}
		in.Holidays = set
		return nil
	})
	if err := g.Wait(); err != nil {
		return in, err
	}
	return in, nil
}

func (s *ProjectionService) fetchHolidays(ctx context.Context, today time.Time, days int) (calendar.HolidaySet, error) {
	if s.holidays == nil {
		return calendar.HolidaySet{}, nil
	}
	start := today.AddDate(0, 0, -holidayPadDays)
	end := today.AddDate(0, 0, days+holidayPadDays)
	set, err := s.holidays.Holidays(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch holidays: %w", err)
	}
	return set, nil
}

// persist replaces stored rows from today on. Rows are inserted in chunks of
// BatchSize, one transaction per chunk, in order.
func (s *ProjectionService) persist(ctx context.Context, res *forecast.Result) (int, error) {
	if err := s.store.DeleteFrom(ctx, res.Today); err != nil {
		return 0, fmt.Errorf("%w: delete from %s: %w", ErrPersistence, res.Today, err)
	}
	if err := s.store.ClearStaleFlags(ctx); err != nil {
		return 0, fmt.Errorf("%w: clear stale flags: %w", ErrPersistence, err)
	}

	batches := 0
	rows := res.Projections
	for start := 0; start < len(rows); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(rows))
		if err := s.store.InsertBatch(ctx, rows[start:end]); err != nil {
			return batches, fmt.Errorf("%w: insert %s..%s: %w", ErrPersistence, rows[start].ProjDate, rows[end-1].ProjDate, err)
		}
		batches++
	}
	return batches, nil
}
