package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budget_calendar/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ProjectionRunner is the part of the projection service the scheduler drives.
type ProjectionRunner interface {
	Run(ctx context.Context) (*app.RunReport, error)
}

// ProjectionScheduler triggers a projection run on a cron schedule.
type ProjectionScheduler struct {
	cronEngine *cron.Cron
	runner     ProjectionRunner
	logger     *logrus.Entry
	cronSpec   string
	runTimeout time.Duration
}

func NewProjectionScheduler(
	runner ProjectionRunner,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 3 * * *" (3:00 AM daily)
	loc *time.Location,
	runTimeout time.Duration,
) *ProjectionScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &ProjectionScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)),
		runner:     runner,
		logger:     logger.WithField("component", "scheduler"),
		cronSpec:   cronSpec,
		runTimeout: runTimeout,
	}
}

// Start registers the projection job and starts the cron engine.
func (s *ProjectionScheduler) Start() error {
	s.logger.WithField("cron_spec", s.cronSpec).Info("Starting projection scheduler")

	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.runOnce); err != nil {
		return fmt.Errorf("could not add projection cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	for _, entry := range s.cronEngine.Entries() {
		s.logger.WithField("next_run", entry.Next.Format(time.RFC3339)).Info("Projection scheduler started")
	}
	return nil
}

func (s *ProjectionScheduler) runOnce() {
	s.logger.Info("Cron job triggered for projection run")
	ctx := context.Background()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	report, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, app.ErrRunInProgress):
		s.logger.Warn("Projection run skipped, another run is in progress")
	case err != nil:
		s.logger.WithError(err).Error("Scheduled projection run failed")
	default:
		s.logger.WithField("run_id", report.RunID).Info("Scheduled projection run finished")
	}
}

// Stop stops the cron engine and waits for a running job to finish.
func (s *ProjectionScheduler) Stop() {
	s.logger.Info("Stopping projection scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Projection scheduler gracefully stopped.")
}
