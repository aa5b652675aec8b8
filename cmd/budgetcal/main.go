package main

import (
	"context"
	"fmt"
	"os"

	"budget_calendar/internal/app"
	"budget_calendar/internal/infra/config"
	idb "budget_calendar/internal/infra/database"
	"budget_calendar/internal/infra/holidays"
	"budget_calendar/internal/infra/logger"
	"budget_calendar/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

var rootCmd = &cobra.Command{
	Use:           "budgetcal",
	Short:         "Day-by-day balance projection for recurring bills",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, runCmd, previewCmd, validateCmd, cashflowCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

// application is everything a command needs, wired from the environment.
type application struct {
	cfg     *config.AppConfig
	store   *idb.Store
	bot     *telebot.Bot // nil when TELEGRAM_TOKEN is empty
	service *app.ProjectionService
	base    *logrus.Entry
	log     *logrus.Entry
}

func bootstrap(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	base := logrus.NewEntry(logger.Log)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"timezone":    cfg.Timezone,
		"owner_id":    cfg.OwnerTelegramID,
	}).Info("Configuration loaded")

	store, err := idb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	mainLogger.WithField("driver", store.Driver).Info("Database connection established")

	a := &application{cfg: cfg, store: store, base: base, log: mainLogger}

	var alerts app.AlertService = app.NewLogAlertService(logger.Component("alerts"))
	if cfg.TelegramEnabled() {
		a.bot, err = telegram.NewBot(cfg.TelegramToken, logger.Component("telebot"))
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("could not create Telegram bot: %w", err)
		}
		alerts = app.NewTelegramAlertService(telegram.NewTelebotAdapter(a.bot), cfg.OwnerTelegramID, base)
	} else {
		mainLogger.Warn("TELEGRAM_TOKEN not set, alerts go to the log only")
	}

	holidayClient := holidays.NewNagerClient(cfg.HolidayAPIURL, cfg.HolidayCountry, nil, base)
	a.service = app.NewProjectionService(
		store.Accounts,
		store.Bills,
		store.Settings,
		store.Projections,
		holidayClient,
		alerts,
		app.ProjectionServiceConfig{
			Location:     cfg.Location,
			BatchSize:    cfg.InsertBatchSize,
			DaysOverride: cfg.ProjectionDaysOverride,
		},
		base,
	)
	return a, nil
}

func (a *application) Close() {
	if err := a.store.Close(); err != nil {
		a.log.WithError(err).Warn("Error closing database")
	}
}

// commandContext bounds one-shot commands by RUN_TIMEOUT.
func (a *application) commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.RunTimeout > 0 {
		return context.WithTimeout(parent, a.cfg.RunTimeout)
	}
	return context.WithCancel(parent)
}
