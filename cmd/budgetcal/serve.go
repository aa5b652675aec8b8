package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"budget_calendar/internal/infra/scheduler"
	"budget_calendar/internal/infra/telegram"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the Telegram bot until interrupted",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	projScheduler := scheduler.NewProjectionScheduler(
		a.service,
		a.base,
		a.cfg.CronSpecProjection,
		a.cfg.Location,
		a.cfg.RunTimeout,
	)
	if err := projScheduler.Start(); err != nil {
		return fmt.Errorf("could not start scheduler: %w", err)
	}

	if a.bot != nil {
		handlers := telegram.NewBotHandlers(ctx, a.service, a.cfg.OwnerTelegramID, a.cfg.RunTimeout, a.base)
		handlers.Register(a.bot)
		a.log.Info("Bot command handlers registered")
		// Start blocks until Stop is called.
		go a.bot.Start()
	}

	a.log.Info("Application setup complete. Scheduler is running")
	<-ctx.Done()

	a.log.Info("Shutting down application...")
	if a.bot != nil {
		a.bot.Stop()
	}
	projScheduler.Stop()
	a.log.Info("Application shut down gracefully")
	return nil
}

// runCmd performs one projection run and exits.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recompute and store the projection once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.commandContext(cmd.Context())
		defer cancel()
		report, err := a.service.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), telegram.FormatRunReport(report))
		return nil
	},
}
