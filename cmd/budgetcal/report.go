package main

import (
	"fmt"
	"strings"

	"budget_calendar/internal/infra/telegram"

	"github.com/spf13/cobra"
)

var flagPreviewDays int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the projection without storing it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flagPreviewDays < 0 {
			return fmt.Errorf("--days must not be negative, got %d", flagPreviewDays)
		}
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.commandContext(cmd.Context())
		defer cancel()
		res, err := a.service.Preview(ctx, flagPreviewDays)
		if err != nil {
			return err
		}
		renderProjection(cmd.OutOrStdout(), res)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check stored projections against the current bills",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.commandContext(cmd.Context())
		defer cancel()
		report, err := a.service.Validate(ctx)
		if err != nil {
			return err
		}
		renderValidation(cmd.OutOrStdout(), report)
		if !report.Valid() {
			return fmt.Errorf("stored projection is out of date, missing: %s", strings.Join(report.MissingBillNames(), ", "))
		}
		return nil
	},
}

var cashflowCmd = &cobra.Command{
	Use:   "cashflow",
	Short: "Print monthly income, bills and leftover",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cf, err := a.service.CashFlow(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), telegram.FormatCashFlow(cf))
		return nil
	},
}

func init() {
	previewCmd.Flags().IntVarP(&flagPreviewDays, "days", "n", 0, "Projection horizon in days (0 uses the stored setting)")
}
