package app

import (
	"context"
	"fmt"
	"strings"

	"budget_calendar/internal/domain/projection"
	domainTelegram "budget_calendar/internal/domain/telegram"
	"budget_calendar/internal/forecast"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// AlertService tells the owner about the outcome of projection runs.
type AlertService interface {
	// NotifyLowBalance is called after a successful run whose projection dips
	// below the balance threshold.
	NotifyLowBalance(ctx context.Context, res *forecast.Result, threshold decimal.Decimal) error
	// NotifyRunFailure is called when a scheduled or manual run fails.
	NotifyRunFailure(ctx context.Context, runID string, runErr error) error
}

// TelegramAlertService sends alerts to the owner's chat with an inline
// "Recompute" button.
type TelegramAlertService struct {
	client  domainTelegram.Client
	ownerID int64
	logger  *logrus.Entry
}

func NewTelegramAlertService(client domainTelegram.Client, ownerID int64, logger *logrus.Entry) *TelegramAlertService {
	return &TelegramAlertService{
		client:  client,
		ownerID: ownerID,
		logger:  logger.WithField("component", "telegram_alerts"),
	}
}

func (s *TelegramAlertService) NotifyLowBalance(_ context.Context, res *forecast.Result, threshold decimal.Decimal) error {
	if res == nil || res.FirstBreach == nil {
		return nil
	}
	if s.ownerID == 0 {
		s.logger.Warn("Owner Telegram ID not configured. Cannot send low balance alert.")
		return nil
	}

	text := LowBalanceMessage(res, threshold)
	if err := s.client.SendMessage(s.ownerID, text, &telebot.SendOptions{ReplyMarkup: recomputeMarkup()}); err != nil {
		s.logger.WithError(err).WithField("owner_id", s.ownerID).Error("Failed to send low balance alert")
		return fmt.Errorf("failed to send low balance alert: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"owner_id":  s.ownerID,
		"breach_on": res.FirstBreach.ProjDate,
	}).Info("Low balance alert sent")
	return nil
}

func (s *TelegramAlertService) NotifyRunFailure(_ context.Context, runID string, runErr error) error {
	if s.ownerID == 0 {
		s.logger.Warn("Owner Telegram ID not configured. Cannot send failure alert.")
		return nil
	}
	text := fmt.Sprintf("Projection run %s failed: %v", shortRunID(runID), runErr)
	if err := s.client.SendMessage(s.ownerID, text, &telebot.SendOptions{ReplyMarkup: recomputeMarkup()}); err != nil {
		s.logger.WithError(err).WithField("run_id", runID).Error("Failed to send run failure alert")
		return fmt.Errorf("failed to send run failure alert: %w", err)
	}
	return nil
}

func recomputeMarkup() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	btn := markup.Data("Recompute", domainTelegram.CallbackRecompute)
	markup.Inline(markup.Row(btn))
	return markup
}

// LogAlertService only logs. It is used when no bot token is configured.
type LogAlertService struct {
	logger *logrus.Entry
}

func NewLogAlertService(logger *logrus.Entry) *LogAlertService {
	return &LogAlertService{logger: logger.WithField("component", "log_alerts")}
}

func (s *LogAlertService) NotifyLowBalance(_ context.Context, res *forecast.Result, threshold decimal.Decimal) error {
	if res == nil || res.FirstBreach == nil {
		return nil
	}
	s.logger.WithFields(logrus.Fields{
		"breach_on": res.FirstBreach.ProjDate,
		"balance":   res.FirstBreach.ProjectedBalance.StringFixed(2),
		"threshold": threshold.StringFixed(2),
	}).Warn("Projected balance drops below threshold")
	return nil
}

func (s *LogAlertService) NotifyRunFailure(_ context.Context, runID string, runErr error) error {
	s.logger.WithError(runErr).WithField("run_id", runID).Error("Projection run failed")
	return nil
}

// LowBalanceMessage describes the first day below threshold and the lowest day.
func LowBalanceMessage(res *forecast.Result, threshold decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Heads up: balance drops below %s on %s (%s).",
		FormatMoney(threshold), res.FirstBreach.ProjDate, FormatMoney(res.FirstBreach.ProjectedBalance))
	if low := lowestDay(res.Projections); low != nil && low.ProjDate != res.FirstBreach.ProjDate {
		fmt.Fprintf(&b, "\nLowest point: %s on %s.", FormatMoney(low.ProjectedBalance), low.ProjDate)
	}
	if len(res.FirstBreach.Bills) > 0 {
		names := make([]string, 0, len(res.FirstBreach.Bills))
		for _, bl := range res.FirstBreach.Bills {
			names = append(names, bl.Name)
		}
		fmt.Fprintf(&b, "\nBills that day: %s.", strings.Join(names, ", "))
	}
	return b.String()
}

func lowestDay(rows []projection.Projection) *projection.Projection {
	for i := range rows {
		if rows[i].Lowest {
			return &rows[i]
		}
	}
	return nil
}

// FormatMoney renders an amount as dollars with two decimals, e.g. -$12.50.
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
