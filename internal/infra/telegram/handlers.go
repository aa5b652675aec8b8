package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"budget_calendar/internal/app"
	"budget_calendar/internal/domain/projection"
	domainTelegram "budget_calendar/internal/domain/telegram"
	"budget_calendar/internal/forecast"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	defaultUpcomingDays = 5
	maxUpcomingDays     = 30
)

// ProjectionAPI is what the bot needs from the projection service.
type ProjectionAPI interface {
	Run(ctx context.Context) (*app.RunReport, error)
	Balance(ctx context.Context) (app.BalanceSummary, error)
	Upcoming(ctx context.Context, limit int) ([]projection.Projection, error)
	CashFlow(ctx context.Context) (forecast.CashFlow, error)
}

// BotHandlers answers the owner's commands.
type BotHandlers struct {
	ctx        context.Context
	svc        ProjectionAPI
	ownerID    int64
	runTimeout time.Duration
	logger     *logrus.Entry
}

func NewBotHandlers(ctx context.Context, svc ProjectionAPI, ownerID int64, runTimeout time.Duration, baseLogger *logrus.Entry) *BotHandlers {
	return &BotHandlers{
		ctx:        ctx,
		svc:        svc,
		ownerID:    ownerID,
		runTimeout: runTimeout,
		logger:     baseLogger.WithField("component", "telegram"),
	}
}

// Register attaches every command and the recompute callback to b.
func (h *BotHandlers) Register(b *telebot.Bot) {
	b.Handle("/start", h.handleStart)
	b.Handle("/help", h.handleStart)
	b.Handle("/balance", h.ownerOnly("/balance", h.handleBalance))
	b.Handle("/upcoming", h.ownerOnly("/upcoming", h.handleUpcoming))
	b.Handle("/cashflow", h.ownerOnly("/cashflow", h.handleCashFlow))
	b.Handle("/recompute", h.ownerOnly("/recompute", h.handleRecompute))
	b.Handle(&telebot.Btn{Unique: domainTelegram.CallbackRecompute}, h.handleRecomputeCallback)
	b.Handle(telebot.OnCallback, h.handleUnknownCallback)
}

func (h *BotHandlers) handlerLogger(handler string, c telebot.Context) *logrus.Entry {
	fields := logrus.Fields{"handler": handler}
	if c.Sender() != nil {
		fields["sender_id"] = c.Sender().ID
	}
	return h.logger.WithFields(fields)
}

func (h *BotHandlers) isOwner(c telebot.Context) bool {
	return c.Sender() != nil && c.Sender().ID == h.ownerID
}

func (h *BotHandlers) ownerOnly(name string, next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if !h.isOwner(c) {
			h.handlerLogger(name, c).Warn("Unauthorized access attempt")
			return c.Send("Sorry, this bot only answers its owner.")
		}
		return next(c)
	}
}

func (h *BotHandlers) handleStart(c telebot.Context) error {
	h.handlerLogger("/start", c).Info("Command received")
	if !h.isOwner(c) {
		return c.Send("Hi! This is a private budget bot.")
	}
	var help strings.Builder
	help.WriteString("Available commands:\n\n")
	help.WriteString("/balance - starting balance for the next projection\n")
	help.WriteString("/upcoming [days] - next days with bills (default 5)\n")
	help.WriteString("/cashflow - monthly income, bills and leftover\n")
	help.WriteString("/recompute - rebuild the projection now\n")
	return c.Send(help.String())
}

func (h *BotHandlers) handleBalance(c telebot.Context) error {
	log := h.handlerLogger("/balance", c)
	sum, err := h.svc.Balance(h.ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load balance")
		return c.Send("Could not load balances, please try again later.")
	}
	return c.Send(FormatBalance(sum))
}

func (h *BotHandlers) handleUpcoming(c telebot.Context) error {
	log := h.handlerLogger("/upcoming", c)
	limit := defaultUpcomingDays
	if args := c.Args(); len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > maxUpcomingDays {
			return c.Send(fmt.Sprintf("Usage: /upcoming [1-%d]", maxUpcomingDays))
		}
		limit = n
	}

	rows, err := h.svc.Upcoming(h.ctx, limit)
	if err != nil {
		log.WithError(err).Error("Failed to load upcoming bills")
		return c.Send("Could not load upcoming bills, please try again later.")
	}
	return c.Send(FormatUpcoming(rows))
}

func (h *BotHandlers) handleCashFlow(c telebot.Context) error {
	log := h.handlerLogger("/cashflow", c)
	cf, err := h.svc.CashFlow(h.ctx)
	if err != nil {
		log.WithError(err).Error("Failed to compute cash flow")
		return c.Send("Could not compute cash flow, please try again later.")
	}
	return c.Send(FormatCashFlow(cf))
}

func (h *BotHandlers) handleRecompute(c telebot.Context) error {
	return c.Send(h.recompute(h.handlerLogger("/recompute", c)))
}

func (h *BotHandlers) handleRecomputeCallback(c telebot.Context) error {
	log := h.handlerLogger("callback_recompute", c)
	if !h.isOwner(c) {
		log.Warn("Unauthorized access attempt")
		return c.Respond(&telebot.CallbackResponse{Text: "Not allowed."})
	}
	msg := h.recompute(log)
	if err := c.Respond(&telebot.CallbackResponse{Text: "Recompute finished."}); err != nil {
		return err
	}
	return c.Send(msg)
}

func (h *BotHandlers) handleUnknownCallback(c telebot.Context) error {
	var data string
	if cb := c.Callback(); cb != nil {
		data = cb.Data
	}
	h.handlerLogger("callback", c).WithField("data", data).Warn("Unhandled callback")
	return c.Respond()
}

func (h *BotHandlers) recompute(log *logrus.Entry) string {
	log.Info("Manual projection run requested")
	ctx := h.ctx
	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	report, err := h.svc.Run(ctx)
	switch {
	case errors.Is(err, app.ErrRunInProgress):
		log.Warn("Run already in progress")
		return "A projection run is already in progress."
	case errors.Is(err, forecast.ErrNoAccounts):
		log.WithError(err).Warn("No accounts to project from")
		return "No accounts found, nothing to project."
	case err != nil:
		log.WithError(err).Error("Manual projection run failed")
		return fmt.Sprintf("Projection run failed: %v", err)
	}
	log.WithField("run_id", report.RunID).Info("Manual projection run finished")
	return FormatRunReport(report)
}

// FormatBalance renders the /balance reply.
func FormatBalance(sum app.BalanceSummary) string {
	var b strings.Builder
	for _, a := range sum.Accounts {
		name := a.DisplayName
		if name == "" {
			name = a.ID
		}
		fmt.Fprintf(&b, "%s: %s\n", name, app.FormatMoney(a.LastBalance))
	}
	fmt.Fprintf(&b, "Total: %s\n", app.FormatMoney(sum.Total))
	if sum.Override.Valid {
		fmt.Fprintf(&b, "Manual override in use: %s\n", app.FormatMoney(sum.Override.Decimal))
	}
	fmt.Fprintf(&b, "Alert threshold: %s", app.FormatMoney(sum.Threshold))
	if sum.ProjectedAt != nil {
		fmt.Fprintf(&b, "\nLast projection: %s", sum.ProjectedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

// FormatUpcoming renders the /upcoming reply.
func FormatUpcoming(rows []projection.Projection) string {
	if len(rows) == 0 {
		return "No upcoming bills in the stored projection."
	}
	var b strings.Builder
	for i, p := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (balance %s)\n", p.ProjDate, app.FormatMoney(p.ProjectedBalance))
		for _, bl := range p.Bills {
			fmt.Fprintf(&b, "  %s %s\n", bl.Name, app.FormatMoney(bl.Amount))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCashFlow renders the /cashflow reply.
func FormatCashFlow(cf forecast.CashFlow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Monthly income: %s\n", app.FormatMoney(cf.Income))
	fmt.Fprintf(&b, "Monthly bills: %s\n", app.FormatMoney(cf.Bills))
	fmt.Fprintf(&b, "Leftover: %s", app.FormatMoney(cf.Leftover))
	if len(cf.Categories) > 0 {
		b.WriteString("\n\nBy category:")
		for _, cat := range cf.Categories {
			fmt.Fprintf(&b, "\n  %s: %s", cat.Category, app.FormatMoney(cat.Monthly))
		}
	}
	return b.String()
}

// FormatRunReport renders the outcome of a manual run.
func FormatRunReport(report *app.RunReport) string {
	res := report.Result
	var b strings.Builder
	fmt.Fprintf(&b, "Projected %d days from %s, starting at %s.", len(res.Projections), res.Today, app.FormatMoney(res.StartingBalance))
	for _, p := range res.Projections {
		if p.Lowest {
			fmt.Fprintf(&b, "\nLowest: %s on %s.", app.FormatMoney(p.ProjectedBalance), p.ProjDate)
		}
	}
	if res.FirstBreach != nil {
		fmt.Fprintf(&b, "\nBelow threshold from %s.", res.FirstBreach.ProjDate)
	}
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(&b, "\n%d bill(s) could not be scheduled and were skipped.", n)
	}
	return b.String()
}
