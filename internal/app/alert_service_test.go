package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"budget_calendar/internal/domain/bill"
	"budget_calendar/internal/domain/projection"
	domainTelegram "budget_calendar/internal/domain/telegram"
	"budget_calendar/internal/forecast"

	"github.com/shopspring/decimal"
	"gopkg.in/telebot.v3"
)

type sentMessage struct {
	chatID  int64
	text    string
	options *telebot.SendOptions
}

type fakeClient struct {
	sent []sentMessage
	err  error
}

func (f *fakeClient) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, options: options})
	return nil
}

func breachResult() *forecast.Result {
	rows := []projection.Projection{
		{ProjDate: "2024-01-01", ProjectedBalance: decimal.NewFromInt(1200), Highest: true},
		{ProjDate: "2024-01-02", ProjectedBalance: decimal.NewFromInt(900), Bills: []bill.Bill{{Name: "Rent"}, {Name: "Gym"}}},
		{ProjDate: "2024-01-03", ProjectedBalance: decimal.RequireFromString("850.5"), Lowest: true},
	}
	return &forecast.Result{Today: "2024-01-01", Projections: rows, FirstBreach: &rows[1]}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.Zero, "$0.00"},
		{decimal.RequireFromString("12.5"), "$12.50"},
		{decimal.RequireFromString("-0.333"), "-$0.33"},
		{decimal.NewFromInt(-1200), "-$1200.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLowBalanceMessage(t *testing.T) {
	got := LowBalanceMessage(breachResult(), decimal.NewFromInt(1000))
	want := "Heads up: balance drops below $1000.00 on 2024-01-02 ($900.00).\n" +
		"Lowest point: $850.50 on 2024-01-03.\n" +
		"Bills that day: Rent, Gym."
	if got != want {
		t.Errorf("LowBalanceMessage() =\n%s\nwant\n%s", got, want)
	}
}

func TestTelegramAlertServiceLowBalance(t *testing.T) {
	client := &fakeClient{}
	svc := NewTelegramAlertService(client, 42, testLogger())

	if err := svc.NotifyLowBalance(context.Background(), &forecast.Result{}, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("NotifyLowBalance without breach: %v", err)
	}
	if len(client.sent) != 0 {
		t.Fatalf("sent %d messages without a breach", len(client.sent))
	}

	if err := svc.NotifyLowBalance(context.Background(), breachResult(), decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("NotifyLowBalance: %v", err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(client.sent))
	}
	msg := client.sent[0]
	if msg.chatID != 42 || !strings.HasPrefix(msg.text, "Heads up") {
		t.Errorf("message = %+v", msg)
	}
	markup := msg.options.ReplyMarkup
	if markup == nil || len(markup.InlineKeyboard) != 1 || markup.InlineKeyboard[0][0].Unique != domainTelegram.CallbackRecompute {
		t.Errorf("missing recompute button: %+v", markup)
	}
}

func TestTelegramAlertServiceFailure(t *testing.T) {
	client := &fakeClient{}
	svc := NewTelegramAlertService(client, 42, testLogger())

	if err := svc.NotifyRunFailure(context.Background(), "0123456789abcdef", errBoom); err != nil {
		t.Fatalf("NotifyRunFailure: %v", err)
	}
	if len(client.sent) != 1 || client.sent[0].text != "Projection run 01234567 failed: boom" {
		t.Errorf("sent = %+v", client.sent)
	}

	client.err = errors.New("telegram down")
	if err := svc.NotifyRunFailure(context.Background(), "run", errBoom); err == nil {
		t.Error("expected send error to be returned")
	}
}

func TestTelegramAlertServiceWithoutOwner(t *testing.T) {
	client := &fakeClient{}
	svc := NewTelegramAlertService(client, 0, testLogger())

	if err := svc.NotifyLowBalance(context.Background(), breachResult(), decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("NotifyLowBalance: %v", err)
	}
	if err := svc.NotifyRunFailure(context.Background(), "run", errBoom); err != nil {
		t.Fatalf("NotifyRunFailure: %v", err)
	}
	if len(client.sent) != 0 {
		t.Errorf("sent %d messages with no owner configured", len(client.sent))
	}
}
