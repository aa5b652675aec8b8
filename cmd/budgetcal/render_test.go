package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"budget_calendar/internal/domain/bill"
	"budget_calendar/internal/domain/projection"
	"budget_calendar/internal/forecast"

	"github.com/shopspring/decimal"
)

func TestRenderProjection(t *testing.T) {
	rows := []projection.Projection{
		{ProjDate: "2024-01-01", ProjectedBalance: decimal.NewFromInt(1000), Highest: true},
		{ProjDate: "2024-01-02", ProjectedBalance: decimal.NewFromInt(400), Lowest: true, Bills: []bill.Bill{
			{Name: "Rent", Amount: decimal.NewFromInt(-600)},
		}},
	}
	res := &forecast.Result{
		Today:           "2024-01-01",
		StartingBalance: decimal.NewFromInt(1000),
		Projections:     rows,
		FirstBreach:     &rows[1],
		Skipped:         []forecast.BillError{{Bill: bill.Bill{Name: "Broken"}, Err: errors.New("invalid date")}},
	}

	var buf bytes.Buffer
	renderProjection(&buf, res)
	out := buf.String()

	for _, want := range []string{"2024-01-02", "-$600.00", "$400.00", "low, below threshold", "skipped Broken: invalid date"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderValidation(t *testing.T) {
	var buf bytes.Buffer
	renderValidation(&buf, forecast.ValidationReport{
		DaysChecked: 3,
		MissingDays: []string{"2024-01-03"},
		Missing:     []forecast.Discrepancy{{Date: "2024-01-02", BillID: "gym", BillName: "Gym"}},
	})
	out := buf.String()

	for _, want := range []string{"day not stored", "Gym", "missing", "out of date"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
