package main

import (
	"fmt"
	"io"
	"strings"

	"budget_calendar/internal/app"
	"budget_calendar/internal/forecast"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func renderProjection(w io.Writer, res *forecast.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "Balance", "Bills", "Flags"})

	for _, p := range res.Projections {
		names := make([]string, 0, len(p.Bills))
		for _, b := range p.Bills {
			names = append(names, b.Name+" "+app.FormatMoney(b.Amount))
		}
		var flags []string
		if p.Highest {
			flags = append(flags, "high")
		}
		if p.Lowest {
			flags = append(flags, "low")
		}
		if res.FirstBreach != nil && p.ProjDate == res.FirstBreach.ProjDate {
			flags = append(flags, "below threshold")
		}
		t.AppendRow(table.Row{p.ProjDate, app.FormatMoney(p.ProjectedBalance), strings.Join(names, ", "), strings.Join(flags, ", ")})
	}

	t.AppendSeparator()
	t.AppendFooter(table.Row{"Start", app.FormatMoney(res.StartingBalance), "", ""})
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()

	for _, s := range res.Skipped {
		fmt.Fprintf(w, "skipped %s: %v\n", s.Bill.Name, s.Err)
	}
}

func renderValidation(w io.Writer, report forecast.ValidationReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "Bill", "Problem"})
	for _, d := range report.MissingDays {
		t.AppendRow(table.Row{d, "", "day not stored"})
	}
	for _, d := range report.Missing {
		t.AppendRow(table.Row{d.Date, d.BillName, "missing"})
	}
	for _, d := range report.Unexpected {
		t.AppendRow(table.Row{d.Date, d.BillName, "unexpected"})
	}
	t.AppendFooter(table.Row{"Days checked", report.DaysChecked, statusText(report)})
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.Render()
}

func statusText(report forecast.ValidationReport) string {
	if report.Valid() {
		return "in sync"
	}
	return "out of date"
}
