package forecast

import (
	"sort"
	"strings"

	"budget_calendar/internal/domain/bill"

	"github.com/shopspring/decimal"
)

// Average period lengths used to normalise recurring amounts.
var (
	daysPerMonth  = decimal.RequireFromString("30.44")
	daysPerYear   = decimal.RequireFromString("365.25")
	weeksPerMonth = decimal.RequireFromString("4.35")
	weeksPerYear  = decimal.RequireFromString("52.18")
	twelve        = decimal.NewFromInt(12)
)

// FlowTotals splits absolute amounts into outgoing bills and incoming income.
type FlowTotals struct {
	Bills  decimal.Decimal `json:"bills"`
	Income decimal.Decimal `json:"income"`
}

func (f *FlowTotals) add(amount decimal.Decimal) {
	if amount.IsNegative() {
		f.Bills = f.Bills.Add(amount.Abs())
		return
	}
	f.Income = f.Income.Add(amount)
}

// CategoryFlow is the normalised monthly and yearly amount of one category.
type CategoryFlow struct {
	Category string          `json:"category"`
	Monthly  decimal.Decimal `json:"monthly"`
	Yearly   decimal.Decimal `json:"yearly"`
}

// CashFlow summarises what the recurring bills cost per month.
type CashFlow struct {
	Categories  []CategoryFlow               `json:"categories"`
	ByFrequency map[bill.Frequency]FlowTotals `json:"by_frequency"`
	// Monthly totals; Leftover is Income minus Bills.
	Income   decimal.Decimal `json:"income"`
	Bills    decimal.Decimal `json:"bills"`
	Leftover decimal.Decimal `json:"leftover"`
}

// MonthlyCashFlow normalises every bill to a monthly and yearly amount.
// One-time bills count toward their frequency bucket but not the monthly totals.
func MonthlyCashFlow(bills []bill.Bill) CashFlow {
	cf := CashFlow{
		ByFrequency: make(map[bill.Frequency]FlowTotals),
		Income:      decimal.Zero,
		Bills:       decimal.Zero,
	}
	categories := make(map[string]*CategoryFlow)

	for _, b := range bills {
		n := decimal.NewFromInt(int64(b.Interval()))
		var monthly, yearly decimal.Decimal
		switch b.Frequency {
		case bill.FrequencyDaily:
			monthly = b.Amount.Mul(daysPerMonth).Div(n)
			yearly = b.Amount.Mul(daysPerYear).Div(n)
		case bill.FrequencyWeekly:
			monthly = b.Amount.Mul(weeksPerMonth).Div(n)
			yearly = b.Amount.Mul(weeksPerYear).Div(n)
		case bill.FrequencyYearly:
			monthly = b.Amount.Div(twelve.Mul(n))
			yearly = b.Amount.Div(n)
		case bill.FrequencyOneTime:
		default: // monthly, and anything unrecognised
			monthly = b.Amount.Div(n)
			yearly = b.Amount.Mul(twelve).Div(n)
		}

		freq := b.Frequency
		if !freq.Valid() {
			freq = bill.FrequencyMonthly
		}
		totals := cf.ByFrequency[freq]
		totals.add(b.Amount)
		cf.ByFrequency[freq] = totals

		name := strings.ToLower(strings.TrimSpace(b.Category))
		if name == "" {
			name = "uncategorized"
		}
		cat, ok := categories[name]
		if !ok {
			cat = &CategoryFlow{Category: name}
			categories[name] = cat
		}
		cat.Monthly = cat.Monthly.Add(monthly)
		cat.Yearly = cat.Yearly.Add(yearly)

		if b.Amount.IsNegative() {
			cf.Bills = cf.Bills.Add(monthly.Abs())
		} else {
			cf.Income = cf.Income.Add(monthly)
		}
	}

	for _, cat := range categories {
		cf.Categories = append(cf.Categories, CategoryFlow{
			Category: cat.Category,
			Monthly:  cat.Monthly.Round(2),
			Yearly:   cat.Yearly.Round(2),
		})
	}
	sort.Slice(cf.Categories, func(i, j int) bool { return cf.Categories[i].Category < cf.Categories[j].Category })

	cf.Income = cf.Income.Round(2)
	cf.Bills = cf.Bills.Round(2)
	cf.Leftover = cf.Income.Sub(cf.Bills)
	return cf
}
