package bill

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Frequency is the recurrence unit of a bill.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
	FrequencyOneTime Frequency = "one-time"
)

// Valid reports whether f is a supported recurrence.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly, FrequencyOneTime:
		return true
	}
	return false
}

// CategoryPaycheck marks income that is moved to the previous business day.
const CategoryPaycheck = "paycheck"

// Bill is a recurring (or one-time) cash movement on the checking account.
// Corresponds to the 'bills' table. Dates are kept as entered and parsed per run.
type Bill struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"` // positive = inflow, negative = outflow
	Frequency    Frequency       `json:"frequency"`
	RepeatsEvery int             `json:"repeats_every"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date,omitempty"`
	Owner        string          `json:"owner,omitempty"`
	Note         string          `json:"note,omitempty"`
}

// IsPaycheck reports whether the bill's category is "paycheck", ignoring case.
func (b Bill) IsPaycheck() bool {
	return strings.EqualFold(strings.TrimSpace(b.Category), CategoryPaycheck)
}

// Interval returns RepeatsEvery, defaulting to 1.
func (b Bill) Interval() int {
	if b.RepeatsEvery < 1 {
		return 1
	}
	return b.RepeatsEvery
}
