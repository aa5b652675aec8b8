package projection

import (
	"time"

	"budget_calendar/internal/domain/bill"

	"github.com/shopspring/decimal"
)

// Projection is the forecast for a single calendar day.
// Corresponds to the 'projections' table, keyed by proj_date.
type Projection struct {
	ProjDate         string          `json:"proj_date"` // YYYY-MM-DD
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
	Highest          bool            `json:"highest"`
	Lowest           bool            `json:"lowest"`
	Bills            []bill.Bill     `json:"bills"`
}

// Settings drives a projection run.
// Corresponds to the single row of the 'settings' table.
type Settings struct {
	ProjectionDays        int
	BalanceThreshold      decimal.Decimal
	ManualBalanceOverride decimal.NullDecimal // when valid, replaces the account total
	LastProjectedAt       *time.Time
}

const (
	DefaultProjectionDays = 7
)

// DefaultBalanceThreshold is used when no settings row exists.
var DefaultBalanceThreshold = decimal.NewFromInt(1000)

// DefaultSettings mirrors the row created on first use.
func DefaultSettings() Settings {
	return Settings{
		ProjectionDays:   DefaultProjectionDays,
		BalanceThreshold: DefaultBalanceThreshold,
	}
}
