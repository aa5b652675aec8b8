package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a linked bank account snapshot.
// Corresponds to the 'accounts' table.
type Account struct {
	ID          string
	DisplayName string
	LastBalance decimal.Decimal
	LastSynced  time.Time
}

// TotalBalance sums LastBalance over all accounts.
func TotalBalance(accounts []Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.LastBalance)
	}
	return total
}
