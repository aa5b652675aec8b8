package account

import "context"

// Repository reads account snapshots.
type Repository interface {
	ListAll(ctx context.Context) ([]Account, error)
}
