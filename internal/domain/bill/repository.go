package bill

import "context"

// Repository reads bill definitions. Bills are managed elsewhere and read-only here.
type Repository interface {
	ListAll(ctx context.Context) ([]Bill, error)
}
