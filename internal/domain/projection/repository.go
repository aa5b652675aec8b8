package projection

import (
	"context"
	"time"
)

// Repository persists projection rows.
type Repository interface {
	// DeleteFrom removes every row dated on or after date (YYYY-MM-DD).
	DeleteFrom(ctx context.Context, date string) error
	// ClearStaleFlags resets highest/lowest on every row, historical ones included.
	ClearStaleFlags(ctx context.Context) error
	// InsertBatch writes rows in a single transaction.
	InsertBatch(ctx context.Context, rows []Projection) error
	// ListFrom returns rows dated on or after date, ordered by date.
	ListFrom(ctx context.Context, date string) ([]Projection, error)
	// WithRunLock runs fn while holding the store-wide projection run lock.
	// It returns ErrRunLocked without calling fn if another run holds it.
	WithRunLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// SettingsRepository reads the run settings and records run bookkeeping.
type SettingsRepository interface {
	Get(ctx context.Context) (Settings, error)
	MarkProjected(ctx context.Context, at time.Time) error
}
