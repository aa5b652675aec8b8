package database

import (
	"context"
	"database/sql"
	"fmt"

	"budget_calendar/internal/domain/projection"

	"github.com/lib/pq" // For pq.Array
)

// projectionRunLockKey identifies the projection run in pg_try_advisory_lock.
const projectionRunLockKey int64 = 0x62756467_65746361 // "budgetca"

type PostgresProjectionRepository struct {
	db *sql.DB
}

func NewPostgresProjectionRepository(db *sql.DB) *PostgresProjectionRepository {
	return &PostgresProjectionRepository{db: db}
}

func (r *PostgresProjectionRepository) DeleteFrom(ctx context.Context, date string) error {
	query := `DELETE FROM projections WHERE proj_date >= $1::date`
	if _, err := r.db.ExecContext(ctx, query, date); err != nil {
		return fmt.Errorf("error deleting projections from %s: %w", date, err)
	}
	return nil
}

func (r *PostgresProjectionRepository) ClearStaleFlags(ctx context.Context) error {
	query := `UPDATE projections SET highest = FALSE, lowest = FALSE WHERE highest OR lowest`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error clearing projection flags: %w", err)
	}
	return nil
}

// InsertBatch replaces the rows for the batch's dates in one transaction, so
// a retried batch does not conflict with its own earlier attempt.
func (r *PostgresProjectionRepository) InsertBatch(ctx context.Context, rows []projection.Projection) error {
	if len(rows) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for projection batch: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	dates := make([]string, len(rows))
	for i, p := range rows {
		dates[i] = p.ProjDate
	}
	if _, err := txn.ExecContext(ctx, `DELETE FROM projections WHERE proj_date = ANY($1::date[])`, pq.Array(dates)); err != nil {
		return fmt.Errorf("error clearing projection batch dates: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO projections (proj_date, projected_balance, highest, lowest, bills)
                                         VALUES ($1::date, $2, $3, $4, $5::jsonb)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for projection batch: %w", err)
	}
	defer stmt.Close()

	for _, p := range rows {
		bills, err := marshalBills(p.Bills)
		if err != nil {
			return fmt.Errorf("projection %s: %w", p.ProjDate, err)
		}
		if _, err := stmt.ExecContext(ctx, p.ProjDate, p.ProjectedBalance, p.Highest, p.Lowest, string(bills)); err != nil {
			return fmt.Errorf("error inserting projection %s: %w", p.ProjDate, err)
		}
	}

	return txn.Commit()
}

func (r *PostgresProjectionRepository) ListFrom(ctx context.Context, date string) ([]projection.Projection, error) {
	query := `SELECT to_char(proj_date, 'YYYY-MM-DD'), projected_balance, highest, lowest, bills
               FROM projections WHERE proj_date >= $1::date ORDER BY proj_date`
	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("error listing projections from %s: %w", date, err)
	}
	defer rows.Close()

	var out []projection.Projection
	for rows.Next() {
		var p projection.Projection
		var bills []byte
		if err := rows.Scan(&p.ProjDate, &p.ProjectedBalance, &p.Highest, &p.Lowest, &bills); err != nil {
			return nil, fmt.Errorf("error scanning projection row: %w", err)
		}
		if p.Bills, err = unmarshalBills(bills); err != nil {
			return nil, fmt.Errorf("projection %s: %w", p.ProjDate, err)
		}
		out = append(out, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projection rows: %w", err)
	}
	return out, nil
}

// WithRunLock holds a session-level advisory lock on a dedicated connection
// for the duration of fn. Other processes pointed at the same database get
// projection.ErrRunLocked.
func (r *PostgresProjectionRepository) WithRunLock(ctx context.Context, fn func(ctx context.Context) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to reserve connection for run lock: %w", err)
	}
	defer conn.Close()

	var acquired bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, projectionRunLockKey).Scan(&acquired); err != nil {
		return fmt.Errorf("error acquiring run lock: %w", err)
	}
	if !acquired {
		return projection.ErrRunLocked
	}
	defer func() {
		// The run's ctx may already be cancelled; the lock must still be released.
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, projectionRunLockKey)
	}()

	return fn(ctx)
}
