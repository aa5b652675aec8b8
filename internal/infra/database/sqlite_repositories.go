package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"budget_calendar/internal/domain/account"
	"budget_calendar/internal/domain/bill"
	"budget_calendar/internal/domain/projection"
)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms sql.NullInt64) time.Time {
	if !ms.Valid {
		return time.Time{}
	}
	return time.UnixMilli(ms.Int64).UTC()
}

type SQLiteAccountRepository struct {
	db *sql.DB
}

func NewSQLiteAccountRepository(db *sql.DB) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{db: db}
}

func (r *SQLiteAccountRepository) ListAll(ctx context.Context) ([]account.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, display_name, last_balance, last_synced FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []account.Account
	for rows.Next() {
		var a account.Account
		var synced sql.NullInt64
		if err := rows.Scan(&a.ID, &a.DisplayName, &a.LastBalance, &synced); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.LastSynced = fromMillis(synced)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

type SQLiteBillRepository struct {
	db *sql.DB
}

func NewSQLiteBillRepository(db *sql.DB) *SQLiteBillRepository {
	return &SQLiteBillRepository{db: db}
}

func (r *SQLiteBillRepository) ListAll(ctx context.Context) ([]bill.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, category, amount, frequency, repeats_every, start_date, end_date, owner, note
		FROM bills ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []bill.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

type SQLiteSettingsRepository struct {
	db *sql.DB
}

func NewSQLiteSettingsRepository(db *sql.DB) *SQLiteSettingsRepository {
	return &SQLiteSettingsRepository{db: db}
}

// Get returns the settings row, creating it with defaults on first use.
func (r *SQLiteSettingsRepository) Get(ctx context.Context) (projection.Settings, error) {
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO settings (id) VALUES (1)`); err != nil {
		return projection.Settings{}, fmt.Errorf("create default settings: %w", err)
	}

	var s projection.Settings
	var projectedAt sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT projection_days, balance_threshold, manual_balance_override, last_projected_at
		FROM settings WHERE id = 1`).Scan(&s.ProjectionDays, &s.BalanceThreshold, &s.ManualBalanceOverride, &projectedAt)
	if err != nil {
		return projection.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	if projectedAt.Valid {
		at := fromMillis(projectedAt)
		s.LastProjectedAt = &at
	}
	return s, nil
}

func (r *SQLiteSettingsRepository) MarkProjected(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO settings (id, last_projected_at) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET last_projected_at = excluded.last_projected_at`, toMillis(at))
	if err != nil {
		return fmt.Errorf("mark projected: %w", err)
	}
	return nil
}

// SQLiteProjectionRepository serialises runs with an in-process lock; a
// SQLite file is not shared between running services.
type SQLiteProjectionRepository struct {
	db    *sql.DB
	runMu sync.Mutex
}

func NewSQLiteProjectionRepository(db *sql.DB) *SQLiteProjectionRepository {
	return &SQLiteProjectionRepository{db: db}
}

func (r *SQLiteProjectionRepository) DeleteFrom(ctx context.Context, date string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projections WHERE proj_date >= ?`, date); err != nil {
		return fmt.Errorf("delete projections from %s: %w", date, err)
	}
	return nil
}

func (r *SQLiteProjectionRepository) ClearStaleFlags(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE projections SET highest = 0, lowest = 0 WHERE highest = 1 OR lowest = 1`); err != nil {
		return fmt.Errorf("clear projection flags: %w", err)
	}
	return nil
}

func (r *SQLiteProjectionRepository) InsertBatch(ctx context.Context, rows []projection.Projection) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin projection batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO projections (proj_date, projected_balance, highest, lowest, bills)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare projection insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range rows {
		bills, err := marshalBills(p.Bills)
		if err != nil {
			return fmt.Errorf("projection %s: %w", p.ProjDate, err)
		}
		if _, err := stmt.ExecContext(ctx, p.ProjDate, p.ProjectedBalance.String(), p.Highest, p.Lowest, string(bills)); err != nil {
			return fmt.Errorf("insert projection %s: %w", p.ProjDate, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteProjectionRepository) ListFrom(ctx context.Context, date string) ([]projection.Projection, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT proj_date, projected_balance, highest, lowest, bills
		FROM projections WHERE proj_date >= ? ORDER BY proj_date`, date)
	if err != nil {
		return nil, fmt.Errorf("list projections from %s: %w", date, err)
	}
	defer func() { _ = rows.Close() }()

	var out []projection.Projection
	for rows.Next() {
		var p projection.Projection
		var bills string
		if err := rows.Scan(&p.ProjDate, &p.ProjectedBalance, &p.Highest, &p.Lowest, &bills); err != nil {
			return nil, fmt.Errorf("scan projection: %w", err)
		}
		if p.Bills, err = unmarshalBills([]byte(bills)); err != nil {
			return nil, fmt.Errorf("projection %s: %w", p.ProjDate, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteProjectionRepository) WithRunLock(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.runMu.TryLock() {
		return projection.ErrRunLocked
	}
	defer r.runMu.Unlock()
	return fn(ctx)
}
