package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budget_calendar/internal/domain/account"
	"budget_calendar/internal/domain/bill"
	"budget_calendar/internal/domain/projection"
)

type PostgresAccountRepository struct {
	db *sql.DB
}

func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) ListAll(ctx context.Context) ([]account.Account, error) {
	query := `SELECT id, display_name, last_balance, last_synced FROM accounts ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []account.Account
	for rows.Next() {
		var a account.Account
		var synced sql.NullTime
		if err := rows.Scan(&a.ID, &a.DisplayName, &a.LastBalance, &synced); err != nil {
			return nil, fmt.Errorf("error scanning account row: %w", err)
		}
		a.LastSynced = synced.Time
		accounts = append(accounts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

type PostgresBillRepository struct {
	db *sql.DB
}

func NewPostgresBillRepository(db *sql.DB) *PostgresBillRepository {
	return &PostgresBillRepository{db: db}
}

func (r *PostgresBillRepository) ListAll(ctx context.Context) ([]bill.Bill, error) {
	query := `SELECT id, name, category, amount, frequency, repeats_every, start_date, end_date, owner, note
               FROM bills ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing bills: %w", err)
	}
	defer rows.Close()

	var bills []bill.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bill rows: %w", err)
	}
	return bills, nil
}

// scanBill reads the bill columns in the order both stores select them.
func scanBill(rows *sql.Rows) (bill.Bill, error) {
	var b bill.Bill
	var endDate sql.NullString
	if err := rows.Scan(&b.ID, &b.Name, &b.Category, &b.Amount, &b.Frequency, &b.RepeatsEvery,
		&b.StartDate, &endDate, &b.Owner, &b.Note); err != nil {
		return bill.Bill{}, fmt.Errorf("error scanning bill row: %w", err)
	}
	b.EndDate = endDate.String
	return b, nil
}

type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

// Get returns the settings row, creating it with defaults on first use.
func (r *PostgresSettingsRepository) Get(ctx context.Context) (projection.Settings, error) {
	query := `INSERT INTO settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return projection.Settings{}, fmt.Errorf("error creating default settings: %w", err)
	}

	query = `SELECT projection_days, balance_threshold, manual_balance_override, last_projected_at
               FROM settings WHERE id = 1`
	var s projection.Settings
	var projectedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query).Scan(&s.ProjectionDays, &s.BalanceThreshold, &s.ManualBalanceOverride, &projectedAt)
	if err != nil {
		return projection.Settings{}, fmt.Errorf("error getting settings: %w", err)
	}
	if projectedAt.Valid {
		s.LastProjectedAt = &projectedAt.Time
	}
	return s, nil
}

func (r *PostgresSettingsRepository) MarkProjected(ctx context.Context, at time.Time) error {
	query := `INSERT INTO settings (id, last_projected_at) VALUES (1, $1)
               ON CONFLICT (id) DO UPDATE SET last_projected_at = EXCLUDED.last_projected_at`
	if _, err := r.db.ExecContext(ctx, query, at); err != nil {
		return fmt.Errorf("error marking settings projected: %w", err)
	}
	return nil
}
