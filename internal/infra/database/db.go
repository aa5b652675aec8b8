package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"budget_calendar/internal/domain/account"
	"budget_calendar/internal/domain/bill"
	"budget_calendar/internal/domain/projection"

	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// ErrUnsupportedDatabaseURL is returned for a DATABASE_URL with an unknown scheme.
var ErrUnsupportedDatabaseURL = errors.New("unsupported database url: expected postgres:// or sqlite:")

// Store bundles the repositories backed by one database handle.
type Store struct {
	Driver      string
	Accounts    account.Repository
	Bills       bill.Repository
	Settings    projection.SettingsRepository
	Projections projection.Repository

	db *sql.DB
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Open connects to the database named by url, creates missing tables and
// returns the matching repositories. postgres:// and postgresql:// use lib/pq;
// sqlite:<path> uses the embedded driver.
func Open(ctx context.Context, url string) (*Store, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		db, err := NewPostgresConnection(url)
		if err != nil {
			return nil, err
		}
		if err := EnsurePostgresSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &Store{
			Driver:      "postgres",
			Accounts:    NewPostgresAccountRepository(db),
			Bills:       NewPostgresBillRepository(db),
			Settings:    NewPostgresSettingsRepository(db),
			Projections: NewPostgresProjectionRepository(db),
			db:          db,
		}, nil

	case strings.HasPrefix(url, "sqlite:"):
		path := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite:"), "//")
		db, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:      "sqlite",
			Accounts:    NewSQLiteAccountRepository(db),
			Bills:       NewSQLiteBillRepository(db),
			Settings:    NewSQLiteSettingsRepository(db),
			Projections: NewSQLiteProjectionRepository(db),
			db:          db,
		}, nil
	}
	return nil, ErrUnsupportedDatabaseURL
}

// NewPostgresConnection creates and returns a new PostgreSQL database connection.
// It also pings the database to ensure connectivity.
func NewPostgresConnection(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenSQLite opens (creating if needed) a SQLite database file and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=synchronous(normal)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; WAL still lets readers through.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}

// EnsurePostgresSchema creates missing tables.
func EnsurePostgresSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}
