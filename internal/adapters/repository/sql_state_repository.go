package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	undefinedTable = "42P01"
)

var _ domain.StateStore = (*SQLStateStore)(nil)

// SQLStateStore keeps one row per storage key. Queries are written with '?'
// placeholders and rebound for the driver in use.
type SQLStateStore struct {
	db *sqlx.DB
}

func NewSQLStateStore(db *sqlx.DB) *SQLStateStore {
	return &SQLStateStore{db: db}
}

// OpenDB connects with one of the supported drivers and applies pool
// settings suited to it.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPgx, DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return db, nil
}

func (r *SQLStateStore) EnsureSchema(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS habit_state (
            state_key  VARCHAR(255) PRIMARY KEY,
            payload    TEXT NOT NULL,
            updated_at TIMESTAMP NOT NULL
        )`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create habit_state table: %w", err)
	}
	return nil
}

func (r *SQLStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := r.db.Rebind(`SELECT payload FROM habit_state WHERE state_key = ?`)

	var payload string
	err := r.db.GetContext(ctx, &payload, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUndefinedTable(err) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("state query failed: %w", err)
	}

	return []byte(payload), nil
}

func (r *SQLStateStore) Set(ctx context.Context, key string, data []byte) error {
	query := r.db.Rebind(`
        INSERT INTO habit_state (state_key, payload, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT (state_key) DO UPDATE
        SET payload = excluded.payload, updated_at = excluded.updated_at`)

	if _, err := r.db.ExecContext(ctx, query, key, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("state upsert failed: %w", err)
	}
	return nil
}

func (r *SQLStateStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == undefinedTable
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == undefinedTable
	}

	return strings.Contains(err.Error(), "no such table")
}
