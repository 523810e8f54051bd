package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
)

func setupSQLite(t *testing.T) *sqlx.DB {
	db, err := OpenDB(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestDB(t *testing.T) *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "habitgrid"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "secret"
	}
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "habitgrid"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	db, err := OpenDB(DriverPgx, dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func exerciseStateStore(t *testing.T, repo *SQLStateStore) {
	ctx := context.Background()

	t.Run("Missing key", func(t *testing.T) {
		_, err := repo.Get(ctx, "habits:missing")
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("Insert then overwrite", func(t *testing.T) {
		board := domain.Add(nil, "Drink water")
		data, err := domain.Encode(board)
		require.NoError(t, err)

		require.NoError(t, repo.Set(ctx, "habits", data))

		got, err := repo.Get(ctx, "habits")
		require.NoError(t, err)
		decoded, err := domain.Decode(got)
		require.NoError(t, err)
		assert.Equal(t, board, decoded)

		require.NoError(t, repo.Set(ctx, "habits", []byte(`[]`)))
		got, err = repo.Get(ctx, "habits")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
	})

	t.Run("Keys are independent", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "habits:a", []byte(`["a"]`)))
		require.NoError(t, repo.Set(ctx, "habits:b", []byte(`["b"]`)))

		a, err := repo.Get(ctx, "habits:a")
		require.NoError(t, err)
		assert.Equal(t, `["a"]`, string(a))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}

func TestSQLStateStore_SQLite(t *testing.T) {
	db := setupSQLite(t)
	repo := NewSQLStateStore(db)
	ctx := context.Background()

	t.Run("Missing table reads as empty", func(t *testing.T) {
		_, err := repo.Get(ctx, "habits")
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx), "schema creation must be repeatable")

	exerciseStateStore(t, repo)
}

func TestSQLStateStore_Postgres_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLStateStore(db)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))
	_, err := db.Exec("TRUNCATE TABLE habit_state")
	require.NoError(t, err, "Failed to clean up habit_state")

	exerciseStateStore(t, repo)
}

func TestOpenDB_UnsupportedDriver(t *testing.T) {
	_, err := OpenDB("mysql", "whatever")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported sql driver")
}
