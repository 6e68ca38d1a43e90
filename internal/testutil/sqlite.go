// Package testutil builds migrated throwaway databases for package tests.
package testutil

import (
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/txdao/internal/db"
	"github.com/vbonduro/txdao/internal/unitofwork"
)

// DiscardLogger drops everything; tests that assert on logs build their own.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenSQLite returns a migrated sqlite database in a per-test directory. The
// database is closed when the test ends.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	dsn := db.SQLiteDSN(filepath.Join(t.TempDir(), "txdao.db"))
	require.NoError(t, db.Migrate("sqlite", dsn))

	d, _, err := db.Open("sqlite", dsn, db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	return d
}

// NewExecutor returns an executor over a fresh migrated sqlite database.
func NewExecutor(t testing.TB, opts ...unitofwork.Option) (*unitofwork.Executor, *sql.DB) {
	t.Helper()

	d := OpenSQLite(t)
	opts = append([]unitofwork.Option{unitofwork.WithLogger(DiscardLogger())}, opts...)
	return unitofwork.New(d, db.SQLite, opts...), d
}
