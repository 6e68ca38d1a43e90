package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// Options tune the connection pool handed to every unit of work.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

// Open connects to the store behind driverName and verifies the connection.
// It does not apply migrations.
func Open(driverName, dsn string, opts Options) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(driverName)
	if err != nil {
		return nil, dialect, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, dialect, fmt.Errorf("failed to open database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if err := db.Ping(); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, dialect, fmt.Errorf("failed to ping database: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, dialect, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, dialect, nil
}

// SQLiteDSN builds a modernc sqlite DSN for a database file. Foreign keys are
// enforced, writers take the lock up front and wait for each other instead of
// failing with SQLITE_BUSY.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_txlock=immediate", path)
}

// Migrate applies every pending up migration for the dialect of driverName.
// It opens its own handle on dsn and closes it before returning, so callers'
// pools never hold the connection golang-migrate pins.
func Migrate(driverName, dsn string) error {
	dialect, err := DialectFor(driverName)
	if err != nil {
		return err
	}

	handle, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration handle: %w", err)
	}
	defer func() {
		if err := handle.Close(); err != nil {
			slog.Error("failed to close migration handle", "error", err)
		}
	}()

	var target database.Driver
	switch dialect {
	case Postgres:
		target, err = migratepgx.WithInstance(handle, &migratepgx.Config{})
	default:
		target, err = migratesqlite.WithInstance(handle, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+dialect.String())
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect.String(), target)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		if serr, derr := m.Close(); serr != nil || derr != nil {
			slog.Debug("migrator closed with errors", "source_error", serr, "database_error", derr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
