package unitofwork

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/vbonduro/txdao/internal/db"
)

// Session is the only handle a unit of work gets on the store. It is bound to
// one pooled connection and one transaction, and is invalid once the unit of
// work returns.
type Session struct {
	id       string
	conn     *sql.Conn
	tx       *sql.Tx
	dialect  db.Dialect
	readOnly bool
	closed   atomic.Bool
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// ReadOnly reports whether the transaction was opened with the read-only hint.
func (s *Session) ReadOnly() bool {
	return s.readOnly
}

// ExecContext runs a statement inside the session's transaction. Placeholders
// are written as ?.
func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	return s.tx.ExecContext(ctx, s.dialect.Rebind(query), args...)
}

// QueryContext runs a query inside the session's transaction.
func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	return s.tx.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

// QueryRowContext runs a query expected to return at most one row. On a
// closed session the returned row reports sql.ErrTxDone from Scan.
func (s *Session) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.tx.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}
