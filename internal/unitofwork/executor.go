// Package unitofwork runs caller-supplied operations inside exactly one
// managed transaction each.
//
// Every call acquires its own pooled connection, begins a transaction on it
// and hands the caller a Session. A nil error from the operation commits; any
// error, a failed commit or a panic rolls back. The connection is returned to
// the pool on every path, after the transaction has been resolved. Failures
// surface as a single *OperationError naming the operation. Rollback errors
// are logged and never replace the error that caused the rollback.
//
// The executor does not retry. Callers that want retries wrap the call.
package unitofwork

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/txdao/internal/db"
)

// Outcome is how a unit of work ended.
type Outcome string

const (
	OutcomeCommitted     Outcome = "committed"
	OutcomeRolledBack    Outcome = "rolled_back"
	OutcomeAcquireFailed Outcome = "acquire_failed"
)

// Observer receives unit-of-work lifecycle events. Implementations must be
// safe for concurrent use.
type Observer interface {
	SessionOpened()
	SessionReleased()
	Finished(op string, readOnly bool, outcome Outcome, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) SessionOpened() {}

func (noopObserver) SessionReleased() {}

func (noopObserver) Finished(string, bool, Outcome, time.Duration) {}

// Executor is safe for concurrent use; calls share nothing but the pool.
type Executor struct {
	db            *sql.DB
	dialect       db.Dialect
	logger        *slog.Logger
	observer      Observer
	readOnlyHints bool
	open          atomic.Int64
}

type Option func(*Executor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithReadOnlyHints controls whether read operations open their transaction
// with sql.TxOptions.ReadOnly. Enabled by default.
func WithReadOnlyHints(enabled bool) Option {
	return func(e *Executor) {
		e.readOnlyHints = enabled
	}
}

func New(database *sql.DB, dialect db.Dialect, opts ...Option) *Executor {
	e := &Executor{
		db:            database,
		dialect:       dialect,
		logger:        slog.Default(),
		observer:      noopObserver{},
		readOnlyHints: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OpenSessions is the number of sessions currently held by in-flight calls.
func (e *Executor) OpenSessions() int64 {
	return e.open.Load()
}

// Dialect returns the SQL dialect sessions rebind queries to.
func (e *Executor) Dialect() db.Dialect {
	return e.dialect
}

// Perform runs a side-effecting operation in its own transaction.
func (e *Executor) Perform(ctx context.Context, op string, fn func(context.Context, *Session) error) error {
	_, err := execute(ctx, e, op, false, func(ctx context.Context, s *Session) (struct{}, error) {
		return struct{}{}, fn(ctx, s)
	})
	return err
}

// PerformReturning runs a value-producing operation in its own transaction
// and returns the value once the transaction has committed.
func PerformReturning[T any](ctx context.Context, e *Executor, op string, fn func(context.Context, *Session) (T, error)) (T, error) {
	return execute(ctx, e, op, false, fn)
}

// PerformReadOnly is PerformReturning with the read-only hint set on the
// transaction. The hint lets the store skip write locks; it is not enforced
// by the executor.
func PerformReadOnly[T any](ctx context.Context, e *Executor, op string, fn func(context.Context, *Session) (T, error)) (T, error) {
	return execute(ctx, e, op, e.readOnlyHints, fn)
}

func execute[T any](ctx context.Context, e *Executor, op string, readOnly bool, fn func(context.Context, *Session) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	s, err := e.acquire(ctx, readOnly)
	if err != nil {
		e.observer.Finished(op, readOnly, OutcomeAcquireFailed, time.Since(start))
		return zero, &OperationError{Op: op, Err: classify(err)}
	}

	committed := false
	// Deferred calls run last-in first-out: the transaction is resolved
	// before the connection goes back to the pool, panics included.
	defer func() {
		outcome := OutcomeCommitted
		if !committed {
			outcome = OutcomeRolledBack
		}
		e.release(s)
		e.observer.Finished(op, readOnly, outcome, time.Since(start))
	}()
	defer func() {
		if !committed {
			e.rollback(op, s)
		}
	}()

	value, err := fn(ctx, s)
	if err != nil {
		return zero, &OperationError{Op: op, Err: classify(err)}
	}

	if err := s.tx.Commit(); err != nil {
		return zero, &OperationError{Op: op, Err: classify(fmt.Errorf("failed to commit transaction: %w", err))}
	}
	committed = true

	e.logger.Debug("unit of work committed", "op", op, "session", s.id, "read_only", readOnly, "elapsed", time.Since(start))
	return value, nil
}

func (e *Executor) acquire(ctx context.Context, readOnly bool) (*Session, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			e.logger.Error("failed to release connection after begin error", "error", cerr)
		}
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	s := &Session{
		id:       uuid.NewString(),
		conn:     conn,
		tx:       tx,
		dialect:  e.dialect,
		readOnly: readOnly,
	}
	e.open.Add(1)
	e.observer.SessionOpened()
	return s, nil
}

// rollback is best effort. A transaction the driver already aborted, for
// example after context cancellation, reports sql.ErrTxDone.
func (e *Executor) rollback(op string, s *Session) {
	err := s.tx.Rollback()
	switch {
	case err == nil:
		e.logger.Debug("unit of work rolled back", "op", op, "session", s.id)
	case errors.Is(err, sql.ErrTxDone):
		e.logger.Debug("transaction already closed before rollback", "op", op, "session", s.id)
	default:
		e.logger.Warn("rollback failed", "op", op, "session", s.id, "error", err)
	}
}

func (e *Executor) release(s *Session) {
	s.closed.Store(true)
	if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		e.logger.Error("failed to release connection", "session", s.id, "error", err)
	}
	e.open.Add(-1)
	e.observer.SessionReleased()
}
