// Package store holds the per-aggregate repositories. Every public method runs
// as exactly one unit of work on the executor it was built with.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/txdao/internal/domain"
	"github.com/vbonduro/txdao/internal/unitofwork"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// mapping binds an entity type to its table. columns must list id first and
// match the order scan reads them in.
type mapping[T any] struct {
	table   string
	columns string
	scan    func(scanner) (*T, error)
}

func (m mapping[T]) selectFrom() string {
	return "SELECT " + m.columns + " FROM " + m.table
}

// findByID returns nil, nil when no row has the identifier.
func (m mapping[T]) findByID(ctx context.Context, s *unitofwork.Session, id int64) (*T, error) {
	v, err := m.scan(s.QueryRowContext(ctx, m.selectFrom()+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", m.table, err)
	}
	return v, nil
}

// mustFindByID is findByID for callers that treat absence as an error.
func (m mapping[T]) mustFindByID(ctx context.Context, s *unitofwork.Session, id int64) (*T, error) {
	v, err := m.findByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%s %d: %w", m.table, id, domain.ErrNotFound)
	}
	return v, nil
}

func (m mapping[T]) findAll(ctx context.Context, s *unitofwork.Session) ([]*T, error) {
	return m.listWhere(ctx, s, "")
}

// listWhere returns the matching rows ordered by id. An empty where clause
// lists the whole table. The result is never nil.
func (m mapping[T]) listWhere(ctx context.Context, s *unitofwork.Session, where string, args ...any) ([]*T, error) {
	query := m.selectFrom()
	if where != "" {
		query += " WHERE " + where
	}
	return m.query(ctx, s, query+" ORDER BY id", args...)
}

// single asserts that exactly one row matches.
func (m mapping[T]) single(ctx context.Context, s *unitofwork.Session, where string, args ...any) (*T, error) {
	found, err := m.query(ctx, s, m.selectFrom()+" WHERE "+where+" LIMIT 2", args...)
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%s where %s: %w", m.table, where, domain.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%s where %s: %w", m.table, where, domain.ErrMultipleResults)
	}
}

func (m mapping[T]) query(ctx context.Context, s *unitofwork.Session, query string, args ...any) ([]*T, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", m.table, err)
	}
	defer rows.Close()

	out := make([]*T, 0)
	for rows.Next() {
		v, err := m.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", m.table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", m.table, err)
	}
	return out, nil
}

func (m mapping[T]) deleteByID(ctx context.Context, s *unitofwork.Session, id int64) error {
	return execOne(ctx, s, m.table, "DELETE FROM "+m.table+" WHERE id = ?", id)
}

// insert runs an INSERT and returns the identifier the store generated.
func insert(ctx context.Context, s *unitofwork.Session, table, query string, args ...any) (int64, error) {
	var id int64
	if err := s.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert %s: %w", table, err)
	}
	return id, nil
}

// execOne runs a statement that must touch exactly one existing row.
func execOne(ctx context.Context, s *unitofwork.Session, table, query string, args ...any) error {
	result, err := s.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", table, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", table, domain.ErrNotFound)
	}
	return nil
}
