package domain

import "errors"

var (
	// ErrInvalidArgument is returned when a caller passes a nil or incomplete entity.
	// No transaction has been opened when it is returned.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a query asserting exactly one result matched no rows.
	ErrNotFound = errors.New("record not found")

	// ErrMultipleResults is returned when a query asserting exactly one result matched
	// more than one row.
	ErrMultipleResults = errors.New("query returned more than one result")

	// ErrDuplicateKey is returned when a unique constraint is violated.
	ErrDuplicateKey = errors.New("duplicate key value")

	// ErrForeignKeyViolation is returned when a mandatory reference is missing or dangling.
	ErrForeignKeyViolation = errors.New("foreign key violation")
)
