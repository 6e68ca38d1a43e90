package unitofwork

import (
	"errors"
	"fmt"

	"github.com/vbonduro/txdao/internal/db"
	"github.com/vbonduro/txdao/internal/domain"
)

// ErrSessionClosed is returned when a Session is used after its unit of work
// has finished.
var ErrSessionClosed = errors.New("session already closed")

// OperationError is the single error a failed unit of work returns. By the
// time it reaches the caller the transaction has been rolled back and the
// session released.
type OperationError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// classify tags store errors with the domain error they represent so callers
// can match them with errors.Is without knowing the driver.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateKey), errors.Is(err, domain.ErrForeignKeyViolation):
		return err
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrDuplicateKey, err)
	case db.IsReferenceViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrForeignKeyViolation, err)
	default:
		return err
	}
}
