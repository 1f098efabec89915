package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrValidation and ErrStorage are matched by ValidationError and
	// StorageError respectively, so callers can use errors.Is.
	ErrValidation = errors.New("validation failed")
	ErrStorage    = errors.New("storage failure")

	// ErrSummaryStale is returned alongside a recorded transaction when the
	// follow-up summary recompute failed. The transaction itself is stored.
	ErrSummaryStale = errors.New("monthly summary may be stale")
)

// ValidationError describes why a candidate or request was rejected.
type ValidationError struct {
	Row    int // 1-based row for batch input, 0 otherwise
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s %s", e.Row, e.Field, e.Reason)
	}

	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a persistence failure. The cause is kept for logs but is
// not meant for end users.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
