package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the service and matched with errors.Is.
var (
	// ErrNotFound is returned when a lead or history entry does not exist.
	ErrNotFound = errors.New("lead not found")

	// ErrNotOwner is returned when the requesting identity does not own the
	// lead it is trying to mutate or delete.
	ErrNotOwner = errors.New("lead is owned by another user")

	// ErrTooManyRows is the batch precondition failure for imports that
	// exceed the row ceiling. No rows are processed when it is returned.
	ErrTooManyRows = fmt.Errorf("import exceeds the maximum of %d rows", MaxImportRows)

	// ErrEmptyFile is returned for imports with no data rows after the header.
	ErrEmptyFile = errors.New("no data rows after header")

	// ErrBadCSV wraps batch precondition failures in the CSV structure
	// itself: unparseable input or a missing/wrong header line.
	ErrBadCSV = errors.New("malformed CSV")

	// ErrConflict is returned when an insert trips a uniqueness constraint.
	ErrConflict = errors.New("lead already exists")
)

// FieldError is a single recoverable validation failure, keyed by the
// internal field name so that import reports stay machine-readable.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// FieldErrors aggregates every failure for a candidate record. Validation
// never stops at the first problem; callers always see the full list.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any failure is attached to the given field.
func (e FieldErrors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}
