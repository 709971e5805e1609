package library

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failure")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")

	// ErrQuotaExceeded is the persistence failure raised when durable storage is full.
	ErrQuotaExceeded = fmt.Errorf("%w: storage quota exceeded", ErrPersistence)

	ErrUnknownColumn = fmt.Errorf("%w: unknown column", ErrValidation)
	ErrInvalidRecord = fmt.Errorf("%w: invalid record", ErrValidation)
	ErrDuplicateBook = fmt.Errorf("%w: book already in library", ErrValidation)
)

// OpError records the store operation and book that failed.
type OpError struct {
	Op     string
	BookID string
	Err    error
}

func (e *OpError) Error() string {
	if e.BookID != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.BookID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// FailureKind classifies errors returned by the store.
type FailureKind string

const (
	KindNone          FailureKind = ""
	KindValidation    FailureKind = "validation"
	KindNotFound      FailureKind = "not_found"
	KindPersistence   FailureKind = "persistence"
	KindQuotaExceeded FailureKind = "quota_exceeded"
	KindUnavailable   FailureKind = "unavailable"
)

// Kind maps err onto the failure taxonomy. Errors that carry none of the
// sentinels (for instance a lookup that timed out) are KindUnavailable.
func Kind(err error) FailureKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindUnavailable
	}
}

// persistenceError keeps quota failures distinguishable and tags everything
// else as a generic persistence failure.
func persistenceError(err error) error {
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
