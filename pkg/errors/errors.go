package hub_errors

import (
	"errors"
	"time"
)

// Common errors. Each maps onto one branch of the error taxonomy the
// messaging core reports to clients: ErrUnauthorized terminates the
// connection attempt, ErrInvalidInput and ErrNotFound abort the single
// triggering operation, ErrForbidden rejects edits/deletes by non-owners,
// and ErrUnavailable surfaces a transient persistence failure.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidInput  = errors.New("invalid input")
	ErrTooLarge      = errors.New("content too large")
	ErrUnavailable   = errors.New("service unavailable")
	ErrAlreadyExists = errors.New("already exists")
)

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now()
	return &now
}
