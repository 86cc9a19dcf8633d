package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnknownAction      = errors.New("unknown action")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrTooManyAttempts    = errors.New("too many attempts")
)

// BackendError reports a failure returned by the identity & storage backend.
// Message carries the backend's raw text; it is logged server-side and never
// sent to API clients.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
}

// ReconciliationError signals that user creation left an orphaned identity:
// the profile upsert failed and the compensating identity delete failed too.
// IdentityID identifies the record needing out-of-band cleanup.
type ReconciliationError struct {
	IdentityID string
	Cause      error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("identity %s requires reconciliation: %v", e.IdentityID, e.Cause)
}

func (e *ReconciliationError) Unwrap() error { return e.Cause }
