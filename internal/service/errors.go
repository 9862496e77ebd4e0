package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for illegal state transitions on the register lifecycle.
var (
	// ErrNoOpenRegister is returned when an operation requires an open register
	// and there is none. Never retried; the caller must open a register first.
	ErrNoOpenRegister = errors.New("no open cash register")

	// ErrRegisterAlreadyOpen is returned by Open when a register is already open.
	ErrRegisterAlreadyOpen = errors.New("a cash register is already open")

	// ErrMissingRegisterID signals a register without an id at close time.
	// The in-memory state is stale or corrupt — the caller should Refresh.
	ErrMissingRegisterID = errors.New("current register has no id, refresh and retry")
)

// ValidationError rejects caller-supplied input before any persistence call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failed store call. PermissionDenied is distinguished
// for user messaging only — both variants are terminal for the call and the
// in-memory state is left exactly as it was.
type PersistenceError struct {
	Op               string
	PermissionDenied bool
	Err              error
}

func (e *PersistenceError) Error() string {
	if e.PermissionDenied {
		return fmt.Sprintf("%s: permission denied: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPermissionDenied reports whether err carries a permission-denied persistence failure.
func IsPermissionDenied(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.PermissionDenied
}
