// Package errs holds the error taxonomy shared by the order and location
// services: validation failures never reach the store, persistence and
// observation failures wrap the underlying store error, and missing entities
// are a distinct condition from transport failure.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup for an identifier the store does not hold.
var ErrNotFound = errors.New("not found")

// ValidationError is a local, caller-input error. The operation is aborted
// before any store call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError reports a failed store write. Never retried automatically.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ObservationError reports a failed store read or a broken subscription.
// A subscription that surfaces one stops emitting until re-subscribed.
type ObservationError struct {
	Tree string
	Err  error
}

func (e *ObservationError) Error() string {
	return fmt.Sprintf("observe %s: %v", e.Tree, e.Err)
}

func (e *ObservationError) Unwrap() error { return e.Err }
