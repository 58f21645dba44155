package backend

import (
	"errors"
	"fmt"
)

// Error types for classifying backend failures during evaluation.

// UnavailableError indicates the backend could not be reached or answered
// with a connection-level failure.
type UnavailableError struct {
	// Backend is the resolver key or endpoint that failed.
	Backend string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("backend %s unavailable: %v", e.Backend, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// UnknownNodeError indicates a seed identifier does not exist in the
// backend's graph. The engine surfaces this as an evaluation failure
// rather than dropping the seed.
type UnknownNodeError struct {
	Backend string
	Node    string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("backend %s: unknown node %s", e.Backend, e.Node)
}

// TimeoutError indicates a backend call exceeded the caller-supplied timeout.
type TimeoutError struct {
	Backend string
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend %s: query timed out: %v", e.Backend, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// IsUnavailable returns true if the error is a backend availability failure.
func IsUnavailable(err error) bool {
	var unavailable *UnavailableError
	return errors.As(err, &unavailable)
}

// IsUnknownNode returns true if the error is an unknown-seed failure.
func IsUnknownNode(err error) bool {
	var unknown *UnknownNodeError
	return errors.As(err, &unknown)
}

// IsTimeout returns true if the error is a backend timeout.
func IsTimeout(err error) bool {
	var timeout *TimeoutError
	return errors.As(err, &timeout)
}
