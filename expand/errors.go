package expand

import (
	"errors"
	"fmt"
	"strings"
)

// Spec-level errors, detected before any backend call.

// CyclicDefinitionError indicates the inherits graph of the named enums
// contains a cycle.
type CyclicDefinitionError struct {
	// Cycle is the resolution path that closed on itself, first and last
	// element identical.
	Cycle []string
}

func (e *CyclicDefinitionError) Error() string {
	return fmt.Sprintf("cyclic enum definition: %s", strings.Join(e.Cycle, " -> "))
}

// UnknownEnumReferenceError indicates an inherits reference names an enum
// absent from the spec table.
type UnknownEnumReferenceError struct {
	// Enum is the spec holding the dangling reference, empty when the
	// missing name was requested directly.
	Enum string

	// Ref is the missing name.
	Ref string
}

func (e *UnknownEnumReferenceError) Error() string {
	if e.Enum == "" {
		return fmt.Sprintf("unknown enum: %s", e.Ref)
	}
	return fmt.Sprintf("enum %s references unknown enum %s", e.Enum, e.Ref)
}

// IsCyclic returns true if the error is a cyclic-definition failure.
func IsCyclic(err error) bool {
	var cyclic *CyclicDefinitionError
	return errors.As(err, &cyclic)
}

// IsUnknownReference returns true if the error is a dangling enum reference.
func IsUnknownReference(err error) bool {
	var unknown *UnknownEnumReferenceError
	return errors.As(err, &unknown)
}
