// Package errors provides centralized error definitions for the council
// codebase. It defines the sentinel errors for configuration mistakes —
// the only error category that is surfaced to callers rather than being
// absorbed into per-item result records — along with a ValidationError
// type carrying field context.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Configuration sentinel errors. These indicate programmer or setup
// mistakes, not agent failures, and are always raised to the caller.
var (
	// ErrRosterMismatch indicates the client list and roster are not 1:1.
	ErrRosterMismatch = New("clients must align one-to-one with roster")
	// ErrUnknownProvider indicates a provider name that is not in the roster.
	ErrUnknownProvider = New("unknown provider")
	// ErrUnsupportedSchemaVersion indicates a persisted run with a schema
	// version this engine cannot load.
	ErrUnsupportedSchemaVersion = New("unsupported run schema version")
	// ErrNoDrafts indicates a phase that requires drafts was invoked before
	// the draft phase produced any.
	ErrNoDrafts = New("phase requires drafts")
	// ErrRunNotFound indicates a saved run could not be located.
	ErrRunNotFound = New("run not found")
	// ErrEmptyRoster indicates an operation that needs at least one
	// configured council member.
	ErrEmptyRoster = New("roster is empty")
)

// ValidationError represents invalid configuration or input, with the
// field that failed and a human-readable message.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Unwrap returns the wrapped error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors aggregates multiple validation failures into one error.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// IsConfigError reports whether err belongs to the raised configuration
// error category (as opposed to absorbed transport/parse failures).
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var ve *ValidationError
	var ves ValidationErrors
	return Is(err, ErrRosterMismatch) ||
		Is(err, ErrUnknownProvider) ||
		Is(err, ErrUnsupportedSchemaVersion) ||
		Is(err, ErrNoDrafts) ||
		Is(err, ErrEmptyRoster) ||
		As(err, &ve) ||
		As(err, &ves)
}
