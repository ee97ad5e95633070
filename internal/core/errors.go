package core

import (
	"errors"
	"fmt"
)

// ValidationError represents an invalid or missing driver option.
type ValidationError struct {
	// Field is the name of the option that failed validation.
	Field string

	// Message is the validation error message.
	Message string

	// Value is the invalid value (optional).
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error in %s: %s (value: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Is implements error matching for errors.Is.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// TransportError represents a failure reported by a transport while
// delivering a message. It unwraps to the error of the underlying client.
type TransportError struct {
	// Driver is the name of the transport that failed.
	Driver string

	// Op is the step that failed (e.g. "dial", "auth", "send").
	Op string

	// Err is the underlying error.
	Err error

	// IsTemporary indicates a transient failure (e.g. an SMTP 4xx reply).
	IsTemporary bool
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %s: %v", e.Driver, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the failure is transient.
func (e *TransportError) Temporary() bool {
	return e.IsTemporary
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewValidationErrorWithValue creates a new validation error with a value.
func NewValidationErrorWithValue(field, message string, value any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewTransportError creates a new transport error.
func NewTransportError(driver, op string, err error) *TransportError {
	return &TransportError{
		Driver: driver,
		Op:     op,
		Err:    err,
	}
}

// NewTemporaryTransportError creates a new transport error marked as transient.
func NewTemporaryTransportError(driver, op string, err error) *TransportError {
	return &TransportError{
		Driver:      driver,
		Op:          op,
		Err:         err,
		IsTemporary: true,
	}
}

// DependencyError wraps err so that it matches ErrDependency.
func DependencyError(driver string, err error) error {
	return fmt.Errorf("%s: %w: %w", driver, ErrDependency, err)
}

// IsTemporary checks if an error is temporary.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}

	var te interface{ Temporary() bool }
	if errors.As(err, &te) {
		return te.Temporary()
	}

	return false
}
