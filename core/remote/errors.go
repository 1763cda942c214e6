package remote

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by APIError for 404 responses.
var ErrNotFound = errors.New("remote entity not found")

// ValidationError is returned when the remote refuses a payload.
// Field is empty when the response names no field.
type ValidationError struct {
	Field  string
	Detail string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("remote validation failed: %s", e.Detail)
	}
	return fmt.Sprintf("remote validation failed on %s: %s", e.Field, e.Detail)
}

// APIError represents an unexpected HTTP status from the remote.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: expected success, got %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is matches ErrNotFound for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// IsNotFound checks if err reports a missing remote entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
