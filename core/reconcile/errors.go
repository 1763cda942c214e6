package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate indicates a source key was already observed in this run.
	ErrDuplicate = errors.New("duplicate source key")

	// ErrDependencyUnavailable indicates a referenced place or organizer
	// failed to reconcile earlier in the same run.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// RecordError is a failure scoped to one source entity. The run logs it,
// skips the entity and continues.
type RecordError struct {
	Kind Kind
	Key  string
	Err  error
}

// Error implements the error interface
func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Key, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RecordError) Unwrap() error {
	return e.Err
}

// NewRecordError wraps err with the kind and key it belongs to.
func NewRecordError(kind Kind, key string, err error) *RecordError {
	return &RecordError{Kind: kind, Key: key, Err: err}
}

// RejectedError is returned when the remote still refuses a payload after the
// rejected field was stripped and the call retried once.
type RejectedError struct {
	Rejection Rejection
	Retried   bool
}

// Error implements the error interface
func (e *RejectedError) Error() string {
	if e.Retried {
		return fmt.Sprintf("remote rejected field %s after retry: %s", e.Rejection.Field, e.Rejection.Detail)
	}
	return fmt.Sprintf("remote rejected field %s: %s", e.Rejection.Field, e.Rejection.Detail)
}

// FatalError aborts a run. Stage names the failing step: load_state and
// enumerate fail before any purge, so the next run starts from the same
// baseline; persist_run fails after purge, when only the run timestamp
// could not be stored.
type FatalError struct {
	Stage string
	Err   error
}

// Error implements the error interface
func (e *FatalError) Error() string {
	return fmt.Sprintf("run aborted during %s: %v", e.Stage, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FatalError) Unwrap() error {
	return e.Err
}

// NewFatalError creates a new FatalError
func NewFatalError(stage string, err error) *FatalError {
	return &FatalError{Stage: stage, Err: err}
}

// IsFatal checks if an error aborted the run
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
