package schema

import (
	"errors"
	"fmt"
)

// ValidationError is a single field validation failure.
type ValidationError struct {
	Field  string // field name
	Reason string // human-readable reason
	Value  any    // the offending value
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Field, e.Reason, e.Value)
}

// AggregateError collects every field failure from one validation pass.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("\n  %d. %s", i+1, err.Error())
	}
	return msg
}

// IsValidationError reports whether err represents invalid input (as
// opposed to cancellation, transport failure, or a flow exception).
func IsValidationError(err error) bool {
	var agg *AggregateError
	var single *ValidationError
	return errors.As(err, &agg) || errors.As(err, &single)
}

// FieldErrors unpacks the per-field failures from a validation error.
// Returns nil when err is not a validation error.
func FieldErrors(err error) []error {
	var agg *AggregateError
	if errors.As(err, &agg) {
		return agg.Errors
	}
	var single *ValidationError
	if errors.As(err, &single) {
		return []error{single}
	}
	return nil
}

// ErrAborted distinguishes a cancelled in-flight validation from a
// normal validation failure, so callers can discard stale results
// instead of surfacing a misleading error.
var ErrAborted = errors.New("validation aborted")

// ErrSuperseded is returned by a debounced validator when a newer
// invocation arrived within the quiet window.
var ErrSuperseded = errors.New("validation superseded by a newer invocation")
