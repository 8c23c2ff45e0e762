package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRecordNotFound is returned by stores when a key has no value.
var ErrRecordNotFound = errors.New("record not found")

// ErrStepNotFound is returned when an operation names a step id that is
// not declared in the flow definition.
var ErrStepNotFound = errors.New("step not found")

// Definition error kinds, used for programmatic checks on DefinitionError.
const (
	DefErrMissingInitial = "missing_initial"
	DefErrDanglingEdge   = "dangling_edge"
	DefErrMissingSchema  = "missing_schema"
	DefErrUnreachable    = "unreachable_step"
	DefErrStaticCycle    = "static_cycle"
)

// DefinitionError is a structural problem in a flow definition. These are
// developer-facing and fatal to flow creation; they are never tolerated
// at runtime.
type DefinitionError struct {
	Kind string // one of the DefErr* constants
	Step StepID // offending step, when applicable
	Msg  string
}

func (e *DefinitionError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("flow definition: %s: step %q: %s", e.Kind, e.Step, e.Msg)
	}
	return fmt.Sprintf("flow definition: %s: %s", e.Kind, e.Msg)
}

// FlowError wraps an unexpected error thrown by user-supplied code (a
// transition function or a custom validator refinement). It is distinct
// from a validation failure: the engine routes it to the OnError hook
// instead of surfacing field errors.
type FlowError struct {
	Step StepID
	Err  error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("flow exception at step %q: %v", e.Step, e.Err)
}

func (e *FlowError) Unwrap() error { return e.Err }

// InvalidDefinitionError aggregates every structural error found by
// Validate; AssertValid returns it when the report is not clean.
type InvalidDefinitionError struct {
	Errors []*DefinitionError
}

func (e *InvalidDefinitionError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, de := range e.Errors {
		msgs[i] = de.Error()
	}
	return fmt.Sprintf("invalid flow definition (%d errors):\n- %s",
		len(e.Errors), strings.Join(msgs, "\n- "))
}
