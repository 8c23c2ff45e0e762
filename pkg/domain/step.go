package domain

import "github.com/nmbl-labs/formpath/pkg/ports"

// StepID identifies a step within a flow definition.
// It is an opaque string; the empty StepID is reserved to mean "no step".
type StepID string

// Data maps step ids to the validated data collected for each step.
// A missing key means the step has not been answered yet.
type Data map[StepID]any

// Clone returns a shallow copy of the data map.
// Step values are shared; the map itself is independent.
func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// TransitionFunc picks the next step from the answering step's own data
// and the full collected data set. Returning the empty StepID ends the
// flow at the current step.
//
// Implementations must be pure. A panic inside a TransitionFunc is
// treated as a flow exception by the engine, not a validation failure.
type TransitionFunc func(stepData any, all Data) StepID

// Transition is the rule that moves a flow from one step to the next.
// It is a sealed variant: Static (fixed edge), Terminal (no further
// steps) or Dynamic (computed from data). Resolution is an exhaustive
// type switch in internal/runtime, never reflection.
type Transition interface {
	isTransition()
}

// Static is a fixed edge to a declared step.
type Static struct {
	To StepID
}

func (Static) isTransition() {}

// Terminal marks the last step of a branch; the flow completes here.
type Terminal struct{}

func (Terminal) isTransition() {}

// Dynamic computes the edge from the step's data once it is available.
// The destination is unknowable without data, so static validation stops
// at dynamic edges.
type Dynamic struct {
	Fn TransitionFunc
}

func (Dynamic) isTransition() {}

// Goto builds a static transition to the given step.
func Goto(to StepID) Transition { return Static{To: to} }

// End builds a terminal transition.
func End() Transition { return Terminal{} }

// Branch builds a dynamic transition from fn.
func Branch(fn TransitionFunc) Transition { return Dynamic{Fn: fn} }

// StepDefinition is one named stage of a flow: a validation schema for
// the data the step collects, and the transition out of it.
type StepDefinition struct {
	// Schema validates the step's input before it is merged into the
	// collected data. Required; a step without a schema is a definition
	// error.
	Schema ports.Validator

	// Next is the transition rule. A nil Next is normalized to Terminal
	// during construction.
	Next Transition
}
