package domain

import "context"

// StepEvent describes a step completing through validation.
type StepEvent struct {
	Step StepID
	Data any
}

// FlowEvent describes the whole flow completing; Data is the union of
// every step's validated data.
type FlowEvent struct {
	FlowID string
	Data   Data
}

// LifecycleHooks are optional callbacks fired by the engine. Nil fields
// are skipped. Hooks run synchronously inside the operation that fires
// them; panics in hooks are treated as flow exceptions.
type LifecycleHooks struct {
	// OnStepComplete fires after a step's data passes validation and has
	// been merged into the collected data.
	OnStepComplete func(context.Context, *StepEvent)

	// OnFlowComplete fires when the terminal step is submitted, before
	// the status settles on complete.
	OnFlowComplete func(context.Context, *FlowEvent)

	// OnError receives flow exceptions: unexpected errors from
	// user-supplied transition functions or schema refinements. If nil,
	// exceptions are logged and otherwise swallowed so the consumer
	// never crashes mid-flow.
	OnError func(context.Context, error)
}
