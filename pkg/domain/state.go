package domain

// Status indicates what the state machine is currently doing.
type Status string

const (
	StatusIdle       Status = "idle"       // waiting for input on the current step
	StatusValidating Status = "validating" // optimistic navigation, validation in flight
	StatusSubmitting Status = "submitting" // terminal step reached, completion hook running
	StatusComplete   Status = "complete"   // flow finished
	StatusError      Status = "error"      // last operation failed validation
)

// FlowState is a snapshot of flow progress. It is created by NewState,
// mutated exclusively through engine operations, and replaced wholesale
// by Reset.
//
// Invariants: CompletedSteps is always a subset of Path; CurrentStep is
// an element of Path except transiently while a terminal step completes.
type FlowState struct {
	// CurrentStep is the step the consumer should render.
	CurrentStep StepID `json:"currentStep"`

	// Data holds the validated data collected so far, keyed by step.
	Data Data `json:"data"`

	// CompletedSteps marks steps whose data passed validation through
	// Next. Steps invalidated by upstream branch changes are removed in
	// the same update that removes them from Path.
	CompletedSteps map[StepID]bool `json:"completedSteps"`

	// Path is the ordered sequence of steps reachable from the initial
	// step given Data (data-bounded).
	Path []StepID `json:"path"`

	// History is the navigation log: every step the consumer has landed
	// on, in order.
	History []StepID `json:"history"`

	// Status is the lifecycle status of the machine.
	Status Status `json:"status"`
}

// NewState creates the initial state for a flow starting at initial.
func NewState(initial StepID) *FlowState {
	return &FlowState{
		CurrentStep:    initial,
		Data:           Data{},
		CompletedSteps: map[StepID]bool{},
		Path:           []StepID{initial},
		History:        []StepID{initial},
		Status:         StatusIdle,
	}
}

// Clone returns a deep copy of the state's containers. Step data values
// themselves are shared, matching the copy semantics used when a state
// round-trips through serialization.
func (s *FlowState) Clone() *FlowState {
	if s == nil {
		return nil
	}
	next := *s
	next.Data = s.Data.Clone()
	next.CompletedSteps = make(map[StepID]bool, len(s.CompletedSteps))
	for k, v := range s.CompletedSteps {
		next.CompletedSteps[k] = v
	}
	next.Path = append([]StepID(nil), s.Path...)
	next.History = append([]StepID(nil), s.History...)
	return &next
}

// IsComplete reports whether the flow has finished.
func (s *FlowState) IsComplete() bool {
	return s.Status == StatusComplete
}
