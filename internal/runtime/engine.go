package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nmbl-labs/formpath/internal/logging"
	"github.com/nmbl-labs/formpath/pkg/domain"
)

// FormValues is the externally-owned live form state. The engine reads
// the current step's values when Next is called without explicit input,
// and restores them when an optimistic navigation is reverted.
type FormValues interface {
	Get(step domain.StepID) any
	Set(step domain.StepID, values any)
}

// Engine is the flow state machine. Every operation reads one atomic
// state snapshot at entry and commits one atomic snapshot at exit; the
// internal mutex serializes concurrent calls.
type Engine struct {
	def        *domain.FlowDefinition
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	optimistic bool
	values     FormValues

	mu          sync.Mutex
	state       *domain.FlowState
	fieldErrors []error
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger for diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithOptimistic enables optimistic navigation: Next moves forward
// before validation completes and reverts fully on failure.
func WithOptimistic(optimistic bool) EngineOption {
	return func(e *Engine) {
		e.optimistic = optimistic
	}
}

// WithFormValues connects the externally-owned form values.
func WithFormValues(values FormValues) EngineOption {
	return func(e *Engine) {
		e.values = values
	}
}

// NewEngine creates a state machine over a validated definition,
// positioned at the initial step.
func NewEngine(def *domain.FlowDefinition, opts ...EngineOption) *Engine {
	e := &Engine{
		def:    def,
		logger: logging.NewNop(),
		state:  domain.NewState(def.Initial),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Definition returns the flow definition backing this engine.
func (e *Engine) Definition() *domain.FlowDefinition { return e.def }

// State returns a copy of the current state snapshot.
func (e *Engine) State() *domain.FlowState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// SetState replaces the whole state, e.g. with a hydrated snapshot.
func (e *Engine) SetState(state *domain.FlowState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state.Clone()
	e.fieldErrors = nil
}

// FieldErrors returns the field-level failures from the last validation,
// or nil after a successful operation.
func (e *Engine) FieldErrors() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]error(nil), e.fieldErrors...)
}

// Next validates the current step's input and advances the flow.
//
// On validation failure it returns false with status error, leaving the
// rest of the state untouched (and reverting an optimistic move in
// full, including the externally-owned form values). On success it
// merges the validated data, recomputes the path, drops completed steps
// that fell off the path, marks the current step completed, and either
// advances, or completes the flow when the transition is terminal.
//
// The returned error is operational only (context cancellation, a
// failing remote check inside a custom validator); flow exceptions are
// routed to the OnError hook and swallowed, per the graceful-degradation
// contract.
func (e *Engine) Next(ctx context.Context, input any) (advanced bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Status == domain.StatusComplete {
		return false, nil
	}

	current := e.state.CurrentStep
	step, ok := e.def.Step(current)
	if !ok {
		e.raise(ctx, &domain.FlowError{Step: current, Err: domain.ErrStepNotFound})
		e.state.Status = domain.StatusError
		return false, nil
	}

	if input == nil && e.values != nil {
		input = e.values.Get(current)
	}

	snapshot := e.state.Clone()
	var valuesBackup any
	if e.optimistic && e.values != nil {
		valuesBackup = e.values.Get(current)
	}

	// Panics from user-supplied transition functions or validator
	// refinements are flow exceptions: revert everything, notify, and
	// leave the flow usable.
	defer func() {
		if r := recover(); r != nil {
			e.state = snapshot
			e.restoreValues(current, valuesBackup)
			e.state.Status = domain.StatusError
			e.raise(ctx, &domain.FlowError{Step: current, Err: fmt.Errorf("panic: %v", r)})
			advanced, err = false, nil
		}
	}()

	if e.optimistic {
		e.advanceOptimistically(current, input)
	}

	result, err := step.Schema.SafeParse(ctx, input)
	if err != nil {
		e.state = snapshot
		e.restoreValues(current, valuesBackup)
		var flowErr *domain.FlowError
		if errors.As(err, &flowErr) {
			e.state.Status = domain.StatusError
			e.raise(ctx, flowErr)
			return false, nil
		}
		return false, err
	}
	if !result.Success {
		e.state = snapshot
		e.restoreValues(current, valuesBackup)
		e.state.Status = domain.StatusError
		e.fieldErrors = result.Errors
		return false, nil
	}

	e.fieldErrors = nil

	// Commit from the pre-navigation snapshot so the optimistic move
	// never leaks into the canonical update.
	next := snapshot.Clone()
	next.Data[current] = result.Data
	next.Path = CalculatePath(e.def, next.Data, e.logger)
	completed := make(map[domain.StepID]bool, len(snapshot.CompletedSteps)+1)
	for id := range snapshot.CompletedSteps {
		if containsStep(next.Path, id) {
			completed[id] = true
		}
	}
	completed[current] = true
	next.CompletedSteps = completed

	e.fireStepComplete(ctx, current, result.Data)

	target := NextStep(current, next.Path)
	if target == "" {
		// Terminal: the current step stays current while the flow
		// finishes.
		next.Status = domain.StatusSubmitting
		e.state = next
		e.fireFlowComplete(ctx, next.Data)
		e.state.Status = domain.StatusComplete
		return true, nil
	}

	next.CurrentStep = target
	next.History = append(next.History, target)
	next.Status = domain.StatusIdle
	e.state = next
	return true, nil
}

// Back moves to the previous step in the path. No-op at the first step.
func (e *Engine) Back() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := PreviousStep(e.state.CurrentStep, e.state.Path)
	if prev == "" {
		return false
	}
	e.state.CurrentStep = prev
	e.state.History = append(e.state.History, prev)
	e.state.Status = domain.StatusIdle
	e.fieldErrors = nil
	return true
}

// GoTo jumps to a step when the navigation guard allows it. A rejected
// target is a no-op, not an error.
func (e *Engine) GoTo(target domain.StepID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !CanNavigateTo(target, e.state.CompletedSteps, e.state.Path) {
		return false
	}
	if target == e.state.CurrentStep {
		return true
	}
	e.state.CurrentStep = target
	e.state.History = append(e.state.History, target)
	e.state.Status = domain.StatusIdle
	e.fieldErrors = nil
	return true
}

// SetData merges raw values into a step's data directly, bypassing
// validation, then recomputes the path and applies the same
// completed-step invalidation as Next. Used by branch-preview UIs; the
// current step never moves. Undeclared steps are dropped with a warning
// so Data stays keyed by steps a path walk can reach.
func (e *Engine) SetData(step domain.StepID, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.def.Step(step); !ok {
		e.logger.Warn("SetData on undeclared step", "flow", e.def.ID, "step", step)
		return
	}

	prev := e.state
	defer func() {
		if r := recover(); r != nil {
			e.state = prev
			e.raise(context.Background(), &domain.FlowError{Step: step, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	next := e.state.Clone()
	next.Data[step] = mergeStepData(next.Data[step], value)
	next.Path = CalculatePath(e.def, next.Data, e.logger)
	completed := make(map[domain.StepID]bool, len(next.CompletedSteps))
	for id := range next.CompletedSteps {
		if containsStep(next.Path, id) {
			completed[id] = true
		}
	}
	next.CompletedSteps = completed
	e.state = next
}

// Reset replaces the state wholesale. When initialData is given, the
// path is recomputed from it, but no step counts as completed: only
// steps that pass through Next earn completion.
func (e *Engine) Reset(initialData domain.Data) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := domain.NewState(e.def.Initial)
	if len(initialData) > 0 {
		state.Data = initialData.Clone()
		state.Path = CalculatePath(e.def, state.Data, e.logger)
	}
	e.state = state
	e.fieldErrors = nil
}

// Progress reports completed steps against the projected full path.
func (e *Engine) Progress() (completed, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	full := CalculateFullPath(e.def, e.state.Data, e.logger)
	return len(e.state.CompletedSteps), len(full)
}

// advanceOptimistically moves the current step forward using a
// provisional merge, so the UI can render the next step while
// validation runs. Caller holds the mutex and keeps a snapshot.
func (e *Engine) advanceOptimistically(current domain.StepID, input any) {
	provisional := e.state.Data.Clone()
	provisional[current] = input
	path := CalculatePath(e.def, provisional, e.logger)
	if target := NextStep(current, path); target != "" {
		e.state.CurrentStep = target
		e.state.History = append(e.state.History, target)
	}
	e.state.Status = domain.StatusValidating
}

func (e *Engine) restoreValues(step domain.StepID, backup any) {
	if e.optimistic && e.values != nil {
		e.values.Set(step, backup)
	}
}

// raise routes a flow exception to the OnError hook, or logs it when no
// hook is registered.
func (e *Engine) raise(ctx context.Context, err error) {
	if e.hooks.OnError != nil {
		e.hooks.OnError(ctx, err)
		return
	}
	e.logger.Error("flow exception", "flow", e.def.ID, "err", err)
}

func (e *Engine) fireStepComplete(ctx context.Context, step domain.StepID, data any) {
	if e.hooks.OnStepComplete == nil {
		return
	}
	defer e.recoverHook(ctx, step)
	e.hooks.OnStepComplete(ctx, &domain.StepEvent{Step: step, Data: data})
}

func (e *Engine) fireFlowComplete(ctx context.Context, data domain.Data) {
	if e.hooks.OnFlowComplete == nil {
		return
	}
	defer e.recoverHook(ctx, e.state.CurrentStep)
	e.hooks.OnFlowComplete(ctx, &domain.FlowEvent{FlowID: e.def.ID, Data: data})
}

// recoverHook converts a panicking hook into a flow exception, so a
// consumer bug cannot corrupt the committed state.
func (e *Engine) recoverHook(ctx context.Context, step domain.StepID) {
	if r := recover(); r != nil {
		e.raise(ctx, &domain.FlowError{Step: step, Err: fmt.Errorf("lifecycle hook panic: %v", r)})
	}
}

func containsStep(path []domain.StepID, id domain.StepID) bool {
	for _, p := range path {
		if p == id {
			return true
		}
	}
	return false
}

// mergeStepData shallow-merges maps and replaces everything else.
func mergeStepData(existing, value any) any {
	prev, prevOK := existing.(map[string]any)
	next, nextOK := value.(map[string]any)
	if !prevOK || !nextOK {
		return value
	}
	merged := make(map[string]any, len(prev)+len(next))
	for k, v := range prev {
		merged[k] = v
	}
	for k, v := range next {
		merged[k] = v
	}
	return merged
}
