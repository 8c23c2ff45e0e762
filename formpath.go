package formpath

import (
	"context"
	"log/slog"

	"github.com/nmbl-labs/formpath/internal/logging"
	"github.com/nmbl-labs/formpath/internal/runtime"
	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/persistence"
	"github.com/nmbl-labs/formpath/pkg/ports"
)

// Re-export the core model so consumers rarely need to import pkg/domain.

type (
	StepID         = domain.StepID
	Data           = domain.Data
	Transition     = domain.Transition
	TransitionFunc = domain.TransitionFunc
	StepDefinition = domain.StepDefinition
	FlowDefinition = domain.FlowDefinition
	FlowState      = domain.FlowState
	Status         = domain.Status
	LifecycleHooks = domain.LifecycleHooks
	FormValues     = runtime.FormValues
)

const (
	StatusIdle       = domain.StatusIdle
	StatusValidating = domain.StatusValidating
	StatusSubmitting = domain.StatusSubmitting
	StatusComplete   = domain.StatusComplete
	StatusError      = domain.StatusError
)

// Transition constructors and definition building.

var (
	Goto    = domain.Goto
	End     = domain.End
	Branch  = domain.Branch
	NewFlow = domain.NewFlow
)

// Flow is the high-level entry point: a validated definition, the state
// machine driving it, and optionally a persistence manager.
type Flow struct {
	def     *domain.FlowDefinition
	engine  *runtime.Engine
	manager *persistence.Manager
	logger  *slog.Logger

	hooks       domain.LifecycleHooks
	optimistic  bool
	values      runtime.FormValues
	autoPersist bool

	store        ports.Store
	storeOptions []persistence.Option
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets a structured logger for diagnostics. Silent by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(f *Flow) { f.hooks = hooks }
}

// WithOptimistic enables optimistic navigation on Next.
func WithOptimistic(optimistic bool) Option {
	return func(f *Flow) { f.optimistic = optimistic }
}

// WithFormValues connects externally-owned live form values, used for
// implicit input on Next and for optimistic reverts.
func WithFormValues(values runtime.FormValues) Option {
	return func(f *Flow) { f.values = values }
}

// WithPersistence attaches a storage backend for Hydrate/Persist/Clear.
func WithPersistence(store ports.Store, opts ...persistence.Option) Option {
	return func(f *Flow) {
		f.store = store
		f.storeOptions = opts
	}
}

// WithAutoPersist persists automatically after every successful Next,
// SetData, and Reset. Requires WithPersistence.
func WithAutoPersist(auto bool) Option {
	return func(f *Flow) { f.autoPersist = auto }
}

// New validates the definition and builds a flow positioned at its
// initial step. Structural problems in the definition are returned as
// an *domain.InvalidDefinitionError.
func New(def *domain.FlowDefinition, opts ...Option) (*Flow, error) {
	if err := def.AssertValid(); err != nil {
		return nil, err
	}

	f := &Flow{def: def, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("flow", def.ID)

	f.engine = runtime.NewEngine(def,
		runtime.WithLogger(f.logger),
		runtime.WithHooks(f.hooks),
		runtime.WithOptimistic(f.optimistic),
		runtime.WithFormValues(f.values),
	)

	if f.store != nil {
		managerOpts := append([]persistence.Option{
			persistence.WithLogger(f.logger),
		}, f.storeOptions...)
		f.manager = persistence.NewManager(f.store, def, managerOpts...)
	}

	return f, nil
}

// Definition returns the flow definition.
func (f *Flow) Definition() *domain.FlowDefinition { return f.def }

// State returns a copy of the current state snapshot.
func (f *Flow) State() *domain.FlowState { return f.engine.State() }

// FieldErrors returns the field failures from the last validation.
func (f *Flow) FieldErrors() []error { return f.engine.FieldErrors() }

// IsComplete reports whether the flow has finished.
func (f *Flow) IsComplete() bool { return f.engine.State().IsComplete() }

// Progress reports completed steps against the projected full path.
func (f *Flow) Progress() (completed, total int) { return f.engine.Progress() }

// Next validates the current step and advances. See runtime.Engine.Next
// for the full contract.
func (f *Flow) Next(ctx context.Context, input any) (bool, error) {
	advanced, err := f.engine.Next(ctx, input)
	if err != nil {
		return advanced, err
	}
	if advanced {
		f.persistAfter(ctx, "next")
	}
	return advanced, nil
}

// Back moves to the previous path step. No-op at the first step.
func (f *Flow) Back() bool { return f.engine.Back() }

// GoTo jumps to a completed step, the frontier step, or the first path
// step; anything else is a no-op.
func (f *Flow) GoTo(step domain.StepID) bool { return f.engine.GoTo(step) }

// SetData merges raw values into a step's data without validation,
// recomputing the path and invalidating completed steps that fell off
// it.
func (f *Flow) SetData(step domain.StepID, value any) {
	f.engine.SetData(step, value)
	f.persistAfter(context.Background(), "set_data")
}

// Reset replaces the state with a fresh one, optionally seeded with
// initial data (which never counts as completed).
func (f *Flow) Reset(initialData domain.Data) {
	f.engine.Reset(initialData)
	f.persistAfter(context.Background(), "reset")
}

// Hydrate restores persisted progress into the state machine. It
// reports whether a saved state was found; absence (including expired
// or unmigratable records) is not an error.
func (f *Flow) Hydrate(ctx context.Context) (bool, error) {
	if f.manager == nil {
		return false, nil
	}
	state, err := f.manager.Hydrate(ctx)
	if err != nil {
		return false, err
	}
	if state == nil {
		return false, nil
	}
	f.engine.SetState(state)
	return true, nil
}

// Persist writes the current progress through the persistence envelope.
// No-op without a storage backend.
func (f *Flow) Persist(ctx context.Context) error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Persist(ctx, f.engine.State())
}

// Clear removes the persisted record.
func (f *Flow) Clear(ctx context.Context) error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Clear(ctx)
}

func (f *Flow) persistAfter(ctx context.Context, op string) {
	if !f.autoPersist || f.manager == nil {
		return
	}
	if err := f.manager.Persist(ctx, f.engine.State()); err != nil {
		f.logger.Warn("auto-persist failed", "op", op, "err", err)
	}
}

// Pure helpers, re-exported for consumers that work with definitions
// directly (progress bars, server-side projections).

// CalculatePath computes the data-bounded path for a definition.
func CalculatePath(def *domain.FlowDefinition, data domain.Data) []domain.StepID {
	return runtime.CalculatePath(def, data, logging.NewNop())
}

// CalculateFullPath computes the optimistic full path for a definition.
func CalculateFullPath(def *domain.FlowDefinition, data domain.Data) []domain.StepID {
	return runtime.CalculateFullPath(def, data, logging.NewNop())
}

// ResolveTransition resolves a single transition; empty means terminal.
func ResolveTransition(def *domain.FlowDefinition, current domain.StepID, stepData any, all domain.Data) domain.StepID {
	return runtime.ResolveTransition(def, current, stepData, all)
}

// NextStep is a positional lookup in an already-computed path.
func NextStep(current domain.StepID, path []domain.StepID) domain.StepID {
	return runtime.NextStep(current, path)
}

// PreviousStep is a positional lookup in an already-computed path.
func PreviousStep(current domain.StepID, path []domain.StepID) domain.StepID {
	return runtime.PreviousStep(current, path)
}

// CanNavigateTo reports whether direct navigation to target is allowed.
func CanNavigateTo(target domain.StepID, completed map[domain.StepID]bool, path []domain.StepID) bool {
	return runtime.CanNavigateTo(target, completed, path)
}
