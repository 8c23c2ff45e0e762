package dsl

import (
	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/ports"
)

// Builder accumulates step definitions for a flow.
type Builder struct {
	id      string
	initial domain.StepID
	order   []domain.StepID
	steps   map[domain.StepID]*StepBuilder
}

// New creates a builder for a flow with the given id. The first step
// added becomes the initial step unless Initial overrides it.
func New(id string) *Builder {
	return &Builder{
		id:    id,
		steps: make(map[domain.StepID]*StepBuilder),
	}
}

// Initial overrides the entry step.
func (b *Builder) Initial(id domain.StepID) *Builder {
	b.initial = id
	return b
}

// Add creates a step in the flow. Adding an existing id returns the
// same step builder.
func (b *Builder) Add(id domain.StepID) *StepBuilder {
	if sb, ok := b.steps[id]; ok {
		return sb
	}
	sb := &StepBuilder{id: id, builder: b}
	b.steps[id] = sb
	b.order = append(b.order, id)
	if b.initial == "" {
		b.initial = id
	}
	return sb
}

// Build compiles and validates the definition. Structural problems are
// returned as an *domain.InvalidDefinitionError.
func (b *Builder) Build() (*domain.FlowDefinition, error) {
	steps := make(map[domain.StepID]domain.StepDefinition, len(b.steps))
	for _, id := range b.order {
		steps[id] = b.steps[id].step
	}
	return domain.NewFlow(b.id, b.initial, steps)
}

// StepBuilder provides a fluent API for configuring one step.
type StepBuilder struct {
	id      domain.StepID
	step    domain.StepDefinition
	builder *Builder
}

// Schema sets the validator for this step's data.
func (s *StepBuilder) Schema(v ports.Validator) *StepBuilder {
	s.step.Schema = v
	return s
}

// Go adds an unconditional transition to the target step.
func (s *StepBuilder) Go(target domain.StepID) *StepBuilder {
	s.step.Next = domain.Goto(target)
	return s
}

// Next adds a data-driven transition. The function returns the target
// step id, or empty to end the flow.
func (s *StepBuilder) Next(fn domain.TransitionFunc) *StepBuilder {
	s.step.Next = domain.Branch(fn)
	return s
}

// End marks the step as terminal.
func (s *StepBuilder) End() *StepBuilder {
	s.step.Next = domain.End()
	return s
}

// Add continues building on the parent, so step chains read as one
// expression.
func (s *StepBuilder) Add(id domain.StepID) *StepBuilder {
	return s.builder.Add(id)
}

// Build compiles the parent flow; a convenience for ending a chain.
func (s *StepBuilder) Build() (*domain.FlowDefinition, error) {
	return s.builder.Build()
}
