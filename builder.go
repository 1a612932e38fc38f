package saga

import (
	"errors"
	"fmt"

	"github.com/ostrea/saga/set"
)

// Builder assembles a saga one step at a time.
//
// Callers append a sequence of steps in the order they must run; that
// order is also, reversed, the compensation order. Each Add method
// returns the builder itself so registrations chain fluently. Build
// freezes the sequence into a Saga. Registration errors are deferred
// and surfaced by Build, so a chain never has to be broken to check
// one.
type Builder struct {
	name      SagaName
	steps     []*Step
	stepNames *set.Set[StepName]
	registry  *Registry
	opts      []SagaOption
	err       error
}

// NewBuilder creates a new Builder for a saga with the given name.
// The options are applied to the Saga produced by Build.
func NewBuilder(name SagaName, opts ...SagaOption) *Builder {
	return &Builder{
		name:      name,
		steps:     []*Step{},
		stepNames: set.New[StepName](),
		opts:      opts,
	}
}

// WithRegistry attaches a registry so steps can be added by definition
// name via AddRegistered.
func (b *Builder) WithRegistry(registry *Registry) *Builder {
	b.registry = registry
	return b
}

// AddStep appends a step built from the given action/compensation
// pair. Step names must be unique within a saga so outputs can be
// looked up unambiguously after a run.
func (b *Builder) AddStep(name StepName, action ActionFunc, compensation CompensateFunc, opts ...StepOption) *Builder {
	if b.err != nil {
		return b
	}
	if b.stepNames.Contains(name) {
		b.err = fmt.Errorf("step with name '%s' already exists", name)
		return b
	}

	b.stepNames.Insert(name)
	b.steps = append(b.steps, NewStep(name, action, compensation, opts...))
	return b
}

// AddRegistered appends a step from the builder's registry by
// definition name.
func (b *Builder) AddRegistered(name StepName) *Builder {
	if b.err != nil {
		return b
	}
	if b.registry == nil {
		b.err = errors.New("builder has no registry attached")
		return b
	}

	def, err := b.registry.Get(name)
	if err != nil {
		b.err = fmt.Errorf("add registered step: %w", err)
		return b
	}

	return b.AddStep(def.Name, def.Action, def.Compensation, def.Options...)
}

// Build finalizes the step sequence and returns the Saga.
func (b *Builder) Build() (*Saga, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.steps) == 0 {
		return nil, errors.New("saga has no steps")
	}

	steps := make([]*Step, len(b.steps))
	copy(steps, b.steps)
	return NewSaga(b.name, steps, b.opts...), nil
}
