package saga

import (
	"context"
)

// ActionFunc is the forward, externally-effecting operation of a step.
// It receives the previous step's normalized output as positional
// arguments and returns its own output, which is threaded to the next
// step and retained as this step's compensation arguments. An
// ActionFunc may block internally on its own I/O; the engine always
// calls it synchronously and never inspects whether it could suspend.
type ActionFunc func(ctx context.Context, args ...any) (any, error)

// CompensateFunc semantically undoes the effect of a previously
// successful action. It receives arguments derived from that action's
// output, not from the compensation that ran before it.
type CompensateFunc func(ctx context.Context, args ...any) error

// StepName names a step within a saga.
type StepName string

// String implements the fmt.Stringer interface for StepName.
func (n StepName) String() string {
	return string(n)
}

// Step pairs a forward action with its compensation.
//
// A step's arity is declared when it is constructed rather than
// discovered at runtime: by default the action receives the prior
// step's normalized output and the compensation receives the arguments
// derived from this step's own output. WithNullaryAction and
// WithNullaryCompensation declare that the callable takes no input, in
// which case the engine passes nothing.
//
// The result and compensation arguments are populated together, only
// when the action succeeds. A step whose action has not run, or whose
// action failed, has both unset.
type Step struct {
	name                StepName
	action              ActionFunc
	compensation        CompensateFunc
	nullaryAction       bool
	nullaryCompensation bool

	result           any
	compensationArgs []any
	completed        bool
}

// StepOption configures a Step at construction time.
type StepOption func(*Step)

// WithNullaryAction declares that the step's action takes no input.
// The engine will not pass the previous step's output to it, which
// lets the first step of a saga ignore inputs entirely.
func WithNullaryAction() StepOption {
	return func(s *Step) {
		s.nullaryAction = true
	}
}

// WithNullaryCompensation declares that the step's compensation takes
// no arguments.
func WithNullaryCompensation() StepOption {
	return func(s *Step) {
		s.nullaryCompensation = true
	}
}

// NewStep constructs a step from an action and its compensation.
func NewStep(name StepName, action ActionFunc, compensation CompensateFunc, opts ...StepOption) *Step {
	s := &Step{
		name:         name,
		action:       action,
		compensation: compensation,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NoOpCompensation is a compensation that does nothing. Use it for
// steps whose action has no external effect worth undoing.
func NoOpCompensation(_ context.Context, _ ...any) error {
	return nil
}

// Name returns the step's name.
func (s *Step) Name() StepName {
	return s.name
}

// Result returns the most recent value returned by the action, or nil
// if the action has not yet succeeded in the current run.
func (s *Step) Result() any {
	return s.result
}

// Completed reports whether the action succeeded in the current run.
func (s *Step) Completed() bool {
	return s.completed
}

// CompensationArgs returns the arguments that would be passed to the
// compensation, derived from the action's output. Empty until the
// action succeeds.
func (s *Step) CompensationArgs() []any {
	return append([]any(nil), s.compensationArgs...)
}

// act invokes the action with the supplied inputs, or with no inputs
// if the step was declared nullary. Errors are propagated untranslated;
// wrapping them is the engine's responsibility.
func (s *Step) act(ctx context.Context, inputs []any) (any, error) {
	if s.nullaryAction {
		return s.action(ctx)
	}
	return s.action(ctx, inputs...)
}

// compensate invokes the compensation with the recorded compensation
// arguments, or with none if declared nullary.
func (s *Step) compensate(ctx context.Context) error {
	if s.nullaryCompensation {
		return s.compensation(ctx)
	}
	return s.compensation(ctx, s.compensationArgs...)
}

// recordSuccess stores the action's output and the derived
// compensation arguments. Both fields change together; there is no
// state where one is set without the other.
func (s *Step) recordSuccess(result any, args []any) {
	s.result = result
	s.compensationArgs = args
	s.completed = true
}

// reset clears per-run state so the step sequence can be executed again.
func (s *Step) reset() {
	s.result = nil
	s.compensationArgs = nil
	s.completed = false
}

// normalizeOutput converts an action's output into the positional
// inputs for the next step (and this step's compensation arguments):
// nil yields no inputs, an []any is spread element by element, and any
// other value becomes a single input.
func normalizeOutput(result any) []any {
	switch v := result.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{result}
	}
}
