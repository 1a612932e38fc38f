package saga

import (
	"context"

	"github.com/google/uuid"
	"github.com/tidwall/btree"
	"go.uber.org/zap"
)

// SagaID represents a unique identifier for a saga.
type SagaID struct {
	UUID uuid.UUID
}

// NewSagaID generates a fresh SagaID.
func NewSagaID() SagaID {
	return SagaID{UUID: uuid.New()}
}

// String returns the string representation of the SagaID.
func (s SagaID) String() string {
	return s.UUID.String()
}

// SagaName represents a human-readable name for a particular saga.
type SagaName string

// String returns the string representation of the SagaName.
func (s SagaName) String() string {
	return string(s)
}

// SagaStatus describes where a saga run currently is.
type SagaStatus string

const (
	// StatusPending means the saga has been built but not executed.
	StatusPending SagaStatus = "pending"
	// StatusRunning means the forward phase is in progress.
	StatusRunning SagaStatus = "running"
	// StatusCompensating means a step failed and previously-completed
	// steps are being unwound in reverse order.
	StatusCompensating SagaStatus = "compensating"
	// StatusCompleted is the terminal success state.
	StatusCompleted SagaStatus = "completed"
	// StatusFailed is the terminal failure state, reached after all
	// compensation attempts finish.
	StatusFailed SagaStatus = "failed"
)

// Saga owns an ordered sequence of steps. Insertion order is execution
// order, and the reverse of it is compensation order; the sequence's
// length is fixed once execution begins.
//
// A Saga holds no state that spans runs, so independent instances
// never interfere with each other. A single instance is not safe for
// concurrent re-entrant execution: step results and compensation
// arguments are overwritten per run.
type Saga struct {
	id      SagaID
	name    SagaName
	steps   []*Step
	status  SagaStatus
	outputs *btree.Map[StepName, any]
	log     *ExecutionLog
	logger  *zap.Logger
}

// SagaOption configures a Saga at construction time.
type SagaOption func(*Saga)

// WithLogger attaches a structured logger to the saga. Without it the
// saga is silent.
func WithLogger(logger *zap.Logger) SagaOption {
	return func(s *Saga) {
		s.logger = logger
	}
}

// NewSaga constructs a saga over the given steps. Most callers
// assemble sagas with a Builder instead of calling this directly.
func NewSaga(name SagaName, steps []*Step, opts ...SagaOption) *Saga {
	s := &Saga{
		id:      NewSagaID(),
		name:    name,
		steps:   steps,
		status:  StatusPending,
		outputs: btree.NewMap[StepName, any](10),
		logger:  zap.NewNop(),
	}
	s.log = NewExecutionLog(s.id)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the saga's unique identifier.
func (s *Saga) ID() SagaID {
	return s.id
}

// Name returns the saga's name.
func (s *Saga) Name() SagaName {
	return s.name
}

// Status returns where the most recent run currently is.
func (s *Saga) Status() SagaStatus {
	return s.status
}

// Steps returns the saga's steps in execution order.
func (s *Saga) Steps() []*Step {
	return append([]*Step(nil), s.steps...)
}

// Log returns the execution log for the most recent run.
func (s *Saga) Log() *ExecutionLog {
	return s.log
}

// Lookup retrieves the output of a previously-successful step by name.
func (s *Saga) Lookup(name StepName) (any, bool) {
	return s.outputs.Get(name)
}

// Execute runs every step in insertion order, threading each step's
// normalized output into the next step's inputs. If an action fails,
// the already-completed steps are unwound in reverse order and the
// returned error is a *SagaError aggregating the original failure and
// any compensation failures. A nil return means every step completed
// with its result populated.
//
// Steps execute strictly sequentially: step i+1 never starts before
// step i's action returns, and no two actions or compensations of the
// same run are ever in flight at once. The engine imposes no timeout;
// callers wanting one must wrap their own callables.
func (s *Saga) Execute(ctx context.Context) error {
	s.reset()
	s.status = StatusRunning

	var inputs []any
	for index, step := range s.steps {
		s.record(index, EventStepStarted)
		s.logger.Info("executing step",
			zap.Stringer("saga_id", s.id),
			zap.Stringer("saga", s.name),
			zap.Int("step_index", index),
			zap.Stringer("step", step.name),
		)

		result, err := step.act(ctx, inputs)
		if err != nil {
			trace := captureTrace(0)
			s.record(index, EventStepFailed)
			s.logger.Error("step failed, unwinding completed steps",
				zap.Stringer("saga_id", s.id),
				zap.Stringer("saga", s.name),
				zap.Int("step_index", index),
				zap.Stringer("step", step.name),
				zap.Error(err),
			)

			s.status = StatusCompensating
			compensationErrors := s.runCompensations(ctx, index)
			s.status = StatusFailed

			return &SagaError{
				SagaName:           s.name,
				FailedStepIndex:    index,
				Cause:              err,
				Trace:              trace,
				CompensationErrors: compensationErrors,
			}
		}

		inputs = normalizeOutput(result)
		step.recordSuccess(result, inputs)
		s.outputs.Set(step.name, result)
		s.record(index, EventStepSucceeded)
	}

	s.status = StatusCompleted
	return nil
}

// runCompensations walks the steps before failedIndex in reverse
// insertion order, attempting every compensation. A failing
// compensation is recorded under its step index and never stops the
// walk; steps that compensate cleanly leave no entry. The failed
// step's own compensation is never attempted, since its action never
// completed.
func (s *Saga) runCompensations(ctx context.Context, failedIndex int) map[int]*CompensationError {
	failures := make(map[int]*CompensationError)

	for index := failedIndex - 1; index >= 0; index-- {
		step := s.steps[index]
		s.record(index, EventCompensateStarted)
		s.logger.Info("compensating step",
			zap.Stringer("saga_id", s.id),
			zap.Int("step_index", index),
			zap.Stringer("step", step.name),
		)

		if err := step.compensate(ctx); err != nil {
			s.record(index, EventCompensateFailed)
			s.logger.Error("compensation failed, continuing unwind",
				zap.Stringer("saga_id", s.id),
				zap.Int("step_index", index),
				zap.Stringer("step", step.name),
				zap.Error(err),
			)
			failures[index] = &CompensationError{
				Cause: err,
				Trace: captureTrace(0),
			}
			continue
		}

		s.record(index, EventCompensateSucceeded)
	}

	return failures
}

// record appends an event to the execution log. A rejected event means
// the engine violated its own state machine, which is worth a warning
// but never worth aborting the run over.
func (s *Saga) record(stepIndex int, eventType EventType) {
	event := &Event{SagaID: s.id, StepIndex: stepIndex, Type: eventType}
	if err := s.log.Record(event); err != nil {
		s.logger.Warn("execution log rejected event",
			zap.Stringer("saga_id", s.id),
			zap.Stringer("event", event),
			zap.Error(err),
		)
	}
}

// reset clears per-run state so the same step sequence can run again.
func (s *Saga) reset() {
	for _, step := range s.steps {
		step.reset()
	}
	s.outputs = btree.NewMap[StepName, any](10)
	s.log = NewExecutionLog(s.id)
}
