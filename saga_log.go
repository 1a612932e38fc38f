package saga

import (
	"fmt"
	"strings"
	"sync"
)

// EventType defines the kinds of events recorded for a saga step.
type EventType int

const (
	EventStepStarted EventType = iota
	EventStepSucceeded
	EventStepFailed
	EventCompensateStarted
	EventCompensateSucceeded
	EventCompensateFailed
)

// String returns the string representation of the EventType.
func (t EventType) String() string {
	switch t {
	case EventStepStarted:
		return "step_started"
	case EventStepSucceeded:
		return "step_succeeded"
	case EventStepFailed:
		return "step_failed"
	case EventCompensateStarted:
		return "compensate_started"
	case EventCompensateSucceeded:
		return "compensate_succeeded"
	case EventCompensateFailed:
		return "compensate_failed"
	default:
		return fmt.Sprintf("Unknown EventType: %d", int(t))
	}
}

// Event is a single entry in a saga's execution log.
type Event struct {
	SagaID    SagaID
	StepIndex int
	Type      EventType
}

// String implements the fmt.Stringer interface for Event.
func (e *Event) String() string {
	return fmt.Sprintf("S%03d %s", e.StepIndex, e.Type)
}

// stepStatus tracks the per-step progress used to validate that
// recorded events arrive in a legal order.
type stepStatus int

const (
	statusNeverStarted stepStatus = iota
	statusStarted
	statusSucceeded
	statusFailed
	statusCompensateStarted
	statusCompensated
	statusCompensateFailed
)

// next returns the new status for a step after recording the given
// event type.
func (s stepStatus) next(eventType EventType) (stepStatus, error) {
	switch s {
	case statusNeverStarted:
		if eventType == EventStepStarted {
			return statusStarted, nil
		}
	case statusStarted:
		switch eventType {
		case EventStepSucceeded:
			return statusSucceeded, nil
		case EventStepFailed:
			return statusFailed, nil
		}
	case statusSucceeded:
		if eventType == EventCompensateStarted {
			return statusCompensateStarted, nil
		}
	case statusCompensateStarted:
		switch eventType {
		case EventCompensateSucceeded:
			return statusCompensated, nil
		case EventCompensateFailed:
			return statusCompensateFailed, nil
		}
	}

	return statusNeverStarted, fmt.Errorf(
		"illegal event type %s for current step status %d", eventType, int(s),
	)
}

// ExecutionLog is the ordered, in-process event trail for a single
// saga run. It lives and dies with the run: nothing is persisted
// across process restarts. Observers may read it while a run is in
// flight, so access is serialized.
type ExecutionLog struct {
	mu         sync.Mutex
	sagaID     SagaID
	unwinding  bool
	events     []*Event
	stepStatus map[int]stepStatus
}

// NewExecutionLog creates a new, empty ExecutionLog.
func NewExecutionLog(sagaID SagaID) *ExecutionLog {
	return &ExecutionLog{
		sagaID:     sagaID,
		events:     make([]*Event, 0),
		stepStatus: make(map[int]stepStatus),
	}
}

// Record appends an event to the log. Events that would put a step
// into an illegal state are rejected.
func (l *ExecutionLog) Record(event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.SagaID != l.sagaID {
		return fmt.Errorf(
			"event for different saga (%s) than this log records (%s)",
			event.SagaID, l.sagaID,
		)
	}

	current, exists := l.stepStatus[event.StepIndex]
	if !exists {
		current = statusNeverStarted
	}
	next, err := current.next(event.Type)
	if err != nil {
		return err
	}

	switch next {
	case statusFailed, statusCompensateStarted:
		l.unwinding = true
	}

	l.stepStatus[event.StepIndex] = next
	l.events = append(l.events, event)
	return nil
}

// Unwinding returns true once the run has begun compensating.
func (l *ExecutionLog) Unwinding() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.unwinding
}

// Events returns a snapshot of the recorded events in order.
func (l *ExecutionLog) Events() []*Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]*Event(nil), l.events...)
}

// String implements the fmt.Stringer interface for ExecutionLog.
func (l *ExecutionLog) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("EXECUTION LOG:\n")
	sb.WriteString(fmt.Sprintf("saga id:   %s\n", l.sagaID))
	direction := "forward"
	if l.unwinding {
		direction = "unwinding"
	}
	sb.WriteString(fmt.Sprintf("direction: %s\n", direction))
	sb.WriteString(fmt.Sprintf("events (%d total):\n", len(l.events)))
	sb.WriteString("\n")
	for i, event := range l.events {
		sb.WriteString(fmt.Sprintf("%03d %s\n", i+1, event.String()))
	}
	return sb.String()
}
