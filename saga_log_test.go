package saga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionLogRecordsLegalSequence(t *testing.T) {
	id := NewSagaID()
	log := NewExecutionLog(id)

	sequence := []EventType{
		EventStepStarted,
		EventStepSucceeded,
		EventCompensateStarted,
		EventCompensateSucceeded,
	}
	for _, eventType := range sequence {
		require.NoError(t, log.Record(&Event{SagaID: id, StepIndex: 0, Type: eventType}))
	}

	events := log.Events()
	require.Len(t, events, 4)
	for i, eventType := range sequence {
		assert.Equal(t, eventType, events[i].Type)
	}
}

func TestExecutionLogRejectsIllegalTransition(t *testing.T) {
	id := NewSagaID()
	log := NewExecutionLog(id)

	err := log.Record(&Event{SagaID: id, StepIndex: 0, Type: EventStepSucceeded})
	require.Error(t, err, "a step cannot succeed before it started")
	assert.Contains(t, err.Error(), "illegal event type")
	assert.Empty(t, log.Events(), "rejected events are not appended")

	require.NoError(t, log.Record(&Event{SagaID: id, StepIndex: 0, Type: EventStepStarted}))
	require.NoError(t, log.Record(&Event{SagaID: id, StepIndex: 0, Type: EventStepFailed}))
	err = log.Record(&Event{SagaID: id, StepIndex: 0, Type: EventCompensateStarted})
	assert.Error(t, err, "a failed step is never compensated")
}

func TestExecutionLogRejectsForeignSaga(t *testing.T) {
	log := NewExecutionLog(NewSagaID())

	err := log.Record(&Event{SagaID: NewSagaID(), StepIndex: 0, Type: EventStepStarted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different saga")
}

func TestExecutionLogUnwinding(t *testing.T) {
	id := NewSagaID()
	log := NewExecutionLog(id)

	require.NoError(t, log.Record(&Event{SagaID: id, StepIndex: 0, Type: EventStepStarted}))
	assert.False(t, log.Unwinding())

	require.NoError(t, log.Record(&Event{SagaID: id, StepIndex: 0, Type: EventStepFailed}))
	assert.True(t, log.Unwinding())
}

func TestExecutionLogString(t *testing.T) {
	id := NewSagaID()
	log := NewExecutionLog(id)
	require.NoError(t, log.Record(&Event{SagaID: id, StepIndex: 0, Type: EventStepStarted}))

	rendered := log.String()
	assert.Contains(t, rendered, "EXECUTION LOG:")
	assert.Contains(t, rendered, id.String())
	assert.Contains(t, rendered, "S000 step_started")
	assert.Contains(t, rendered, "direction: forward")
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "step_started", EventStepStarted.String())
	assert.Equal(t, "compensate_failed", EventCompensateFailed.String())
	assert.Contains(t, EventType(99).String(), "Unknown EventType")
}
