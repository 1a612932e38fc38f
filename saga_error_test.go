package saga

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type declineError struct {
	code int
}

func (e *declineError) Error() string {
	return "payment declined"
}

func newTestSagaError(withCompensationErrors bool) *SagaError {
	sagaErr := &SagaError{
		SagaName:           "order-fulfillment",
		FailedStepIndex:    2,
		Cause:              &declineError{code: 402},
		Trace:              captureTrace(0),
		CompensationErrors: map[int]*CompensationError{},
	}
	if withCompensationErrors {
		sagaErr.CompensationErrors[0] = &CompensationError{
			Cause: errors.New("cancel endpoint returned 500"),
			Trace: captureTrace(0),
		}
		sagaErr.CompensationErrors[1] = &CompensationError{
			Cause: errors.New("refund rejected"),
			Trace: captureTrace(0),
		}
	}
	return sagaErr
}

func TestSagaErrorRendering(t *testing.T) {
	rendered := newTestSagaError(true).Error()

	assert.True(t, strings.HasPrefix(rendered,
		"A critical error occurred during saga execution, leading to transaction failure and compensation attempts."))
	assert.Contains(t, rendered, "Transaction failed at step index 2")
	assert.Contains(t, rendered, "*saga.declineError", "the detail line names the cause's type")
	assert.Contains(t, rendered, "Compensations encountered errors:")
	assert.Contains(t, rendered, "(step index 0)")
	assert.Contains(t, rendered, "(step index 1)")
	assert.Contains(t, rendered, "cancel endpoint returned 500")
	assert.Contains(t, rendered, "╎", "traces are indented under a visual marker")

	// Failed compensations are listed in ascending step order.
	assert.Less(t,
		strings.Index(rendered, "(step index 0)"),
		strings.Index(rendered, "(step index 1)"),
	)

	// Three parts joined by blank lines, trailing whitespace trimmed.
	assert.Equal(t, rendered, strings.TrimSpace(rendered))
	assert.GreaterOrEqual(t, strings.Count(rendered, "\n\n"), 2)
}

func TestSagaErrorRenderingWithoutCompensationErrors(t *testing.T) {
	rendered := newTestSagaError(false).Error()

	assert.Contains(t, rendered, "Transaction failed at step index 2")
	assert.NotContains(t, rendered, "Compensations encountered errors:",
		"the compensation block appears only when some compensation failed")
}

func TestSagaErrorRenderingIsIdempotent(t *testing.T) {
	sagaErr := newTestSagaError(true)

	first := sagaErr.Error()
	second := sagaErr.Error()
	assert.Equal(t, first, second, "rendering must not mutate failure state")
}

func TestSagaErrorUnwrap(t *testing.T) {
	cause := &declineError{code: 402}
	sagaErr := &SagaError{FailedStepIndex: 0, Cause: cause}

	var decline *declineError
	require.True(t, errors.As(sagaErr, &decline))
	assert.Equal(t, 402, decline.code)
}

func TestIndentTraceNil(t *testing.T) {
	assert.Equal(t, "", indentTrace(nil, 2))
}
