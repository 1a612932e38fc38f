package saga

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureTraceRecordsCaller(t *testing.T) {
	trace := captureTrace(0)

	frames := trace.Frames()
	require.NotEmpty(t, frames)
	assert.Contains(t, frames[0].Function, "TestCaptureTraceRecordsCaller",
		"the innermost frame is the caller of captureTrace")
	assert.True(t, strings.HasSuffix(frames[0].File, "trace_test.go"))
	assert.Greater(t, frames[0].Line, 0)
}

func TestTraceString(t *testing.T) {
	trace := captureTrace(0)

	rendered := trace.String()
	assert.Contains(t, rendered, "TestTraceString")
	assert.Contains(t, rendered, "trace_test.go:")
}

func TestTraceFramesReturnsCopy(t *testing.T) {
	trace := captureTrace(0)

	frames := trace.Frames()
	require.NotEmpty(t, frames)
	frames[0].Function = "mutated"
	assert.NotEqual(t, "mutated", trace.Frames()[0].Function)
}

func TestEmptyTrace(t *testing.T) {
	trace := &Trace{}
	assert.Empty(t, trace.Frames())
	assert.Equal(t, "", trace.String())
}
