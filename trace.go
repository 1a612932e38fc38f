package saga

import (
	"fmt"
	"runtime"
	"strings"
)

// maxTraceDepth bounds how many frames a diagnostic trace captures.
const maxTraceDepth = 32

// Frame is a single call site in a diagnostic trace.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Trace is a captured call-stack snapshot. It is kept as structured
// frames so the failure report can render it without re-parsing text.
// Traces are for reporting only; the engine never makes decisions
// based on them.
type Trace struct {
	frames []Frame
}

// captureTrace records the calling stack, skipping skip frames above
// captureTrace itself.
func captureTrace(skip int) *Trace {
	pcs := make([]uintptr, maxTraceDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return &Trace{}
	}

	callers := runtime.CallersFrames(pcs[:n])
	t := &Trace{frames: make([]Frame, 0, n)}
	for {
		frame, more := callers.Next()
		if frame.Function != "" {
			t.frames = append(t.frames, Frame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})
		}
		if !more {
			break
		}
	}
	return t
}

// Frames returns a copy of the captured frames, innermost first.
func (t *Trace) Frames() []Frame {
	return append([]Frame(nil), t.frames...)
}

// String renders the trace with one frame per pair of lines, in the
// layout used by runtime stack dumps.
func (t *Trace) String() string {
	var sb strings.Builder
	for i, frame := range t.frames {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s\n\t%s:%d", frame.Function, frame.File, frame.Line)
	}
	return sb.String()
}
