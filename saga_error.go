package saga

import (
	"fmt"
	"sort"
	"strings"
)

// CompensationError records the failure of a single compensation
// during the unwind walk: the opaque cause plus the diagnostic trace
// captured where it surfaced.
type CompensationError struct {
	Cause error
	Trace *Trace
}

// SagaError is the one error type a failed run surfaces. It carries
// the index of the step whose action failed, the original cause with
// its diagnostic trace, and one entry per compensation that itself
// failed while unwinding. It is built exactly once, after every
// applicable compensation has been attempted, and is never mutated
// afterwards; the engine does not retain it.
type SagaError struct {
	SagaName           SagaName
	FailedStepIndex    int
	Cause              error
	Trace              *Trace
	CompensationErrors map[int]*CompensationError
}

// Unwrap returns the original action error so callers can use
// errors.Is and errors.As against the underlying cause.
func (e *SagaError) Unwrap() error {
	return e.Cause
}

// Error renders the full failure report: a fixed header, the failed
// step detail with its trace indented under a marker, and, only when
// some compensation failed, one block per failed compensation in
// ascending step order. The rendering reads immutable state only;
// calling it repeatedly yields identical output, and nothing in the
// engine consults it for control flow.
func (e *SagaError) Error() string {
	header := "A critical error occurred during saga execution, leading to transaction failure and compensation attempts."

	detail := fmt.Sprintf(
		"Transaction failed at step index %d: an unexpected %T occurred, triggering the compensation process.\n%s",
		e.FailedStepIndex, e.Cause, indentTrace(e.Trace, 2),
	)

	parts := []string{header, detail}

	if len(e.CompensationErrors) > 0 {
		indices := make([]int, 0, len(e.CompensationErrors))
		for index := range e.CompensationErrors {
			indices = append(indices, index)
		}
		sort.Ints(indices)

		var sb strings.Builder
		sb.WriteString("Compensations encountered errors:")
		for _, index := range indices {
			ce := e.CompensationErrors[index]
			fmt.Fprintf(&sb,
				"\n  - (step index %d): compensation failed due to a %T: %v\n%s",
				index, ce.Cause, ce.Cause, indentTrace(ce.Trace, 6),
			)
		}
		parts = append(parts, sb.String())
	}

	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// indentTrace prefixes each line of the trace with padding and a
// vertical marker so it reads as a nested block under its detail line.
func indentTrace(t *Trace, indent int) string {
	if t == nil {
		return ""
	}
	pad := strings.Repeat(" ", indent)
	lines := strings.Split(t.String(), "\n")
	for i, line := range lines {
		lines[i] = pad + "╎" + line
	}
	return strings.Join(lines, "\n")
}
