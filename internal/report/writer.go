package report

import (
	"io"

	"github.com/a11yscan/a11yscan/internal/model"
)

// Writer defines the interface for report output.
// Implementations render one audit outcome in a specific format.
//
// Design decision: We use an interface so the same call sites can
// write to files, stdout, or network connections in any format.
type Writer interface {
	// Write renders the outcome to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(outcome *model.AuditOutcome) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// MultiWriter writes the same outcome through several report writers.
// Used when a run should be printed to the terminal and saved to a
// file in a different format at the same time.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a MultiWriter for the given writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the outcome through every writer, stopping at the
// first error. Returns the total number of bytes written.
func (m *MultiWriter) Write(outcome *model.AuditOutcome) (int, error) {
	total := 0
	for _, w := range m.writers {
		n, err := w.Write(outcome)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// statusText returns the one-line status for an outcome.
func statusText(outcome *model.AuditOutcome) string {
	switch outcome.Kind {
	case model.OutcomeOK:
		return "Complete"
	case model.OutcomeProcessFailure:
		return "FAILED - auditor exited non-zero"
	case model.OutcomeTimeout:
		return "TIMED OUT after " + outcome.Budget.String()
	case model.OutcomeInvocationError:
		return "ERROR - " + outcome.Message
	default:
		return "UNKNOWN"
	}
}
