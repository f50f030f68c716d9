package report

import (
	"encoding/json"
	"io"

	"github.com/a11yscan/a11yscan/internal/model"
)

// JSONWriter outputs outcomes as indented JSON for machine consumption.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
}

// jsonReport is the serialized report shape. The outcome's HTML is
// deliberately excluded: annotated documents run to megabytes and
// machine consumers want the structured result, not the markup.
type jsonReport struct {
	Kind     string              `json:"kind"`
	URL      string              `json:"url"`
	Profile  string              `json:"profile"`
	RanAt    string              `json:"ran_at"`
	Elapsed  string              `json:"elapsed"`
	Summary  *model.IssueSummary `json:"summary,omitempty"`
	ExitCode int                 `json:"exit_code,omitempty"`
	Stderr   string              `json:"stderr,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Write renders the outcome as indented JSON.
func (w *JSONWriter) Write(outcome *model.AuditOutcome) (int, error) {
	r := jsonReport{
		Kind:     outcome.Kind.String(),
		URL:      outcome.URL,
		Profile:  outcome.Profile.String(),
		RanAt:    outcome.RanAt.Format("2006-01-02T15:04:05Z07:00"),
		Elapsed:  outcome.Elapsed.String(),
		Summary:  outcome.Summary,
		ExitCode: outcome.ExitCode,
		Stderr:   outcome.Stderr,
		Error:    outcome.ErrorText(),
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')

	return w.output.Write(data)
}
