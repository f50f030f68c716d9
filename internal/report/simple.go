package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/a11yscan/a11yscan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly to
// files or other tools.
type SimpleWriter struct {
	baseWriter

	// verbose enables issue context snippets in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with issue context.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// titleCaser renders issue-type headings ("error" -> "Error").
var titleCaser = cases.Title(language.English)

// Write renders the outcome in human-readable format.
func (w *SimpleWriter) Write(outcome *model.AuditOutcome) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, outcome)
	w.writeSummary(&sb, outcome)
	w.writeIssues(&sb, outcome)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, outcome *model.AuditOutcome) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    ACCESSIBILITY AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("URL:      %s\n", outcome.URL))
	sb.WriteString(fmt.Sprintf("Profile:  %s\n", outcome.Profile))
	sb.WriteString(fmt.Sprintf("Run At:   %s\n", outcome.RanAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:  %s\n", outcome.Elapsed.Round(1e6)))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", statusText(outcome)))
	sb.WriteString("\n")
}

// writeSummary writes the issue count summary.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, outcome *model.AuditOutcome) {
	if outcome.Summary == nil {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ISSUE SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  ERRORS:   %d\n", outcome.Summary.Errors))
	sb.WriteString(fmt.Sprintf("  WARNINGS: %d\n", outcome.Summary.Warnings))
	sb.WriteString(fmt.Sprintf("  NOTICES:  %d\n", outcome.Summary.Notices))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d issues\n", outcome.Summary.TotalIssues))
	sb.WriteString("\n")
}

// writeIssues writes all issues grouped by type, errors first.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, outcome *model.AuditOutcome) {
	if outcome.Summary == nil || !outcome.Summary.HasIssues() {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ISSUES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, issueType := range []model.IssueType{model.IssueError, model.IssueWarning, model.IssueNotice} {
		issues := outcome.Summary.ByType(issueType)
		if len(issues) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("[%s] %s (%d)\n",
			w.typeIndicator(issueType), titleCaser.String(issueType.String()+"s"), len(issues)))

		for _, issue := range issues {
			sb.WriteString(fmt.Sprintf("  * %s\n", issue.Message))
			sb.WriteString(fmt.Sprintf("    Code:     %s\n", issue.Code))
			if issue.Selector != "" {
				sb.WriteString(fmt.Sprintf("    Selector: %s\n", issue.Selector))
			}
			if w.verbose && issue.Context != "" {
				sb.WriteString(fmt.Sprintf("    Context:  %s\n", issue.Context))
			}
		}
		sb.WriteString("\n")
	}
}

// typeIndicator returns a visual indicator for the issue type.
func (w *SimpleWriter) typeIndicator(t model.IssueType) string {
	switch t {
	case model.IssueError:
		return "!!"
	case model.IssueWarning:
		return "!"
	case model.IssueNotice:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by a11yscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
