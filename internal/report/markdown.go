package report

import (
	"io"
	"strconv"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/a11yscan/a11yscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	converter *htmltomarkdown.Converter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		converter: htmltomarkdown.NewConverter(
			htmltomarkdown.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(outcome *model.AuditOutcome) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, outcome)
	w.writeSummary(md, outcome)
	w.writeIssues(md, outcome)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, outcome *model.AuditOutcome) {
	md.H1("Accessibility Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + outcome.URL + "`"},
			{"Device Profile", outcome.Profile.String()},
			{"Run At", outcome.RanAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", outcome.Elapsed.String()},
			{"Status", w.getStatusText(outcome)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on outcome kind.
func (w *MarkdownWriter) getStatusText(outcome *model.AuditOutcome) string {
	switch outcome.Kind {
	case model.OutcomeTimeout:
		return "⚠️ Timed Out after " + outcome.Budget.String()
	case model.OutcomeProcessFailure:
		return "❌ Auditor exited with code " + strconv.Itoa(outcome.ExitCode)
	case model.OutcomeInvocationError:
		return "❌ Error - " + outcome.Message
	default:
		return "✅ Complete"
	}
}

// writeSummary writes the issue count summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, outcome *model.AuditOutcome) {
	if outcome.Summary == nil {
		return
	}

	md.H2("Issue Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Type", "Count"},
		Rows: [][]string{
			{"🔴 Errors", strconv.Itoa(outcome.Summary.Errors)},
			{"🟡 Warnings", strconv.Itoa(outcome.Summary.Warnings)},
			{"🔵 Notices", strconv.Itoa(outcome.Summary.Notices)},
			{"**Total**", "**" + strconv.Itoa(outcome.Summary.TotalIssues) + "**"},
		},
	})
	md.PlainText("")

	if outcome.Summary.HasIssues() {
		w.writePieChart(md, outcome.Summary)
	}

	w.writeAlert(md, outcome.Summary)
}

// writePieChart writes a mermaid pie chart for issue distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.IssueSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Type Distribution"),
		piechart.WithShowData(true),
	)

	if summary.Errors > 0 {
		chart.LabelAndIntValue("Errors", uint64(summary.Errors))
	}
	if summary.Warnings > 0 {
		chart.LabelAndIntValue("Warnings", uint64(summary.Warnings))
	}
	if summary.Notices > 0 {
		chart.LabelAndIntValue("Notices", uint64(summary.Notices))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on issue counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.IssueSummary) {
	switch {
	case summary.Errors > 0:
		md.Cautionf(
			"Accessibility errors detected! %d error(s) violate the selected standards and should be fixed.",
			summary.Errors,
		)
	case summary.Warnings > 0:
		md.Warningf(
			"%d warning(s) detected. These are likely problems that need manual review.",
			summary.Warnings,
		)
	case summary.Notices > 0:
		md.Note("Only notices detected. Review them for potential improvements.")
	default:
		md.Tip("No accessibility issues detected.")
	}
	md.PlainText("")
}

// writeIssues writes all issues grouped by type.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, outcome *model.AuditOutcome) {
	if outcome.Summary == nil {
		return
	}

	md.H2("Issues")
	md.PlainText("")

	if !outcome.Summary.HasIssues() {
		md.PlainText("No issues detected.")
		md.PlainText("")
		return
	}

	types := []struct {
		level  model.IssueType
		header string
	}{
		{model.IssueError, "### 🔴 Errors"},
		{model.IssueWarning, "### 🟡 Warnings"},
		{model.IssueNotice, "### 🔵 Notices"},
	}

	for _, it := range types {
		issues := outcome.Summary.ByType(it.level)
		if len(issues) == 0 {
			continue
		}

		md.PlainText(it.header)
		md.PlainText("")
		w.writeIssuesTable(md, issues)
	}
}

// writeIssuesTable writes a table of issues with details.
func (w *MarkdownWriter) writeIssuesTable(md *markdown.Markdown, issues []model.Issue) {
	headers := []string{"Message", "Code", "Selector"}

	rows := make([][]string, len(issues))
	for i, issue := range issues {
		selector := issue.Selector
		if selector == "" {
			selector = "-"
		}

		rows[i] = []string{
			truncateString(issue.Message, 80),
			"`" + issue.Code + "`",
			truncateString(selector, 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")

	// Collapsible context snippets for issues that carry markup.
	for _, issue := range issues {
		if issue.Context == "" {
			continue
		}
		md.Details(issue.Message, w.contextMarkdown(issue.Context))
	}
	md.PlainText("")
}

// contextMarkdown converts an HTML context snippet to markdown.
// Falls back to the raw snippet if conversion fails.
func (w *MarkdownWriter) contextMarkdown(context string) string {
	converted, err := w.converter.ConvertString(context)
	if err != nil || converted == "" {
		return "`" + context + "`"
	}
	return converted
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by a11yscan*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
