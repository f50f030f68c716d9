package model

import (
	"errors"
	"fmt"
	"strings"
)

// IssueType classifies a reported accessibility issue by severity.
//
// Design decision: The auditor reports types as the strings "error",
// "warning", and "notice". We keep an iota enum internally for cheap
// comparisons and filtering, and convert at the JSON boundary.
type IssueType int

const (
	// IssueError is a definite accessibility violation.
	IssueError IssueType = iota

	// IssueWarning is a probable violation that needs human review.
	IssueWarning

	// IssueNotice is informational; it flags elements worth checking
	// manually but does not indicate a violation by itself.
	IssueNotice
)

// String returns the auditor's wire spelling for the issue type.
func (t IssueType) String() string {
	switch t {
	case IssueError:
		return "error"
	case IssueWarning:
		return "warning"
	case IssueNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// ErrUnknownIssueType is returned when a string does not name an issue type.
var ErrUnknownIssueType = errors.New("unknown issue type")

// ParseIssueType converts the auditor's wire spelling into an IssueType.
func ParseIssueType(s string) (IssueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return IssueError, nil
	case "warning":
		return IssueWarning, nil
	case "notice":
		return IssueNotice, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownIssueType, s)
	}
}

// MarshalJSON encodes the issue type as its wire spelling.
func (t IssueType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes the auditor's wire spelling.
func (t *IssueType) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseIssueType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Issue is a single reported accessibility violation or notice.
type Issue struct {
	// Type is the severity classification.
	Type IssueType `json:"type"`

	// Code is the rule identifier, e.g. a WCAG technique or axe rule id.
	Code string `json:"code"`

	// Message is the human-readable description of the issue.
	Message string `json:"message"`

	// Selector is the CSS selector of the offending element.
	Selector string `json:"selector"`

	// Context is the HTML snippet around the offending element.
	// May be empty; treat as untrusted markup when rendering.
	Context string `json:"context,omitempty"`
}

// IssueSummary aggregates the issues of one audit run.
//
// Invariant: TotalIssues == Errors + Warnings + Notices == len(Issues).
// Recount restores the invariant after Issues is modified; Validate
// checks it. Payloads from the auditor that violate the invariant are
// rejected at the normalizer boundary.
type IssueSummary struct {
	// TotalIssues is the total number of reported issues.
	TotalIssues int `json:"totalIssues"` //nolint:tagliatelle // auditor wire format

	// Errors is the number of issues with type "error".
	Errors int `json:"errors"`

	// Warnings is the number of issues with type "warning".
	Warnings int `json:"warnings"`

	// Notices is the number of issues with type "notice".
	Notices int `json:"notices"`

	// Issues is the ordered list of reported issues.
	Issues []Issue `json:"issues"`
}

// ErrInconsistentSummary is returned by Validate when the count fields
// disagree with each other or with the issue list.
var ErrInconsistentSummary = errors.New("inconsistent issue summary")

// Validate checks the summary invariant.
func (s IssueSummary) Validate() error {
	if s.TotalIssues != s.Errors+s.Warnings+s.Notices {
		return fmt.Errorf("%w: total %d != errors %d + warnings %d + notices %d",
			ErrInconsistentSummary, s.TotalIssues, s.Errors, s.Warnings, s.Notices)
	}
	if s.TotalIssues != len(s.Issues) {
		return fmt.Errorf("%w: total %d != %d issues",
			ErrInconsistentSummary, s.TotalIssues, len(s.Issues))
	}
	return nil
}

// Recount recomputes all count fields from the issue list.
func (s *IssueSummary) Recount() {
	s.Errors, s.Warnings, s.Notices = 0, 0, 0
	for _, issue := range s.Issues {
		switch issue.Type {
		case IssueError:
			s.Errors++
		case IssueWarning:
			s.Warnings++
		case IssueNotice:
			s.Notices++
		}
	}
	s.TotalIssues = len(s.Issues)
}

// ByType returns the issues of the given type, preserving order.
func (s IssueSummary) ByType(t IssueType) []Issue {
	var out []Issue
	for _, issue := range s.Issues {
		if issue.Type == t {
			out = append(out, issue)
		}
	}
	return out
}

// HasIssues reports whether any issue was found.
func (s IssueSummary) HasIssues() bool {
	return len(s.Issues) > 0
}

// NewIssueSummary builds a summary from a list of issues with counts
// already consistent.
func NewIssueSummary(issues []Issue) IssueSummary {
	s := IssueSummary{Issues: issues}
	s.Recount()
	return s
}
