package model

import "time"

// OutcomeKind tags the variant of an AuditOutcome.
//
// Design decision: Go has no sum types, so the tagged union from the
// audit contract is a struct with a kind tag plus per-variant fields.
// Exactly one variant is populated per run; consumers switch on Kind
// and should treat an unknown kind as a programming error.
type OutcomeKind int

const (
	// OutcomeOK means the auditor completed and produced an annotated
	// document (and, in JSON mode, an issue summary).
	OutcomeOK OutcomeKind = iota

	// OutcomeProcessFailure means the auditor exited non-zero.
	OutcomeProcessFailure

	// OutcomeTimeout means the auditor exceeded the wall-clock budget
	// and was terminated. Partial output is discarded.
	OutcomeTimeout

	// OutcomeInvocationError means the auditor could not be invoked or
	// its output could not be read or parsed: missing executable,
	// spawn failure, unreadable artifact, or a schema-invalid payload.
	OutcomeInvocationError
)

// String returns a human-readable name for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeProcessFailure:
		return "process_failure"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeInvocationError:
		return "invocation_error"
	default:
		return "unknown"
	}
}

// AuditOutcome is the uniform result record every audit invocation is
// mapped into. The presentation layer never branches on process-exit
// mechanics; it branches on Kind and renders HTML, which is non-empty
// on every path (failure variants carry a fallback error block).
type AuditOutcome struct {
	// Kind selects the populated variant.
	Kind OutcomeKind `json:"kind"`

	// URL is the audited page.
	URL string `json:"url"`

	// Profile is the device profile the page was rendered under.
	Profile DeviceProfile `json:"profile"`

	// HTML is renderable markup: the annotated document on success, a
	// minimal styled error block otherwise. Never empty.
	HTML string `json:"-"`

	// Summary holds the issue summary. Only populated for OutcomeOK in
	// the JSON integration mode; the file mode reports no structured
	// summary.
	Summary *IssueSummary `json:"summary,omitempty"`

	// ExitCode is the auditor's exit code. Only meaningful for
	// OutcomeProcessFailure.
	ExitCode int `json:"exit_code,omitempty"`

	// Stderr is the captured diagnostic stream. Only meaningful for
	// OutcomeProcessFailure.
	Stderr string `json:"stderr,omitempty"`

	// Budget is the wall-clock budget that was exceeded. Only
	// meaningful for OutcomeTimeout.
	Budget time.Duration `json:"budget,omitempty"`

	// Message describes an invocation error. Only meaningful for
	// OutcomeInvocationError.
	Message string `json:"message,omitempty"`

	// Elapsed is the wall-clock duration of the invocation.
	Elapsed time.Duration `json:"elapsed"`

	// RanAt is when the invocation started.
	RanAt time.Time `json:"ran_at"`
}

// OK reports whether the outcome is the success variant.
func (o AuditOutcome) OK() bool {
	return o.Kind == OutcomeOK
}

// ErrorText returns the user-facing failure description for the
// populated variant, or "" for OutcomeOK.
func (o AuditOutcome) ErrorText() string {
	switch o.Kind {
	case OutcomeProcessFailure:
		return o.Stderr
	case OutcomeTimeout:
		return "request timed out after " + o.Budget.String()
	case OutcomeInvocationError:
		return o.Message
	default:
		return ""
	}
}
