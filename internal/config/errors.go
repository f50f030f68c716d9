package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to
// use errors.Is() for programmatic error handling while still
// providing human-readable messages.
var (
	// ErrNoTarget is returned when no target URL is specified.
	ErrNoTarget = errors.New("no target specified: provide one or more URLs")

	// ErrNoStandards is returned when no testing standard is selected.
	// An audit must never be dispatched without at least one standard.
	ErrNoStandards = errors.New("no testing standard selected: choose at least one of wcag2a, wcag2aa, best-practice, aria")

	// ErrInvalidBudget is returned when the auditor budget is not positive.
	ErrInvalidBudget = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrNoScript is returned when no auditor script path is configured.
	ErrNoScript = errors.New("no auditor script configured")

	// ErrInvalidMode is returned when the integration mode is neither
	// "file" nor "json".
	ErrInvalidMode = errors.New("invalid auditor mode: must be file or json")

	// ErrInvalidDevice is returned when the device selection is none of
	// "desktop", "mobile", or "both".
	ErrInvalidDevice = errors.New("invalid device: must be desktop, mobile, or both")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrDomainNotAllowed is returned when allow-list enforcement is on
	// and a target's domain is not covered by the list.
	ErrDomainNotAllowed = errors.New("target domain is not in the allowed domain list")
)
