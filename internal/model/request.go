package model

import (
	"errors"
	"fmt"
	"strings"
)

// Standard identifies an accessibility rule set the external auditor
// can evaluate a page against.
//
// Design decision: We use iota-based constants rather than string
// constants for efficiency in comparisons. The auditor itself speaks
// its own token vocabulary (see AuditorToken), so the enum also keeps
// the wire spelling in exactly one place.
type Standard int

const (
	// StandardWCAG2A is Web Content Accessibility Guidelines 2.0 Level A.
	StandardWCAG2A Standard = iota

	// StandardWCAG2AA is Web Content Accessibility Guidelines 2.0 Level AA.
	StandardWCAG2AA

	// StandardBestPractice covers industry best practices beyond WCAG.
	StandardBestPractice

	// StandardAria covers Accessible Rich Internet Applications rules.
	StandardAria
)

// String returns the CLI token for the standard.
func (s Standard) String() string {
	switch s {
	case StandardWCAG2A:
		return "wcag2a"
	case StandardWCAG2AA:
		return "wcag2aa"
	case StandardBestPractice:
		return "best-practice"
	case StandardAria:
		return "aria"
	default:
		return "unknown"
	}
}

// AuditorToken returns the spelling the Node auditor expects on its
// command line. These strings are part of the subprocess contract and
// must not be normalized or re-cased.
func (s Standard) AuditorToken() string {
	switch s {
	case StandardWCAG2A:
		return "WCAG 2.0A"
	case StandardWCAG2AA:
		return "WCAG 2.0AA"
	case StandardBestPractice:
		return "Best-practice"
	case StandardAria:
		return "Aria"
	default:
		return ""
	}
}

// ErrUnknownStandard is returned when a CLI token does not name a
// supported standard.
var ErrUnknownStandard = errors.New("unknown standard")

// ParseStandard converts a CLI token into a Standard.
// Matching is case-insensitive; "bestpractice" is accepted as an
// alias for "best-practice".
func ParseStandard(token string) (Standard, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "wcag2a":
		return StandardWCAG2A, nil
	case "wcag2aa":
		return StandardWCAG2AA, nil
	case "best-practice", "bestpractice":
		return StandardBestPractice, nil
	case "aria":
		return StandardAria, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStandard, token)
	}
}

// ParseStandards converts a list of CLI tokens into Standards,
// preserving order and dropping duplicates.
func ParseStandards(tokens []string) ([]Standard, error) {
	seen := make(map[Standard]bool, len(tokens))
	standards := make([]Standard, 0, len(tokens))
	for _, token := range tokens {
		s, err := ParseStandard(token)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		standards = append(standards, s)
	}
	return standards, nil
}

// StandardsCSV joins the auditor tokens of the given standards with
// commas, producing the second positional argument of the file-mode
// auditor invocation.
func StandardsCSV(standards []Standard) string {
	tokens := make([]string, 0, len(standards))
	for _, s := range standards {
		tokens = append(tokens, s.AuditorToken())
	}
	return strings.Join(tokens, ",")
}

// DeviceProfile selects the viewport and user-agent configuration the
// auditor renders the page under before evaluating it.
type DeviceProfile int

const (
	// ProfileDesktop renders the page with a desktop viewport.
	ProfileDesktop DeviceProfile = iota

	// ProfileMobile renders the page with a mobile viewport.
	ProfileMobile
)

// String returns the auditor's device profile token. Unlike standards,
// the CLI spelling and the wire spelling coincide here.
func (d DeviceProfile) String() string {
	switch d {
	case ProfileDesktop:
		return "desktop"
	case ProfileMobile:
		return "mobile"
	default:
		return "unknown"
	}
}

// ErrUnknownProfile is returned when a token does not name a device profile.
var ErrUnknownProfile = errors.New("unknown device profile")

// ParseDeviceProfile converts a token into a DeviceProfile.
func ParseDeviceProfile(token string) (DeviceProfile, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "desktop":
		return ProfileDesktop, nil
	case "mobile":
		return ProfileMobile, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProfile, token)
	}
}

// IsValidURL reports whether the trimmed string begins with "http://"
// or "https://". The scheme check is case-sensitive and no further
// well-formedness check is performed: a malformed-but-prefixed URL is
// intentionally allowed through, and the external auditor surfaces the
// resulting connection error.
func IsValidURL(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://")
}

// Request validation errors.
var (
	// ErrInvalidURL is returned when the target URL does not start with
	// an http or https scheme.
	ErrInvalidURL = errors.New("invalid URL: must start with http:// or https://")

	// ErrNoStandards is returned when no testing standard is selected.
	// A request without standards must never reach the audit invoker.
	ErrNoStandards = errors.New("no testing standard selected: choose at least one")
)

// AuditRequest describes a single audit of one URL under one device
// profile. A request is constructed per user action, consumed once by
// the audit invoker, and discarded; there is no cross-run state.
type AuditRequest struct {
	// URL is the page to audit. Must satisfy IsValidURL.
	URL string `json:"url"`

	// Standards are the rule sets to evaluate. Must be non-empty
	// before the request is dispatched, for every device profile.
	Standards []Standard `json:"standards"`

	// Profile is the device profile to render the page under.
	Profile DeviceProfile `json:"profile"`

	// KeyboardTesting enables keyboard-navigation testing in the
	// auditor (tab order indicators on the annotated page).
	KeyboardTesting bool `json:"keyboard_testing"`
}

// Validate checks the request invariants before dispatch.
// It returns the first violation found: a request that fails here is
// reported inline and no auditor process is spawned.
func (r AuditRequest) Validate() error {
	if !IsValidURL(r.URL) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, r.URL)
	}
	if len(r.Standards) == 0 {
		return ErrNoStandards
	}
	return nil
}
