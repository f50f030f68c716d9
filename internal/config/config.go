package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBudget is the wall-clock budget per auditor invocation.
	// The JSON integration documents 60 seconds; a headless-browser
	// page load plus rule evaluation rarely needs more, and anything
	// still running after a minute is stuck.
	DefaultBudget = 60 * time.Second

	// DefaultNodePath is the Node.js binary, resolved via PATH.
	DefaultNodePath = "node"

	// DefaultScriptPath is the auditor script run by node. The file-mode
	// script ships alongside the tool; override via config or flag.
	DefaultScriptPath = "a11y_audit.js"

	// DefaultMode is the auditor integration mode ("file" or "json").
	DefaultMode = "file"

	// DefaultDevice audits both device profiles, matching the
	// desktop+mobile pair the visual tester always runs.
	DefaultDevice = "both"

	// DefaultBatchSize is the number of concurrent auditor processes.
	// Each one is a headless browser; more than a few will thrash.
	DefaultBatchSize = 2

	// AppName is the application name used for XDG directory paths.
	AppName = "a11yscan"
)

// Config holds all configuration options for a11yscan.
// It is populated from CLI flags and the optional config file, then
// passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested
// structs. The number of options is manageable, and nesting would add
// complexity without significant benefit.
type Config struct {
	// NodePath is the Node.js binary used to run the auditor script.
	NodePath string

	// ScriptPath is the auditor script passed to node.
	ScriptPath string

	// Mode is the auditor integration mode: "file" or "json".
	Mode string

	// Budget is the hard wall-clock limit per auditor invocation.
	Budget time.Duration

	// Standards are the CLI tokens of the selected testing standards.
	// Must be non-empty before any audit is dispatched.
	Standards []string

	// Device selects the profiles to audit: "desktop", "mobile", or
	// "both".
	Device string

	// KeyboardTesting enables keyboard-navigation testing.
	KeyboardTesting bool

	// BatchSize is the number of concurrent auditor invocations when
	// auditing multiple targets or both device profiles.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When set, the
	// report is written there instead of stdout.
	ReportFile string

	// Targets is the list of URLs to audit. Each must satisfy the
	// http/https predicate before dispatch.
	Targets []string

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .a11yscan in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// AllowedDomains is the documented allow-list of target domains.
	// Advisory unless EnforceAllowedDomains is set: the original
	// integration documents the policy but never enforces it, so
	// enforcement is opt-in and happens at validation time, never
	// inside the invoker.
	AllowedDomains []string

	// EnforceAllowedDomains turns the allow-list into a hard guard.
	EnforceAllowedDomains bool

	// DBDir is the directory for the SQLite audit history database.
	DBDir string

	// SaveToDB indicates whether completed runs are recorded in the
	// history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		NodePath:   DefaultNodePath,
		ScriptPath: DefaultScriptPath,
		Mode:       DefaultMode,
		Budget:     DefaultBudget,
		Device:     DefaultDevice,
		BatchSize:  DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for a11yscan.
// On Linux: ~/.local/share/a11yscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yscan.
// On Linux: ~/.config/a11yscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found: fixing one error often makes
// others irrelevant, and this is called once after CLI parsing, before
// any audit begins.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if len(c.Standards) == 0 {
		return ErrNoStandards
	}

	if c.Budget <= 0 {
		return ErrInvalidBudget
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.ScriptPath == "" {
		return ErrNoScript
	}

	if c.Mode != "file" && c.Mode != "json" {
		return ErrInvalidMode
	}

	if c.Device != "desktop" && c.Device != "mobile" && c.Device != "both" {
		return ErrInvalidDevice
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.EnforceAllowedDomains {
		for _, target := range c.Targets {
			if !c.DomainAllowed(target) {
				return ErrDomainNotAllowed
			}
		}
	}

	return nil
}

// DomainAllowed reports whether the target URL's host is covered by
// the allow-list: an exact match or a subdomain of a listed domain.
// An empty list allows everything.
func (c *Config) DomainAllowed(target string) bool {
	if len(c.AllowedDomains) == 0 {
		return true
	}

	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())

	for _, domain := range c.AllowedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
