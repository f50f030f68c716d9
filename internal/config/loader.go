package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".a11yscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file shape.
type File struct {
	// Auditor configures the external auditor process.
	Auditor AuditorConfig `yaml:"auditor"`

	// Defaults configures the audit options applied when no flag
	// overrides them.
	Defaults DefaultsConfig `yaml:"defaults"`

	// AllowedDomains is the documented allow-list of target domains,
	// e.g. a government web-property family.
	AllowedDomains []string `yaml:"allowed_domains"`

	// EnforceAllowedDomains turns the allow-list from advisory into a
	// hard validation guard.
	EnforceAllowedDomains bool `yaml:"enforce_allowed_domains"`
}

// AuditorConfig configures the external auditor process.
type AuditorConfig struct {
	// Node is the Node.js binary.
	Node string `yaml:"node"`

	// Script is the auditor script passed to node.
	Script string `yaml:"script"`

	// Mode is the integration mode: "file" or "json".
	Mode string `yaml:"mode"`

	// Timeout is the wall-clock budget per invocation.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultsConfig configures default audit options.
type DefaultsConfig struct {
	// Standards are CLI tokens: wcag2a, wcag2aa, best-practice, aria.
	Standards []string `yaml:"standards"`

	// Device is "desktop", "mobile", or "both".
	Device string `yaml:"device"`

	// Keyboard enables keyboard-navigation testing.
	Keyboard bool `yaml:"keyboard"`
}

// LoadConfigFile loads configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should handle this error based on whether the path was explicitly
// specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply overlays the file's settings onto the config. Only fields the
// file actually sets are applied, so flag defaults survive an empty or
// partial file. Flags are applied after this and win over the file.
func (f *File) Apply(cfg *Config) {
	if f.Auditor.Node != "" {
		cfg.NodePath = f.Auditor.Node
	}
	if f.Auditor.Script != "" {
		cfg.ScriptPath = f.Auditor.Script
	}
	if f.Auditor.Mode != "" {
		cfg.Mode = f.Auditor.Mode
	}
	if f.Auditor.Timeout > 0 {
		cfg.Budget = f.Auditor.Timeout
	}
	if len(f.Defaults.Standards) > 0 {
		cfg.Standards = f.Defaults.Standards
	}
	if f.Defaults.Device != "" {
		cfg.Device = f.Defaults.Device
	}
	if f.Defaults.Keyboard {
		cfg.KeyboardTesting = true
	}
	if len(f.AllowedDomains) > 0 {
		cfg.AllowedDomains = f.AllowedDomains
	}
	if f.EnforceAllowedDomains {
		cfg.EnforceAllowedDomains = true
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .a11yscan in the current directory
// 3. Look for .a11yscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string
// if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
