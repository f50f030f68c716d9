package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a11yscan/a11yscan/internal/config"
)

// TestNewAuditCmd tests the audit command creation.
func TestNewAuditCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAuditCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "audit [url]" {
			t.Errorf("expected use 'audit [url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has standards flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("standards")
		if flag == nil {
			t.Fatal("expected standards flag")
		}
		if flag.Shorthand != "s" {
			t.Errorf("expected shorthand 's', got %q", flag.Shorthand)
		}
	})

	t.Run("has device flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("device")
		if flag == nil {
			t.Fatal("expected device flag")
		}
		if flag.DefValue != "both" {
			t.Errorf("expected default 'both', got %q", flag.DefValue)
		}
	})

	t.Run("has keyboard flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("keyboard") == nil {
			t.Fatal("expected keyboard flag")
		}
	})

	t.Run("has timeout flag with 60s default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.DefValue != "1m0s" {
			t.Errorf("expected default '1m0s', got %q", flag.DefValue)
		}
	})

	t.Run("has mode flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("mode")
		if flag == nil {
			t.Fatal("expected mode flag")
		}
		if flag.DefValue != "file" {
			t.Errorf("expected default 'file', got %q", flag.DefValue)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db-dir") != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewAuditCmd()
		if getVerboseFlag(cmd) {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		auditCmd, _, err := root.Find([]string{"audit"})
		if err != nil {
			t.Fatalf("failed to find audit command: %v", err)
		}

		if !getVerboseFlag(auditCmd) {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewAuditCmd()
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 1 || cfg.Targets[0] != "https://example.com" {
			t.Errorf("expected targets [https://example.com], got %v", cfg.Targets)
		}
		if cfg.Mode != "file" {
			t.Errorf("expected mode 'file', got %q", cfg.Mode)
		}
		if cfg.Budget != config.DefaultBudget {
			t.Errorf("expected budget %s, got %s", config.DefaultBudget, cfg.Budget)
		}
		if len(cfg.Standards) != 1 || cfg.Standards[0] != "wcag2aa" {
			t.Errorf("expected default standards [wcag2aa], got %v", cfg.Standards)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})

	t.Run("builds config with custom standards", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("standards", "wcag2a,aria")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Standards) != 2 {
			t.Errorf("expected 2 standards, got %v", cfg.Standards)
		}
	})

	t.Run("builds config with multiple targets", func(t *testing.T) {
		cmd := NewAuditCmd()
		cfg, err := buildConfig(cmd, []string{"https://a.example.com", "https://b.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 2 {
			t.Errorf("expected 2 targets, got %d", len(cfg.Targets))
		}
	})

	t.Run("loads settings from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "a11yscan.yaml")

		content := []byte(`
auditor:
  script: /opt/auditor/a11y_audit.js
  timeout: 30s
defaults:
  standards:
    - wcag2a
  device: mobile
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ScriptPath != "/opt/auditor/a11y_audit.js" {
			t.Errorf("expected script from file, got %q", cfg.ScriptPath)
		}
		if cfg.Budget.Seconds() != 30 {
			t.Errorf("expected 30s budget from file, got %s", cfg.Budget)
		}
		if cfg.Device != "mobile" {
			t.Errorf("expected device 'mobile' from file, got %q", cfg.Device)
		}
		if len(cfg.Standards) != 1 || cfg.Standards[0] != "wcag2a" {
			t.Errorf("expected standards from file, got %v", cfg.Standards)
		}
	})

	t.Run("flags override config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "a11yscan.yaml")

		content := []byte(`
defaults:
  device: mobile
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("config", configPath)
		_ = cmd.Flags().Set("device", "desktop")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Device != "desktop" {
			t.Errorf("expected flag to win over file, got %q", cfg.Device)
		}
	})

	t.Run("errors on missing explicit config file", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
		if _, err := buildConfig(cmd, []string{"https://example.com"}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})
}

// TestDeviceProfiles tests the device token mapping.
func TestDeviceProfiles(t *testing.T) {
	t.Parallel()

	t.Run("both expands to desktop and mobile", func(t *testing.T) {
		t.Parallel()
		profiles, err := deviceProfiles("both")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(profiles) != 2 {
			t.Errorf("expected 2 profiles, got %d", len(profiles))
		}
	})

	t.Run("single profile", func(t *testing.T) {
		t.Parallel()
		profiles, err := deviceProfiles("mobile")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(profiles) != 1 || profiles[0].String() != "mobile" {
			t.Errorf("expected [mobile], got %v", profiles)
		}
	})

	t.Run("unknown token errors", func(t *testing.T) {
		t.Parallel()
		if _, err := deviceProfiles("tablet"); err == nil {
			t.Error("expected error for unknown device token")
		}
	})
}

// TestRunAudit runs the full audit path against a fake auditor script.
func TestRunAudit(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}

	t.Run("successful file-mode run writes report and saves history", func(t *testing.T) {
		tmpDir := t.TempDir()
		script := filepath.Join(tmpDir, "auditor.sh")
		scriptBody := `#!/bin/sh
cat > "$4" <<'EOF'
<html><head><title>ok</title></head><body>annotated</body></html>
EOF
`
		if err := os.WriteFile(script, []byte(scriptBody), 0o700); err != nil {
			t.Fatalf("failed to write script: %v", err)
		}

		reportFile := filepath.Join(tmpDir, "out", "report.txt")

		cfg := config.NewConfig()
		cfg.NodePath = "/bin/sh"
		cfg.ScriptPath = script
		cfg.Standards = []string{"wcag2aa"}
		cfg.Device = "desktop"
		cfg.Targets = []string{"https://example.com"}
		cfg.ReportFile = reportFile
		cfg.SaveToDB = true
		cfg.DBDir = filepath.Join(tmpDir, "db")

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		if err := runAudit(context.Background(), cfg, logger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(reportFile)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(data), "https://example.com") {
			t.Errorf("expected URL in report, got: %s", data)
		}
		if !strings.Contains(string(data), "Complete") {
			t.Errorf("expected Complete status in report, got: %s", data)
		}

		if _, err := os.Stat(filepath.Join(cfg.DBDir, "a11yscan.db")); err != nil {
			t.Errorf("expected history database to be created: %v", err)
		}
	})

	t.Run("successful json-mode run reports issues", func(t *testing.T) {
		tmpDir := t.TempDir()
		script := filepath.Join(tmpDir, "auditor.sh")
		scriptBody := `#!/bin/sh
cat <<'EOF'
{"success":true,"summary":{"totalIssues":1,"errors":1,"warnings":0,"notices":0,"issues":[{"type":"error","code":"H37","message":"Img element missing an alt attribute."}]},"streamlitHtml":"<html><head></head><body>annotated</body></html>"}
EOF
`
		if err := os.WriteFile(script, []byte(scriptBody), 0o700); err != nil {
			t.Fatalf("failed to write script: %v", err)
		}

		reportFile := filepath.Join(tmpDir, "report.txt")

		cfg := config.NewConfig()
		cfg.NodePath = "/bin/sh"
		cfg.ScriptPath = script
		cfg.Mode = "json"
		cfg.Standards = []string{"wcag2aa"}
		cfg.Device = "desktop"
		cfg.Targets = []string{"https://example.com"}
		cfg.ReportFile = reportFile
		cfg.SaveToDB = false

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		if err := runAudit(context.Background(), cfg, logger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(reportFile)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(data), "Img element missing an alt attribute.") {
			t.Errorf("expected issue in report, got: %s", data)
		}
	})

	t.Run("failed run returns error but still reports", func(t *testing.T) {
		tmpDir := t.TempDir()
		script := filepath.Join(tmpDir, "auditor.sh")
		if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 3\n"), 0o700); err != nil {
			t.Fatalf("failed to write script: %v", err)
		}

		reportFile := filepath.Join(tmpDir, "report.txt")

		cfg := config.NewConfig()
		cfg.NodePath = "/bin/sh"
		cfg.ScriptPath = script
		cfg.Standards = []string{"wcag2aa"}
		cfg.Device = "desktop"
		cfg.Targets = []string{"https://example.com"}
		cfg.ReportFile = reportFile
		cfg.SaveToDB = false

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		err := runAudit(context.Background(), cfg, logger)
		if err == nil {
			t.Fatal("expected error for failed run")
		}
		if !strings.Contains(err.Error(), "1 of 1") {
			t.Errorf("expected failure count in error, got: %v", err)
		}

		data, readErr := os.ReadFile(reportFile)
		if readErr != nil {
			t.Fatalf("failed to read report: %v", readErr)
		}
		if !strings.Contains(string(data), "FAILED") {
			t.Errorf("expected FAILED status in report, got: %s", data)
		}
	})

	t.Run("rejects non-http target before spawning", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Standards = []string{"wcag2aa"}
		cfg.Targets = []string{"ftp://example.com"}
		cfg.SaveToDB = false

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		if err := runAudit(context.Background(), cfg, logger); err == nil {
			t.Error("expected error for non-http target")
		}
	})
}
