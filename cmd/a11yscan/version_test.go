package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests the version string resolution.
func TestGetVersion(t *testing.T) {
	t.Run("returns non-empty version", func(t *testing.T) {
		if getVersion() == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("prefers ldflags version", func(t *testing.T) {
		original := version
		defer func() { version = original }()

		version = "1.2.3"
		if got := getVersion(); got != "1.2.3" {
			t.Errorf("expected '1.2.3', got %q", got)
		}
	})
}

// TestGetCommit tests the commit hash resolution.
func TestGetCommit(t *testing.T) {
	t.Run("prefers ldflags commit", func(t *testing.T) {
		original := commit
		defer func() { commit = original }()

		commit = "abc1234"
		if got := getCommit(); got != "abc1234" {
			t.Errorf("expected 'abc1234', got %q", got)
		}
	})
}

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)

	cmd.Run(cmd, nil)

	output := buf.String()
	if !strings.Contains(output, "a11yscan version") {
		t.Errorf("expected version line, got %q", output)
	}
	if !strings.Contains(output, "commit:") {
		t.Errorf("expected commit line, got %q", output)
	}
	if !strings.Contains(output, "built:") {
		t.Errorf("expected build date line, got %q", output)
	}
}
