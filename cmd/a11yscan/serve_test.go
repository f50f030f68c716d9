package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/a11yscan/a11yscan/internal/server"
)

// TestNewServeCmd tests the serve command creation.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "serve" {
			t.Errorf("expected use 'serve', got %q", cmd.Use)
		}
	})

	t.Run("has addr flag with default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("addr")
		if flag == nil {
			t.Fatal("expected addr flag")
		}
		if flag.DefValue != server.DefaultAddr {
			t.Errorf("expected default %q, got %q", server.DefaultAddr, flag.DefValue)
		}
	})

	t.Run("has auditor flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"node", "script", "mode", "timeout", "config"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestBuildServeConfig tests serve configuration assembly.
func TestBuildServeConfig(t *testing.T) {
	t.Run("uses defaults without config file", func(t *testing.T) {
		cmd := NewServeCmd()
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Mode != "file" {
			t.Errorf("expected mode 'file', got %q", cfg.Mode)
		}
		if cfg.NodePath != "node" {
			t.Errorf("expected node path 'node', got %q", cfg.NodePath)
		}
	})

	t.Run("loads auditor settings from config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "a11yscan.yaml")
		content := []byte(`
auditor:
  node: /usr/local/bin/node
  mode: json
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewServeCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.NodePath != "/usr/local/bin/node" {
			t.Errorf("expected node path from file, got %q", cfg.NodePath)
		}
		if cfg.Mode != "json" {
			t.Errorf("expected mode from file, got %q", cfg.Mode)
		}
	})

	t.Run("errors on missing explicit config file", func(t *testing.T) {
		cmd := NewServeCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
		if _, err := buildServeConfig(cmd); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})
}
