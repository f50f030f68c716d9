package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/a11yscan.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".a11yscan"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new a11yscan configuration file",
		Long: `Initialize creates a new .a11yscan configuration file in the current directory.

The generated file includes:
- Auditor process settings (node binary, script, mode, timeout)
- Default standards, device profiles, and keyboard testing
- Commented examples for the allowed-domains list

Examples:
  # Create .a11yscan in current directory
  a11yscan init

  # Create config file at a specific path
  a11yscan init -o myconfig.yaml

  # Force overwrite existing file
  a11yscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/a11yscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Auditor script path and integration mode")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Default standards and device profiles")
	fmt.Fprintln(cmd.OutOrStdout(), "  - The allowed-domains list")

	return nil
}
