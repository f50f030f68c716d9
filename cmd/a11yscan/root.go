// Package main provides the entry point for the a11yscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for a11yscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "a11yscan",
		Short: "Accessibility auditing tool for web pages",
		Long: `a11yscan runs automated accessibility audits against web pages.

It drives an external Node.js auditor that loads the page in a headless
browser, evaluates it against the selected standards (WCAG 2.0 A/AA,
best practices, ARIA usage), and returns the issues found along with an
annotated copy of the page.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
