package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a11yscan/a11yscan/internal/auditor"
	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/database"
	applog "github.com/a11yscan/a11yscan/internal/log"
	"github.com/a11yscan/a11yscan/internal/model"
	"github.com/a11yscan/a11yscan/internal/report"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url]",
		Short: "Run an accessibility audit against one or more URLs",
		Long: `Audit runs the external Node.js auditor against each given URL.

The auditor loads the page in a headless browser, evaluates it against
the selected standards, and returns the issues found. Each URL is
audited under the selected device profiles; desktop and mobile runs
are reported separately, never merged.

Examples:
  # Audit a page against WCAG 2.0 AA (the default)
  a11yscan audit https://example.com

  # Audit several pages against multiple standards
  a11yscan audit -s wcag2aa,aria https://example.com https://example.org

  # Desktop viewport only, with keyboard navigation testing
  a11yscan audit --device desktop --keyboard https://example.com

  # Write a Markdown report to a file
  a11yscan audit --markdown -o report.md https://example.com

  # Use the stdout JSON integration instead of the file protocol
  a11yscan audit --mode json https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	// Auditor process flags
	cmd.Flags().StringP("node", "n", config.DefaultNodePath,
		"Node.js binary used to run the auditor")
	cmd.Flags().String("script", config.DefaultScriptPath,
		"Auditor script passed to node")
	cmd.Flags().String("mode", config.DefaultMode,
		"Auditor integration mode: file or json")
	cmd.Flags().DurationP("timeout", "t", config.DefaultBudget,
		"Wall-clock budget per auditor invocation")

	// Audit option flags
	cmd.Flags().StringSliceP("standards", "s", []string{"wcag2aa"},
		"Standards to audit: wcag2a, wcag2aa, best-practice, aria")
	cmd.Flags().StringP("device", "d", config.DefaultDevice,
		"Device profiles to audit: desktop, mobile, or both")
	cmd.Flags().BoolP("keyboard", "k", false,
		"Include keyboard navigation testing")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent auditor invocations")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .a11yscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Handle interrupt signals for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAudit(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file and cobra flags.
// The file overlays the defaults; flags the user set win over the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	explicitPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = explicitPath

	configPath := config.FindConfigFile(explicitPath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
	}

	// Flags the user set override the file. Unset flags keep the
	// file's value, or the default when the file is silent.
	if cmd.Flags().Changed("node") || cfg.NodePath == "" {
		if cfg.NodePath, err = cmd.Flags().GetString("node"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("script") || cfg.ScriptPath == "" {
		if cfg.ScriptPath, err = cmd.Flags().GetString("script"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("mode") || cfg.Mode == "" {
		if cfg.Mode, err = cmd.Flags().GetString("mode"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") || cfg.Budget <= 0 {
		if cfg.Budget, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("standards") || len(cfg.Standards) == 0 {
		if cfg.Standards, err = cmd.Flags().GetStringSlice("standards"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("device") || cfg.Device == "" {
		if cfg.Device, err = cmd.Flags().GetString("device"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("keyboard") {
		if cfg.KeyboardTesting, err = cmd.Flags().GetBool("keyboard"); err != nil {
			return nil, err
		}
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Positional arguments are the target URLs
	cfg.Targets = args

	return cfg, nil
}

// runAudit executes the audit.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		if !model.IsValidURL(target) {
			return fmt.Errorf("%w: %q (must start with http:// or https://)", model.ErrInvalidURL, target)
		}
		if !cfg.EnforceAllowedDomains && !cfg.DomainAllowed(target) {
			logger.Warn("target is outside the configured allowed domains", "url", target)
		}
	}

	standards, err := model.ParseStandards(cfg.Standards)
	if err != nil {
		return err
	}

	profiles, err := deviceProfiles(cfg.Device)
	if err != nil {
		return err
	}

	mode, err := auditor.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	logger.Info("starting audit",
		"targets", cfg.Targets,
		"standards", cfg.Standards,
		"device", cfg.Device,
		"mode", cfg.Mode,
	)

	// Open database connection if saving is enabled
	var db *database.AuditDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	reqs := make([]model.AuditRequest, 0, len(cfg.Targets)*len(profiles))
	for _, target := range cfg.Targets {
		for _, profile := range profiles {
			reqs = append(reqs, model.AuditRequest{
				URL:             target,
				Standards:       standards,
				Profile:         profile,
				KeyboardTesting: cfg.KeyboardTesting,
			})
		}
	}

	invoker := auditor.NewInvoker(cfg.ScriptPath,
		auditor.WithNodePath(cfg.NodePath),
		auditor.WithMode(mode),
		auditor.WithBudget(cfg.Budget),
		auditor.WithLogger(logger),
	)
	batch := auditor.NewBatch(invoker,
		auditor.WithConcurrency(cfg.BatchSize),
		auditor.WithBatchLogger(logger),
	)

	outcomes, err := batch.Run(ctx, reqs)
	if err != nil {
		return err
	}

	if err := outputReports(cfg, outcomes); err != nil {
		return err
	}

	failed := 0
	for i := range outcomes {
		if !outcomes[i].OK() {
			failed++
		}
		if err := saveOutcome(ctx, db, &outcomes[i], standards, logger); err != nil {
			logger.Error("failed to save audit run", "url", outcomes[i].URL, "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d audit runs failed", failed, len(outcomes))
	}
	return nil
}

// deviceProfiles maps the device token to the profiles to audit.
func deviceProfiles(device string) ([]model.DeviceProfile, error) {
	if device == "both" {
		return []model.DeviceProfile{model.ProfileDesktop, model.ProfileMobile}, nil
	}
	profile, err := model.ParseDeviceProfile(device)
	if err != nil {
		return nil, err
	}
	return []model.DeviceProfile{profile}, nil
}

// outputReports writes each outcome in the requested format.
func outputReports(cfg *config.Config, outcomes []model.AuditOutcome) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	for i := range outcomes {
		if _, err := writer.Write(&outcomes[i]); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return nil
}

// saveOutcome saves an audit run to the database if enabled.
// If db is nil, this function is a no-op.
func saveOutcome(ctx context.Context, db *database.AuditDB, outcome *model.AuditOutcome, standards []model.Standard, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveOutcome(ctx, outcome, standards)
	if err != nil {
		return err
	}

	logger.Info("audit run saved to database", "url", outcome.URL, "id", id)
	return nil
}
