package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a11yscan/a11yscan/internal/auditor"
	"github.com/a11yscan/a11yscan/internal/config"
	applog "github.com/a11yscan/a11yscan/internal/log"
	"github.com/a11yscan/a11yscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI for running audits",
		Long: `Serve starts a local web server with a form for submitting audits.

Submitted pages are audited under both device profiles; the result
page shows issue counts, a filterable issue list, and the annotated
page in an iframe.

Examples:
  # Start the web UI on the default address
  a11yscan serve

  # Listen on a different address
  a11yscan serve --addr localhost:9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", server.DefaultAddr,
		"Listen address for the web UI")
	cmd.Flags().StringP("node", "n", config.DefaultNodePath,
		"Node.js binary used to run the auditor")
	cmd.Flags().String("script", config.DefaultScriptPath,
		"Auditor script passed to node")
	cmd.Flags().String("mode", config.DefaultMode,
		"Auditor integration mode: file or json")
	cmd.Flags().DurationP("timeout", "t", config.DefaultBudget,
		"Wall-clock budget per auditor invocation")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .a11yscan in current or home directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	mode, err := auditor.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	logger := applog.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping server...")
		cancel()
	}()

	invoker := auditor.NewInvoker(cfg.ScriptPath,
		auditor.WithNodePath(cfg.NodePath),
		auditor.WithMode(mode),
		auditor.WithBudget(cfg.Budget),
		auditor.WithLogger(logger),
	)

	srv := server.New(invoker,
		server.WithAddr(addr),
		server.WithLogger(logger),
	)

	fmt.Printf("Web UI listening on http://%s\n", addr)
	return srv.Start(ctx)
}

// buildServeConfig assembles the auditor configuration for the web UI
// from the config file and the serve command's flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	explicitPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

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

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}
