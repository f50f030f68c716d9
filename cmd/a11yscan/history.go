package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/database"
	"github.com/a11yscan/a11yscan/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored audit runs",
		Long: `History lists audit runs recorded in the local database.

Every audit run is saved automatically. The listing shows the run ID,
URL, device profile, outcome, and issue counts; use --show to print
the full report of one stored run.

Examples:
  # List the most recent runs
  a11yscan history

  # List runs for one URL
  a11yscan history --url https://example.com

  # Print the full report of run 42
  a11yscan history --show 42`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("url", "u", "",
		"Only list runs for this URL")
	cmd.Flags().IntP("limit", "l", 20,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().Int64("show", 0,
		"Print the full report of the run with this ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	urlFilter, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Open read-only: listing history must not create an empty database
	db, err := database.Open(config.XDGDataDir(), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no audit history yet: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if showID > 0 {
		return showRun(ctx, cmd, db, showID, jsonOut)
	}

	runs, err := db.ListRuns(ctx, urlFilter, limit)
	if err != nil {
		return err
	}

	if jsonOut {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No audit runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRAN AT\tURL\tPROFILE\tOUTCOME\tERRORS\tWARNINGS\tNOTICES")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.RanAt.Format("2006-01-02 15:04"),
			run.URL,
			run.Profile,
			run.Kind,
			run.Errors,
			run.Warnings,
			run.Notices,
		)
	}
	return w.Flush()
}

// showRun prints the full report of one stored run.
func showRun(ctx context.Context, cmd *cobra.Command, db *database.AuditDB, id int64, jsonOut bool) error {
	outcome, err := db.GetOutcomeByID(ctx, id)
	if err != nil {
		return err
	}
	if outcome == nil {
		return fmt.Errorf("no audit run with ID %d", id)
	}

	var writer report.Writer
	if jsonOut {
		writer = report.NewJSONWriter(cmd.OutOrStdout())
	} else {
		writer = report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(true))
	}

	_, err = writer.Write(outcome)
	return err
}
