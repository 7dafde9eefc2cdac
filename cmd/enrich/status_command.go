package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"enrich/internal/runstore"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the most recent enrichment run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runstore.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			run, err := store.LatestRun(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if run == nil {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			items, err := store.Items(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			summary, err := store.Summarize(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Run:      %s\n", run.ID)
			fmt.Fprintf(out, "Status:   %s\n", colorStatus(run.Status, shouldColorize(out)))
			fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC1123))
			if run.FinishedAt != nil {
				fmt.Fprintf(out, "Finished: %s\n", run.FinishedAt.Local().Format(time.RFC1123))
			}
			fmt.Fprintf(out, "Fields:   %s\n", strings.Join(run.ContentFields, ", "))
			fmt.Fprintf(out, "Files:    %d total, %d completed, %d failed\n", summary.Total, summary.Completed, summary.Failed)
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:    %s\n", run.ErrorMessage)
			}
			fmt.Fprintln(out, renderRunSummary(items))
			return nil
		},
	}
}

func colorStatus(status runstore.Status, colorize bool) string {
	if !colorize {
		return string(status)
	}
	switch status {
	case runstore.StatusCompleted:
		return ansiGreen + string(status) + ansiReset
	case runstore.StatusFailed:
		return ansiRed + string(status) + ansiReset
	case runstore.StatusRunning:
		return ansiYellow + string(status) + ansiReset
	default:
		return string(status)
	}
}
