package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"transcriber/internal/workspace"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var markInterrupted bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove abandoned job workspaces and expired history",
		Long: "Remove job directories in the staging area older than --max-age, and prune\n" +
			"finished history entries older than history.retention_days.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg, false)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			result := workspace.CleanStale(cmd.Context(), cfg.Paths.StagingDir, maxAge, logger)
			fmt.Fprintf(out, "Removed %d stale workspace(s)\n", len(result.Removed))
			for _, failure := range result.Errors {
				fmt.Fprintf(out, "  failed: %s: %v\n", failure.Path, failure.Error)
			}

			store, err := ctx.openHistory(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return nil
			}
			defer store.Close()

			if markInterrupted {
				n, err := store.MarkInterrupted(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Marked %d interrupted job(s) failed\n", n)
			}
			if days := cfg.History.RetentionDays; days > 0 {
				n, err := store.Prune(cmd.Context(), time.Duration(days)*24*time.Hour)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d history entr%s older than %d days\n", n, plural(n, "y", "ies"), days)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d workspace(s) could not be removed", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", 24*time.Hour, "Remove workspaces older than this")
	cmd.Flags().BoolVar(&markInterrupted, "interrupted", false, "Mark jobs still recorded as running as failed (only when no transcription is in progress)")
	return cmd
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
