package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"transcriber/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transcription jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			jobs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(historyColumns, historyRows(jobs)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail (an id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := findJob(cmd, store, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", job.ID)
			fmt.Fprintf(out, "Status:      %s\n", job.Status)
			fmt.Fprintf(out, "Source:      %s\n", job.Source)
			fmt.Fprintf(out, "Model:       %s\n", valueOrDash(job.Model))
			fmt.Fprintf(out, "Language:    %s\n", valueOrDash(job.Language))
			if job.TargetLanguage != "" {
				fmt.Fprintf(out, "Translated:  %s\n", job.TargetLanguage)
			}
			fmt.Fprintf(out, "Segments:    %d (%s)\n", job.Segments, formatClock(job.DurationSec))
			fmt.Fprintf(out, "Created:     %s\n", formatTime(job.CreatedAt))
			fmt.Fprintf(out, "Finished:    %s\n", formatTime(job.FinishedAt))
			if job.Status == history.StatusFailed {
				fmt.Fprintf(out, "Failed at:   %s\n", valueOrDash(job.FailedStage))
				fmt.Fprintf(out, "Error:       %s\n", job.ErrorMessage)
			}
			for _, path := range job.Outputs {
				fmt.Fprintf(out, "Output:      %s\n", path)
			}
			if job.BundlePath != "" {
				fmt.Fprintf(out, "Bundle:      %s\n", job.BundlePath)
			}
			for _, url := range job.Published {
				fmt.Fprintf(out, "Published:   %s\n", url)
			}
			return nil
		},
	}
}

var historyColumns = []column{
	{header: "ID"},
	{header: "Status"},
	{header: "Source"},
	{header: "Lang"},
	{header: "Segments", align: alignRight},
	{header: "Length", align: alignRight},
	{header: "Created"},
}

func historyRows(jobs []*history.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		status := string(job.Status)
		if job.Status == history.StatusFailed && job.FailedStage != "" {
			status += " (" + job.FailedStage + ")"
		}
		lang := valueOrDash(job.Language)
		if job.TargetLanguage != "" {
			lang += "->" + job.TargetLanguage
		}
		rows = append(rows, []string{
			shortID(job.ID),
			status,
			baseOrDash(job.Source),
			lang,
			strconv.Itoa(job.Segments),
			formatClock(job.DurationSec),
			formatTime(job.CreatedAt),
		})
	}
	return rows
}

// findJob resolves an exact id or a unique prefix.
func findJob(cmd *cobra.Command, store *history.Store, id string) (*history.Job, error) {
	job, err := store.Get(cmd.Context(), id)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, history.ErrNotFound) {
		return nil, err
	}
	jobs, err := store.List(cmd.Context(), 0)
	if err != nil {
		return nil, err
	}
	var match *history.Job
	for _, candidate := range jobs {
		if !strings.HasPrefix(candidate.ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("job id prefix %q is ambiguous", id)
		}
		match = candidate
	}
	if match == nil {
		return nil, fmt.Errorf("job %q: %w", id, history.ErrNotFound)
	}
	return match, nil
}
