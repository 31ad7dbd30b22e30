package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"castline/internal/runs"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded generation runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsClearCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]runs.Status, 0, len(statusFilters))
			for _, raw := range statusFilters {
				status := runs.Status(raw)
				if !status.Valid() {
					return fmt.Errorf("unknown status %q (pending, running, completed, failed)", raw)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(store *runs.Store) error {
				list, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRunsTable(list))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statusFilters, "status", nil, "Only show runs with these statuses")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runs.Store) error {
				run, err := store.GetBySession(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("no run with session id %q", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session:    %s\n", run.SessionID)
				fmt.Fprintf(out, "Status:     %s\n", run.Status)
				fmt.Fprintf(out, "Stage:      %s\n", run.Stage)
				fmt.Fprintf(out, "Created:    %s\n", run.CreatedAt.Local().Format(time.RFC3339))
				fmt.Fprintf(out, "Updated:    %s\n", run.UpdatedAt.Local().Format(time.RFC3339))
				if run.ScriptPath != "" {
					fmt.Fprintf(out, "Script:     %s\n", run.ScriptPath)
				}
				if run.AudioPath != "" {
					fmt.Fprintf(out, "Audio:      %s\n", run.AudioPath)
				}
				if run.TranscriptPath != "" {
					fmt.Fprintf(out, "Transcript: %s\n", run.TranscriptPath)
				}
				if run.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:      %s\n", run.ErrorMessage)
				}
				return nil
			})
		},
	}
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runs.Store) error {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", n)
				return nil
			})
		},
	}
}

func artifactLabel(run *runs.Run) string {
	switch {
	case run.AudioPath != "":
		return filepath.Base(run.AudioPath)
	case run.ErrorMessage != "":
		return run.ErrorMessage
	default:
		return ""
	}
}
