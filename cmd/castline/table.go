package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"castline/internal/runs"
)

// renderRunsTable formats ledger rows for `runs list`. Failed runs carry
// their error message in the artifact column so a glance at the listing
// explains what went wrong.
func renderRunsTable(list []*runs.Run) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Session", "Status", "Stage", "Created", "Artifact"})

	for _, run := range list {
		tw.AppendRow(table.Row{
			run.SessionID,
			string(run.Status),
			run.Stage,
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			artifactLabel(run),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignLeft, WidthMax: 60},
	})
	return tw.Render()
}
