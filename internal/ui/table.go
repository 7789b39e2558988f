package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// RenderTable prints rows as an ASCII table, the way query results
// appear in an interactive session.
func RenderTable(headers []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(true)

	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}

// RenderChangeSummary prints a reconcile outcome with colored counts.
func RenderChangeSummary(name string, updated, inserted, deleted int64) {
	status := color.GreenString("no changes")
	if updated+inserted+deleted > 0 {
		status = fmt.Sprintf("%s / %s / %s",
			color.YellowString("%d updated", updated),
			color.GreenString("%d inserted", inserted),
			color.RedString("%d deleted", deleted),
		)
	}
	fmt.Printf("  %-24s %s\n", name, status)
}
