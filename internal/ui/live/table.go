package live

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func defaultColumns() []table.Column {
	return []table.Column{
		{Title: "Item", Width: 11},
		{Title: "Status", Width: 22},
		{Title: "Elapsed", Width: 9},
		{Title: "Retries", Width: 7},
		{Title: "Detail", Width: 40},
	}
}

// columnsForWidth widens the detail column to the terminal width.
func columnsForWidth(width int) []table.Column {
	columns := defaultColumns()
	fixed := 0
	for _, col := range columns[:len(columns)-1] {
		fixed += col.Width + 2
	}
	if rest := width - fixed - 2; rest > columns[len(columns)-1].Width {
		columns[len(columns)-1].Width = rest
	}
	return columns
}

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// rowsForState lists active items by id, then the most recent finished ones.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	active := make([]ItemRow, 0, len(state.Active))
	for _, row := range state.Active {
		active = append(active, *row)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	rows := make([]table.Row, 0, len(active)+len(state.Recent))
	for _, row := range append(active, state.Recent...) {
		rows = append(rows, table.Row{
			row.ID,
			formatStatus(row, noColor),
			formatRowDuration(row, now),
			formatRetries(row.RetryCount),
			formatDetail(row),
		})
	}
	return rows
}
