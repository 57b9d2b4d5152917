package live

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Run " + state.RunID
	if state.Plan.Task != "" {
		line += " | " + state.Plan.Task + " / " + state.Plan.Model
	}
	if !state.StartedAt.IsZero() {
		line += " | Elapsed: " + now.Sub(state.StartedAt).Round(time.Second).String()
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderPlan renders the pre-run report line.
func renderPlan(state State, noColor bool) string {
	return stylize(state.Plan.Line(), noColor, lipgloss.Color("240"))
}

// renderProgress renders the share of pending items that finished.
func renderProgress(state State, bar progress.Model, noColor bool) string {
	total := len(state.Plan.Pending)
	if total == 0 {
		return ""
	}
	done := state.Counts.Done()
	percent := float64(done) / float64(total)
	label := " " + fmtInt(done) + "/" + fmtInt(total)
	if noColor {
		const width = 30
		filled := int(percent * width)
		return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]" + label
	}
	return bar.ViewAs(percent) + label
}

// renderSummary renders the status counts line.
func renderSummary(state State, noColor bool) string {
	counts := state.Counts
	line := "Queued: " + fmtInt(counts.Queued) +
		" Waiting: " + fmtInt(counts.Waiting) +
		" Running: " + fmtInt(counts.Running) +
		" Succeeded: " + fmtInt(counts.Succeeded) +
		" Partial: " + fmtInt(counts.Partial) +
		" Failed: " + fmtInt(counts.Failed) +
		" Skipped: " + fmtInt(counts.Skipped)
	if counts.Dropped > 0 {
		line += " Dropped: " + fmtInt(counts.Dropped)
	}
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderFooter renders the last event line.
func renderFooter(state State, noColor bool) string {
	if state.LastEvent == "" {
		return ""
	}
	return stylize("Last event: "+state.LastEvent, noColor, lipgloss.Color("244"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
