package live

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"vlmbench/internal/runner"
)

func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatStatus renders a status string for a row.
func formatStatus(row ItemRow, noColor bool) string {
	text := string(row.Status)
	if row.Status == runner.ItemWaitingRateLimit && row.RetryAfterMs > 0 {
		text += " " + formatRetryAfter(row.RetryAfterMs)
	}
	if noColor {
		return text
	}
	return statusStyle(row.Status).Render(text)
}

// formatDetail shows the failing step and error of a finished row.
func formatDetail(row ItemRow) string {
	if row.Error == "" {
		return ""
	}
	detail := row.Error
	if row.Step != "" {
		detail = row.Step + ": " + detail
	}
	detail = strings.Join(strings.Fields(detail), " ")
	const limit = 72
	if len(detail) <= limit {
		return detail
	}
	return detail[:limit-3] + "..."
}

func formatRetryAfter(ms int) string {
	if ms <= 0 {
		return ""
	}
	return (time.Duration(ms) * time.Millisecond).Round(100 * time.Millisecond).String()
}

func formatRowDuration(row ItemRow, now time.Time) string {
	if row.StartedAt.IsZero() {
		return "-"
	}
	end := now
	if !row.FinishedAt.IsZero() {
		end = row.FinishedAt
	}
	return formatDuration(end.Sub(row.StartedAt))
}

func formatRetries(retries int) string {
	if retries == 0 {
		return "-"
	}
	return fmtInt(retries)
}

// statusStyle selects a style for a given status.
func statusStyle(status runner.ItemEventType) lipgloss.Style {
	color := lipgloss.Color("244")
	switch status {
	case runner.ItemSucceeded:
		color = lipgloss.Color("42")
	case runner.ItemPartial:
		color = lipgloss.Color("220")
	case runner.ItemFailed:
		color = lipgloss.Color("196")
	case runner.ItemWaitingRateLimit, runner.ItemWaitingLimiterError:
		color = lipgloss.Color("39")
	case runner.ItemRunning:
		color = lipgloss.Color("33")
	case runner.ItemQueued, runner.ItemReserving, runner.ItemSkipped, runner.ItemDropped:
		color = lipgloss.Color("246")
	}
	return lipgloss.NewStyle().Foreground(color)
}
