package live

import (
	"fmt"
	"time"

	"vlmbench/internal/runner"
)

// Reduce applies an item event to the UI state.
func Reduce(state State, event runner.ItemEvent) State {
	if state.Active == nil {
		state.Active = map[string]*ItemRow{}
	}
	row, ok := state.Active[event.ID]
	if !ok {
		row = &ItemRow{ID: event.ID}
		state.Active[event.ID] = row
	} else {
		state.Counts = adjust(state.Counts, row.Status, -1)
	}
	row.Status = event.Type
	row.RetryAfterMs = event.RetryAfterMs
	switch event.Type {
	case runner.ItemWaitingRateLimit, runner.ItemWaitingLimiterError:
		row.RetryCount++
	case runner.ItemRunning:
		if row.StartedAt.IsZero() {
			row.StartedAt = event.EmittedAt
		}
	}
	state.Counts = adjust(state.Counts, row.Status, 1)

	if event.Type.Terminal() {
		row.FinishedAt = event.EmittedAt
		row.Step = event.Step
		row.Error = event.Error
		delete(state.Active, event.ID)
		state.Recent = append(state.Recent, *row)
		if len(state.Recent) > recentLimit {
			state.Recent = state.Recent[len(state.Recent)-recentLimit:]
		}
	}
	if message := formatLastEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

// adjust moves one item into or out of its status bucket. Terminal buckets
// only ever grow, since finished rows leave Active.
func adjust(counts StatusCounts, status runner.ItemEventType, delta int) StatusCounts {
	switch status {
	case runner.ItemQueued, runner.ItemReserving:
		counts.Queued += delta
	case runner.ItemWaitingRateLimit, runner.ItemWaitingLimiterError:
		counts.Waiting += delta
	case runner.ItemRunning:
		counts.Running += delta
	case runner.ItemSucceeded:
		counts.Succeeded += delta
	case runner.ItemPartial:
		counts.Partial += delta
	case runner.ItemFailed:
		counts.Failed += delta
	case runner.ItemSkipped:
		counts.Skipped += delta
	case runner.ItemDropped:
		counts.Dropped += delta
	}
	return counts
}

// formatLastEvent creates a short footer message for the event.
func formatLastEvent(event runner.ItemEvent) string {
	switch event.Type {
	case runner.ItemWaitingRateLimit:
		if event.RetryAfterMs > 0 {
			return fmt.Sprintf("%s rate limited (retry in %s)", event.ID, formatRetryAfter(event.RetryAfterMs))
		}
		return fmt.Sprintf("%s rate limited", event.ID)
	case runner.ItemWaitingLimiterError:
		return fmt.Sprintf("%s limiter error (retrying)", event.ID)
	case runner.ItemPartial, runner.ItemFailed:
		return fmt.Sprintf("%s %s at %s: %s", event.ID, event.Type, event.Step, event.Error)
	case runner.ItemSucceeded:
		return fmt.Sprintf("%s succeeded in %s", event.ID, formatDuration(event.WallTime))
	}
	return ""
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}
