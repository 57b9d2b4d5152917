package live

import (
	"time"

	"vlmbench/internal/runner"
)

// recentLimit bounds how many finished items stay visible.
const recentLimit = 8

// ItemRow holds UI state for a single item.
type ItemRow struct {
	ID           string
	Status       runner.ItemEventType
	RetryCount   int
	RetryAfterMs int
	StartedAt    time.Time
	FinishedAt   time.Time
	Step         string
	Error        string
}

// StatusCounts aggregates counts by status bucket.
type StatusCounts struct {
	Queued    int
	Waiting   int
	Running   int
	Succeeded int
	Partial   int
	Failed    int
	Skipped   int
	Dropped   int
}

// Done counts items in a terminal state.
func (c StatusCounts) Done() int {
	return c.Succeeded + c.Partial + c.Failed + c.Skipped + c.Dropped
}

// State captures the live UI state for a run.
type State struct {
	RunID     string
	Plan      runner.Plan
	StartedAt time.Time
	LastEvent string
	// Active holds rows of items that have not finished.
	Active map[string]*ItemRow
	// Recent holds the latest finished rows, newest last.
	Recent []ItemRow
	Counts StatusCounts
	Ended  bool
}
