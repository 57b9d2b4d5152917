package live

import (
	"strings"
	"testing"
	"time"

	"vlmbench/internal/runner"
	"vlmbench/internal/testutil"
)

// TestReduceItemLifecycle verifies an item moves from active to recent.
func TestReduceItemLifecycle(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		start := time.Now()
		state := State{}
		state = Reduce(state, event("000000001", runner.ItemQueued, start))
		state = Reduce(state, event("000000001", runner.ItemReserving, start))
		if state.Counts.Queued != 1 {
			t.Fatalf("expected one queued item, got %+v", state.Counts)
		}
		state = Reduce(state, event("000000001", runner.ItemRunning, start))
		if state.Counts.Queued != 0 || state.Counts.Running != 1 {
			t.Fatalf("expected one running item, got %+v", state.Counts)
		}
		state = Reduce(state, event("000000001", runner.ItemSucceeded, start.Add(1500*time.Millisecond)))

		if len(state.Active) != 0 || len(state.Recent) != 1 {
			t.Fatalf("expected finished row to move to recent, active=%d recent=%d", len(state.Active), len(state.Recent))
		}
		row := state.Recent[0]
		if got := formatRowDuration(row, time.Now()); got != "1.5s" {
			t.Fatalf("unexpected duration %q", got)
		}
		if state.Counts.Succeeded != 1 || state.Counts.Running != 0 || state.Counts.Done() != 1 {
			t.Fatalf("unexpected counts %+v", state.Counts)
		}
	})
}

// TestReduceWaitingIncrementsRetry verifies retry counts are tracked.
func TestReduceWaitingIncrementsRetry(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := State{}
		waiting := event("000000002", runner.ItemWaitingRateLimit, time.Now())
		waiting.RetryAfterMs = 1200
		state = Reduce(state, waiting)
		state = Reduce(state, event("000000002", runner.ItemWaitingLimiterError, time.Now()))
		row := state.Active["000000002"]
		if row.RetryCount != 2 {
			t.Fatalf("expected retries=2, got %d", row.RetryCount)
		}
		if state.Counts.Waiting != 1 {
			t.Fatalf("expected waiting count, got %d", state.Counts.Waiting)
		}
	})
}

// TestReduceFailureKeepsStepAndError verifies failed rows explain themselves.
func TestReduceFailureKeepsStepAndError(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := State{}
		state = Reduce(state, event("000000003", runner.ItemRunning, time.Now()))
		failed := event("000000003", runner.ItemPartial, time.Now())
		failed.Step = "summarize"
		failed.Error = "upstream\n500"
		state = Reduce(state, failed)

		if got := formatDetail(state.Recent[0]); got != "summarize: upstream 500" {
			t.Fatalf("unexpected detail %q", got)
		}
		if !strings.Contains(state.LastEvent, "partial at summarize") {
			t.Fatalf("unexpected last event %q", state.LastEvent)
		}
		if state.Counts.Partial != 1 {
			t.Fatalf("expected partial count, got %+v", state.Counts)
		}
	})
}

// TestReduceBoundsRecentRows verifies only the latest finished rows are kept.
func TestReduceBoundsRecentRows(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := State{}
		for i := 0; i < recentLimit+3; i++ {
			state = Reduce(state, event(string(rune('a'+i)), runner.ItemSkipped, time.Now()))
		}
		if len(state.Recent) != recentLimit {
			t.Fatalf("expected %d recent rows, got %d", recentLimit, len(state.Recent))
		}
		if state.Counts.Skipped != recentLimit+3 {
			t.Fatalf("counts must include rows no longer shown, got %d", state.Counts.Skipped)
		}
	})
}

// TestModelQuitsOnRunEnd verifies the model stops after the run summary.
func TestModelQuitsOnRunEnd(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		model := NewModel(nil, Options{NoColor: true})
		plan := runner.Plan{Task: "generation/captioning", Model: "m", Total: 2, Pending: []string{"000000001", "000000002"}}
		next, _ := model.Update(EventMsg{Event: Event{Kind: EventRunStart, RunID: "run-1", Plan: plan}})
		next, _ = next.Update(EventMsg{Event: Event{Kind: EventItem, Item: event("000000001", runner.ItemSucceeded, time.Now())}})

		view := next.View()
		if !strings.Contains(view, "Total: 2 | Completed: 0 | Skipped: 0 | Pending: 2") || !strings.Contains(view, "1/2") {
			t.Fatalf("unexpected view:\n%s", view)
		}
		_, cmd := next.Update(EventMsg{Event: Event{Kind: EventRunEnd}})
		if cmd == nil {
			t.Fatalf("expected quit command after run end")
		}
	})
}

func event(id string, kind runner.ItemEventType, when time.Time) runner.ItemEvent {
	return runner.ItemEvent{
		Task:      "generation/captioning",
		ID:        id,
		Type:      kind,
		EmittedAt: when,
	}
}

// runWithTimeout executes a test body with a timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}
