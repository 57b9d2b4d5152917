package cli

import (
	"strings"
	"testing"

	"vlmbench/internal/checkpoint"
)

const captioningDir = "data/generation/captioning/test-vlm/"

// TestRunRecordsResultsAndFailures verifies a first run writes every channel,
// publishes the captioning dataset and warns about failures.
func TestRunRecordsResultsAndFailures(t *testing.T) {
	p := newProject(t)
	code, out, errOut := p.run(t, "run", "--ui", "plain")
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d\nstdout:\n%s\nstderr:\n%s", ExitOK, code, out, errOut)
	}
	if !strings.Contains(out, "Total: 4 | Completed: 0 | Skipped: 0 | Pending: 4") {
		t.Fatalf("missing plan line:\n%s", out)
	}
	if !strings.Contains(out, "Succeeded: 2 | Partial: 1 | Failed: 0 | Skipped: 1") {
		t.Fatalf("unexpected counts:\n%s", out)
	}
	if !strings.Contains(out, "WARNING: 1 items failed") {
		t.Fatalf("missing failure warning:\n%s", out)
	}

	results := p.artifact(t, captioningDir+"results.json")
	if got := keys(results); got != "000000001,000000002,000000003" {
		t.Fatalf("unexpected result ids %s", got)
	}
	if !checkpoint.IsFailure(results["000000003"]) || checkpoint.IsFailure(results["000000001"]) {
		t.Fatalf("unexpected results %v", results)
	}
	if got := keys(p.artifact(t, captioningDir+"translate.json")); got != "000000001,000000002,000000003" {
		t.Fatalf("translation must be kept for the failed item, got %s", got)
	}
	if got := keys(p.artifact(t, captioningDir+"failures.json")); got != "000000003" {
		t.Fatalf("unexpected failures %s", got)
	}
	if got := keys(p.artifact(t, "data/captioning.json")); got != "000000001,000000002,000000003" {
		t.Fatalf("unexpected published dataset %s", got)
	}
}

// TestRunContinueRetriesOnlyUnfinishedItems verifies resume semantics.
func TestRunContinueRetriesOnlyUnfinishedItems(t *testing.T) {
	p := newProject(t)
	if code, out, errOut := p.run(t, "run", "--ui", "plain"); code != ExitOK {
		t.Fatalf("first run failed: %d\n%s\n%s", code, out, errOut)
	}
	p.failing.Store(false)
	before := p.calls.Load()

	code, out, errOut := p.run(t, "run", "--ui", "plain", "--on-existing", "continue")
	if code != ExitOK {
		t.Fatalf("second run failed: %d\n%s\n%s", code, out, errOut)
	}
	if !strings.Contains(out, "Total: 4 | Completed: 2 | Skipped: 0 | Pending: 2") {
		t.Fatalf("unexpected plan line:\n%s", out)
	}
	if calls := p.calls.Load() - before; calls != 1 {
		t.Fatalf("expected one oracle call for the failed item, got %d", calls)
	}
	if strings.Contains(out, "WARNING") {
		t.Fatalf("failure channel must reflect only this run:\n%s", out)
	}
	if got := keys(p.artifact(t, captioningDir+"failures.json")); got != "" {
		t.Fatalf("expected empty failures, got %s", got)
	}
	if results := p.artifact(t, captioningDir+"results.json"); checkpoint.IsFailure(results["000000003"]) {
		t.Fatalf("latest record must win: %s", results["000000003"])
	}

	code, out, _ = p.run(t, "run", "--ui", "plain", "--start", "1", "--end", "3")
	if code != ExitOK || !strings.Contains(out, "All tasks already completed.") {
		t.Fatalf("expected nothing pending, code=%d:\n%s", code, out)
	}
}

// TestRunPromptRestart verifies the interactive prompt re-asks and restarts.
func TestRunPromptRestart(t *testing.T) {
	p := newProject(t)
	p.failing.Store(false)
	if code, out, errOut := p.run(t, "run", "--ui", "plain"); code != ExitOK {
		t.Fatalf("first run failed: %d\n%s\n%s", code, out, errOut)
	}
	original := runInput
	runInput = strings.NewReader("maybe\nY\n")
	t.Cleanup(func() { runInput = original })

	code, out, errOut := p.run(t, "run", "--ui", "plain", "--on-existing", "prompt")
	if code != ExitOK {
		t.Fatalf("restart run failed: %d\n%s\n%s", code, out, errOut)
	}
	if !strings.Contains(out, "Detected existing completed data (3 items)") || !strings.Contains(out, "Invalid input. Please enter 'Y' or 'N'.") {
		t.Fatalf("unexpected prompt output:\n%s", out)
	}
	if !strings.Contains(out, "Total: 4 | Completed: 0 | Skipped: 0 | Pending: 4") {
		t.Fatalf("restart must discard the checkpoint:\n%s", out)
	}
}

// TestRunInterrupted verifies a signal before dispatch exits with 130.
func TestRunInterrupted(t *testing.T) {
	p := newProject(t)
	cancelledSignals(t)
	code, out, errOut := p.run(t, "run", "--ui", "plain")
	if code != ExitInterrupted {
		t.Fatalf("expected exit %d, got %d\n%s\n%s", ExitInterrupted, code, out, errOut)
	}
	if !strings.Contains(errOut, "Interrupted") {
		t.Fatalf("unexpected stderr:\n%s", errOut)
	}
}

// TestRunRejectsBadFlags verifies usage errors for invalid overrides.
func TestRunRejectsBadFlags(t *testing.T) {
	p := newProject(t)
	cases := [][]string{
		{"run", "--ui", "fancy"},
		{"run", "--task", "generation/audio"},
		{"run", "--start", "5", "--end", "2"},
		{"run", "--on-existing", "sometimes"},
	}
	for _, args := range cases {
		if code, _, _ := p.run(t, args...); code != ExitUsage {
			t.Fatalf("%v: expected exit %d, got %d", args, ExitUsage, code)
		}
	}
}
