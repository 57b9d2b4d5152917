package resume

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vlmbench/internal/checkpoint"
)

func writeLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func runSet(t *testing.T) checkpoint.Set {
	t.Helper()
	set := checkpoint.NewSet(filepath.Join(t.TempDir(), "generation", "captioning", "m"), "translate")
	writeLog(t, set.Primary().Path,
		`{"000000001": {"description": "ok"}}`,
		`{"000000002": {"failed": "timeout", "step": "summarize"}}`,
		`{"000000003": {"description": "ok"}}`,
	)
	translate, _ := set.Lookup("translate")
	writeLog(t, translate.Path, `{"000000001": {"items": []}}`)
	return set
}

func TestInteractiveRepromptsOnInvalidInput(t *testing.T) {
	var out bytes.Buffer
	p := NewInteractive(strings.NewReader("maybe\n\nY\n"), &out)
	decision, err := p.Decide(context.Background(), Checkpoint{Path: "results.jsonl"})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decision != Restart {
		t.Fatalf("expected restart, got %s", decision)
	}
	if strings.Count(out.String(), "Invalid input") != 2 {
		t.Fatalf("expected two re-prompts, got:\n%s", out.String())
	}
}

func TestInteractiveEOFIsAnError(t *testing.T) {
	p := NewInteractive(strings.NewReader("what"), &bytes.Buffer{})
	_, err := p.Decide(context.Background(), Checkpoint{})
	if !errors.Is(err, ErrInvalidResumeDecision) {
		t.Fatalf("expected invalid decision error, got %v", err)
	}

	p = NewInteractive(strings.NewReader(""), &bytes.Buffer{})
	if _, err := p.Decide(context.Background(), Checkpoint{}); !errors.Is(err, ErrInvalidResumeDecision) {
		t.Fatalf("expected invalid decision error on empty input, got %v", err)
	}
}

func TestInteractiveAcceptsAnswerWithoutTrailingNewline(t *testing.T) {
	p := NewInteractive(strings.NewReader("n"), &bytes.Buffer{})
	decision, err := p.Decide(context.Background(), Checkpoint{})
	if err != nil || decision != Continue {
		t.Fatalf("expected continue, got %s err=%v", decision, err)
	}
}

func TestControllerContinueKeepsCheckpoint(t *testing.T) {
	set := runSet(t)
	cp, err := Controller{Set: set, Provider: Policy(Continue)}.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cp.Len() != 2 || !cp.Completed.Has("000000001") || cp.Completed.Has("000000002") {
		t.Fatalf("unexpected checkpoint %v", cp.Completed.Sorted())
	}
	if !set.Exists() {
		t.Fatalf("continue must keep the logs")
	}
}

func TestControllerRestartRemovesEveryChannel(t *testing.T) {
	set := runSet(t)
	cp, err := Controller{Set: set, Provider: Policy(Restart)}.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cp.Len() != 0 {
		t.Fatalf("restart must return an empty checkpoint")
	}
	for _, ch := range set.Channels {
		if _, err := os.Stat(ch.Path); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be removed", ch.Path)
		}
	}
}

type countingProvider struct{ calls int }

func (p *countingProvider) Decide(context.Context, Checkpoint) (Decision, error) {
	p.calls++
	return Restart, nil
}

func TestControllerSkipsDecisionWithoutOutput(t *testing.T) {
	provider := &countingProvider{}
	set := checkpoint.NewSet(t.TempDir())
	cp, err := Controller{Set: set, Provider: provider}.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cp.Len() != 0 || provider.calls != 0 {
		t.Fatalf("no decision expected for an empty run, calls=%d", provider.calls)
	}
}

func TestParseDecision(t *testing.T) {
	for input, want := range map[string]Decision{"Y": Restart, "restart": Restart, " n ": Continue, "CONTINUE": Continue} {
		got, err := ParseDecision(input)
		if err != nil || got != want {
			t.Fatalf("ParseDecision(%q) = %s, %v", input, got, err)
		}
	}
	if _, err := ParseDecision("later"); !errors.Is(err, ErrInvalidResumeDecision) {
		t.Fatalf("expected invalid decision error")
	}
}
