package cli

import (
	"bytes"
	"strings"
	"testing"
)

// TestRunPrintsUsageWithoutArgs verifies the usage exit path.
func TestRunPrintsUsageWithoutArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run(nil, &out, &errOut); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	for _, name := range []string{"run", "distribution", "consolidate", "categories", "export", "validate", "init", "import-metadata"} {
		if !strings.Contains(out.String(), "  "+name+" ") {
			t.Fatalf("usage is missing %s:\n%s", name, out.String())
		}
	}
}

// TestRunUnknownCommand verifies unknown commands are usage errors.
func TestRunUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run([]string{"bogus"}, &out, &errOut); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(errOut.String(), "Unknown command: bogus") {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

// TestCommandHelp verifies --help prints command usage.
func TestCommandHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run([]string{"run", "--help"}, &out, &errOut); code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	if !strings.Contains(out.String(), "vlmbench run") {
		t.Fatalf("unexpected help %q", out.String())
	}
}

// TestUnexpectedArguments verifies positional arguments are rejected.
func TestUnexpectedArguments(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run([]string{"validate", "extra"}, &out, &errOut); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
}

func TestTaskFlagSplit(t *testing.T) {
	task, subtask, ok, err := taskFlag{value: "prediction/vqa"}.split()
	if err != nil || !ok || task != "prediction" || subtask != "vqa" {
		t.Fatalf("unexpected split %q %q %v %v", task, subtask, ok, err)
	}
	if _, _, ok, err := (taskFlag{}).split(); ok || err != nil {
		t.Fatalf("empty flag must be unset")
	}
	if _, _, _, err := (taskFlag{value: "vqa"}).split(); err == nil {
		t.Fatalf("expected error for missing subtask")
	}
}

func TestResumeProvider(t *testing.T) {
	for _, policy := range []string{"", "prompt", "restart", "Continue"} {
		if _, err := resumeProvider(policy, &bytes.Buffer{}); err != nil {
			t.Fatalf("policy %q: %v", policy, err)
		}
	}
	if _, err := resumeProvider("sometimes", &bytes.Buffer{}); err == nil {
		t.Fatalf("expected invalid policy error")
	}
}
