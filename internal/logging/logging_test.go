package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesConsoleAndJSONFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, closer, err := New(Options{Level: "info", NoColor: true, File: path, Console: &console})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.With("task", "prediction/vqa").Info("item finished", "id", "000000001")
	logger.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(console.String(), "item finished") || strings.Contains(console.String(), "hidden") {
		t.Fatalf("unexpected console output %q", console.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log file is not one JSON record: %v\n%s", err, data)
	}
	if record["id"] != "000000001" || record["task"] != "prediction/vqa" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestDebugFlagOverridesLevel(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := New(Options{Level: "error", Debug: true, NoColor: true, Console: &console})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("shown")
	if !strings.Contains(console.String(), "shown") {
		t.Fatalf("expected debug output, got %q", console.String())
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error")
	}
}
