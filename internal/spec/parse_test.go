package spec

import "testing"

// TestParseConfigValid verifies valid config parsing succeeds.
func TestParseConfigValid(t *testing.T) {
	data := []byte(`version: 1
model: qwen-vl-max
oracle:
  backend: api
  temperature: 0.2
metadata:
  kind: dir
  dir: ./meta
data:
  output_dir: ./data
run:
  task: generation
  subtask: captioning
  start: 0
  end: 99
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if cfg.Oracle.Temperature == nil || *cfg.Oracle.Temperature != 0.2 {
		t.Fatalf("expected temperature to be parsed, got %v", cfg.Oracle.Temperature)
	}
	if cfg.Run.End != 99 || cfg.Metadata.Kind != "dir" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

// TestParseConfigUnknownField verifies unknown fields are rejected.
func TestParseConfigUnknownField(t *testing.T) {
	data := []byte(`version: 1
model: qwen-vl-max
unknown: true
`)
	if _, err := ParseConfig(data); err == nil {
		t.Fatalf("expected parse error for unknown field")
	}
}

// TestParseConfigRejectsMultipleDocs verifies multiple YAML docs are rejected.
func TestParseConfigRejectsMultipleDocs(t *testing.T) {
	data := []byte("version: 1\n---\nversion: 1\n")
	if _, err := ParseConfig(data); err == nil {
		t.Fatalf("expected parse error for multiple documents")
	}
}
