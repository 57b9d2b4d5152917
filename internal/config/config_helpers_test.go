package config

import (
	"os"
	"path/filepath"
	"testing"

	"vlmbench/internal/spec"
)

// validConfig returns a minimal normalized config used by validation tests.
func validConfig(t *testing.T) spec.Config {
	t.Helper()
	t.Setenv("VLMBENCH_TEST_KEY", "secret")
	return spec.Config{
		Version: 1,
		Model:   "qwen-vl",
		Oracle: spec.OracleConfig{
			Backend:   "api",
			BaseURL:   "http://localhost:8000/v1",
			APIKeyEnv: "VLMBENCH_TEST_KEY",
		},
		Metadata: spec.MetadataConfig{Kind: "dir", Dir: "./metadata", Language: "en"},
		Data:     spec.DataConfig{OutputDir: "./data"},
		Run: spec.RunConfig{
			Task:       "generation",
			Subtask:    "captioning",
			Start:      1,
			End:        10,
			OnExisting: "prompt",
		},
		RateLimiter: spec.RateLimiterConfig{Mode: "disabled"},
		Logging:     spec.LoggingConfig{Level: "info"},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
