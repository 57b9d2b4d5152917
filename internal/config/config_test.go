package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"vlmbench/internal/spec"
)

func TestLoadAppliesDefaultsAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("API_BASE_URL", "http://oracle.local/v1")
	writeFile(t, filepath.Join(dir, ".env"), "VLMBENCH_LOAD_KEY=from-dotenv\n")
	writeFile(t, filepath.Join(dir, ConfigFileName), `version: 1
model: qwen-vl
oracle:
  api_key_env: VLMBENCH_LOAD_KEY
metadata:
  dir: meta
run:
  task: generation
  subtask: captioning
  start: 1
  end: 5
  halt_on_inconsistency: true
`)

	cfg, err := Load(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Oracle.Backend != "api" || cfg.Oracle.BaseURL != "http://oracle.local/v1" {
		t.Fatalf("unexpected oracle defaults %+v", cfg.Oracle)
	}
	if APIKey(cfg) != "from-dotenv" {
		t.Fatalf("expected api key from .env, got %q", APIKey(cfg))
	}
	if cfg.Metadata.Dir != filepath.Join(dir, "meta") || cfg.Data.OutputDir != filepath.Join(dir, DefaultOutputDir) {
		t.Fatalf("paths not resolved: %q %q", cfg.Metadata.Dir, cfg.Data.OutputDir)
	}
	if cfg.Run.OnExisting != "prompt" || !cfg.Run.HaltOnInconsistency || cfg.Metadata.Language != "en" || cfg.RateLimiter.Mode != "disabled" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VLMBENCH_MODEL", "internvl")
	t.Setenv("API_KEY", "k")
	writeFile(t, filepath.Join(dir, ConfigFileName), `version: 1
model: ${VLMBENCH_MODEL}
oracle:
  backend: local
metadata:
  dir: meta
`)
	cfg, err := Load(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model != "internvl" {
		t.Fatalf("expected expanded model, got %q", cfg.Model)
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	cfg := validConfig(t)
	if err := Validate(&cfg, "."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCollectsIssues(t *testing.T) {
	cfg := validConfig(t)
	cfg.Version = 2
	cfg.Model = ""
	cfg.Metadata.Kind = "postgres"
	cfg.Run.OnExisting = "overwrite"
	cfg.Run.Start, cfg.Run.End = 10, 2

	err := Validate(&cfg, ".")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	for _, field := range []string{"version", "model", "metadata.kind", "run.on_existing", "run.end"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("expected %s issue in %q", field, err.Error())
		}
	}
}

func TestValidateRequiresEvaluatorForEvaluationTasks(t *testing.T) {
	cfg := validConfig(t)
	cfg.Run.Task, cfg.Run.Subtask = "evaluation", "captioning"
	if err := Validate(&cfg, "."); err == nil || !strings.Contains(err.Error(), "evaluator") {
		t.Fatalf("expected evaluator issue, got %v", err)
	}
	cfg.Evaluator = "gpt-4o"
	if err := Validate(&cfg, "."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := validConfig(t)
	cfg.Oracle.APIKeyEnv = "VLMBENCH_UNSET_KEY"
	if err := Validate(&cfg, "."); err == nil || !strings.Contains(err.Error(), "VLMBENCH_UNSET_KEY") {
		t.Fatalf("expected api key issue, got %v", err)
	}
}

func TestValidateEmbeddedRateLimiterNeedsLimits(t *testing.T) {
	cfg := validConfig(t)
	cfg.RateLimiter.Mode = "embedded"
	if err := Validate(&cfg, "."); err == nil || !strings.Contains(err.Error(), "rate_limiter") {
		t.Fatalf("expected rate limiter issue, got %v", err)
	}
	cfg.RateLimiter.RequestsPerMinute = 60
	if err := Validate(&cfg, "."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateMissingSchemaFile(t *testing.T) {
	cfg := validConfig(t)
	cfg.Oracle.ResponseSchemas = map[string]string{"classify": filepath.Join(t.TempDir(), "missing.json")}
	if err := Validate(&cfg, "."); err == nil || !strings.Contains(err.Error(), "response_schemas.classify") {
		t.Fatalf("expected schema issue, got %v", err)
	}
}

func TestPaths(t *testing.T) {
	cfg := spec.Config{Model: "m", Evaluator: "judge", Data: spec.DataConfig{OutputDir: "/out"}}
	if got := RunDir(cfg, "prediction", "vqa"); got != "/out/prediction/vqa/m" {
		t.Fatalf("unexpected run dir %q", got)
	}
	if got := UpstreamArtifactPath(cfg, "prediction/captioning"); got != "/out/prediction/captioning/m/results.json" {
		t.Fatalf("unexpected upstream path %q", got)
	}
	if got := DatasetPath(cfg, "vqa"); got != "/out/vqa.json" {
		t.Fatalf("unexpected dataset path %q", got)
	}
	cfg.Data.Datasets.VQA = "/bench/vqa.json"
	if got := DatasetPath(cfg, "vqa"); got != "/bench/vqa.json" {
		t.Fatalf("explicit dataset path ignored: %q", got)
	}
	if OracleModel(cfg, true) != "judge" || OracleModel(cfg, false) != "m" {
		t.Fatalf("unexpected oracle model")
	}
}

func TestFindConfigPathSearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "version: 1\n")
	nested := filepath.Join(root, "a", "b")
	writeFile(t, filepath.Join(nested, "keep"), "")

	got, err := FindConfigPath(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != filepath.Join(root, ConfigFileName) {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestScaffoldWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := Scaffold(path); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	if err := Scaffold(path); err == nil {
		t.Fatalf("expected error when config exists")
	}
	t.Setenv("API_BASE_URL", "http://oracle.local/v1")
	t.Setenv("API_KEY", "k")
	if _, err := Load(path); err != nil {
		t.Fatalf("scaffolded config must load: %v", err)
	}
}
