package config

import (
	"fmt"
	"os"
	"strings"

	"vlmbench/internal/spec"
	"vlmbench/internal/tasks"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

type issueAdder func(field, message string)

// Validate checks a normalized config for correctness and referenced files.
func Validate(cfg *spec.Config, baseDir string) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if cfg.Version == 0 {
		add("version", "is required")
	} else if cfg.Version != 1 {
		add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}
	if strings.TrimSpace(cfg.Model) == "" {
		add("model", "is required")
	}
	validateOracle(cfg, add)
	validateMetadata(cfg, add)
	validateRun(cfg, add)
	validateRateLimiter(cfg, add)

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		add("logging.level", "must be one of debug, info, warn, error")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func validateOracle(cfg *spec.Config, add issueAdder) {
	switch cfg.Oracle.Backend {
	case "api":
		if strings.TrimSpace(cfg.Oracle.BaseURL) == "" {
			add("oracle.base_url", "is required for the api backend (or set "+DefaultBaseURLEnv+")")
		}
		if APIKey(*cfg) == "" {
			add("oracle.api_key_env", fmt.Sprintf("environment variable %s is empty", cfg.Oracle.APIKeyEnv))
		}
	case "local":
	default:
		add("oracle.backend", "must be one of api, local")
	}
	if t := cfg.Oracle.Temperature; t != nil && (*t < 0 || *t > 2) {
		add("oracle.temperature", "must be between 0 and 2")
	}
	if cfg.Oracle.MaxTokens < 0 {
		add("oracle.max_tokens", "must be >= 0")
	}
	if cfg.Oracle.RequestTimeoutSeconds < 0 {
		add("oracle.request_timeout_seconds", "must be >= 0")
	}
	if cfg.Oracle.CallTimeoutSeconds < 0 {
		add("oracle.call_timeout_seconds", "must be >= 0")
	}
	if cfg.Oracle.MaxImageSide < 0 {
		add("oracle.max_image_side", "must be >= 0")
	}
	for step, path := range cfg.Oracle.ResponseSchemas {
		if _, err := os.Stat(path); err != nil {
			add("oracle.response_schemas."+step, fmt.Sprintf("schema file %q not found", path))
		}
	}
}

func validateMetadata(cfg *spec.Config, add issueAdder) {
	switch cfg.Metadata.Kind {
	case "dir":
		if cfg.Metadata.Dir == "" {
			add("metadata.dir", "is required when kind is dir")
		}
	case "sqlite":
		if cfg.Metadata.SQLitePath == "" {
			add("metadata.sqlite_path", "is required when kind is sqlite")
		}
	case "redis":
		if strings.TrimSpace(cfg.Metadata.RedisURL) == "" {
			add("metadata.redis_url", "is required when kind is redis")
		}
	default:
		add("metadata.kind", "must be one of dir, sqlite, redis")
	}
	switch cfg.Metadata.Language {
	case "en", "cn":
	default:
		add("metadata.language", "must be one of en, cn")
	}
}

func validateRun(cfg *spec.Config, add issueAdder) {
	if cfg.Run.Task != "" || cfg.Run.Subtask != "" {
		def, err := tasks.Lookup(cfg.Run.Task, cfg.Run.Subtask)
		if err != nil {
			add("run.task", err.Error())
		} else {
			if def.NeedsEvaluator && strings.TrimSpace(cfg.Evaluator) == "" {
				add("evaluator", "is required for "+def.Name())
			}
			if def.Source == tasks.FromDataset && cfg.Data.ImageDir == "" {
				add("data.image_dir", "is required for "+def.Name())
			}
		}
	}
	if cfg.Run.Start < 0 {
		add("run.start", "must be >= 0")
	}
	if cfg.Run.End < 0 {
		add("run.end", "must be >= 0")
	}
	if cfg.Run.End < cfg.Run.Start {
		add("run.end", "must be >= run.start")
	}
	if cfg.Run.Workers < 0 {
		add("run.workers", "must be >= 0")
	}
	switch cfg.Run.OnExisting {
	case "prompt", "restart", "continue":
	default:
		add("run.on_existing", "must be one of prompt, restart, continue")
	}
}

func validateRateLimiter(cfg *spec.Config, add issueAdder) {
	switch cfg.RateLimiter.Mode {
	case "disabled":
	case "embedded":
		if cfg.RateLimiter.RequestsPerMinute <= 0 && cfg.RateLimiter.MaxConcurrency <= 0 {
			add("rate_limiter", "requests_per_minute or max_concurrency is required when mode is embedded")
		}
	default:
		add("rate_limiter.mode", "must be one of disabled, embedded")
	}
	if cfg.RateLimiter.RequestsPerMinute < 0 {
		add("rate_limiter.requests_per_minute", "must be >= 0")
	}
	if cfg.RateLimiter.MaxConcurrency < 0 {
		add("rate_limiter.max_concurrency", "must be >= 0")
	}
}
