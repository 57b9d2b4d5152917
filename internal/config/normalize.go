package config

import (
	"os"
	"path/filepath"
	"strings"

	"vlmbench/internal/spec"
)

// Defaults applied by Normalize.
const (
	DefaultBackend        = "api"
	DefaultAPIKeyEnv      = "API_KEY"
	DefaultBaseURLEnv     = "API_BASE_URL"
	DefaultMetadataKind   = "dir"
	DefaultLanguage       = "en"
	DefaultOutputDir      = "data"
	DefaultOnExisting     = "prompt"
	DefaultRequestTimeout = 300
	DefaultWorkers        = 8
)

// Normalize fills defaults and resolves relative paths against baseDir.
func Normalize(cfg *spec.Config, baseDir string) {
	lower := func(s *string, def string) {
		*s = strings.ToLower(strings.TrimSpace(*s))
		if *s == "" {
			*s = def
		}
	}
	lower(&cfg.Oracle.Backend, DefaultBackend)
	lower(&cfg.Metadata.Kind, DefaultMetadataKind)
	lower(&cfg.Metadata.Language, DefaultLanguage)
	lower(&cfg.Run.OnExisting, DefaultOnExisting)
	lower(&cfg.RateLimiter.Mode, "disabled")
	lower(&cfg.Logging.Level, "info")
	cfg.Run.Task = strings.ToLower(strings.TrimSpace(cfg.Run.Task))
	cfg.Run.Subtask = strings.ToLower(strings.TrimSpace(cfg.Run.Subtask))

	if strings.TrimSpace(cfg.Oracle.APIKeyEnv) == "" {
		cfg.Oracle.APIKeyEnv = DefaultAPIKeyEnv
	}
	if strings.TrimSpace(cfg.Oracle.BaseURL) == "" {
		cfg.Oracle.BaseURL = os.Getenv(DefaultBaseURLEnv)
	}
	if cfg.Oracle.RequestTimeoutSeconds == 0 {
		cfg.Oracle.RequestTimeoutSeconds = DefaultRequestTimeout
	}
	if strings.TrimSpace(cfg.Data.OutputDir) == "" {
		cfg.Data.OutputDir = DefaultOutputDir
	}

	resolve := func(p *string) {
		*p = resolvePath(baseDir, *p)
	}
	resolve(&cfg.Metadata.Dir)
	resolve(&cfg.Metadata.SQLitePath)
	resolve(&cfg.Data.ImageDir)
	resolve(&cfg.Data.OutputDir)
	resolve(&cfg.Data.Datasets.VQA)
	resolve(&cfg.Data.Datasets.Classification)
	resolve(&cfg.Data.Datasets.Captioning)
	resolve(&cfg.Export.DuckDBPath)
	resolve(&cfg.Logging.File)
	for step, path := range cfg.Oracle.ResponseSchemas {
		cfg.Oracle.ResponseSchemas[step] = resolvePath(baseDir, path)
	}
}

func resolvePath(baseDir, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) || strings.TrimSpace(baseDir) == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// APIKey returns the oracle API key from the configured environment variable.
func APIKey(cfg spec.Config) string {
	return strings.TrimSpace(os.Getenv(cfg.Oracle.APIKeyEnv))
}
