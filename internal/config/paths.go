package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vlmbench/internal/spec"
)

// ConfigFileName is the config file looked up by FindConfigPath.
const ConfigFileName = "vlmbench.yml"

// FindConfigPath searches upward from a directory for a config file.
func FindConfigPath(startDir string) (string, error) {
	dir := strings.TrimSpace(startDir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	dir = abs

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(configPath)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %q is a directory", configPath)
			}
			return configPath, nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat config path %q: %w", configPath, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or parent directories", ConfigFileName, dir)
		}
		dir = parent
	}
}

// RunDir is where the logs and artifacts of one task, subtask, and model live.
func RunDir(cfg spec.Config, task, subtask string) string {
	return filepath.Join(cfg.Data.OutputDir, task, subtask, cfg.Model)
}

// UpstreamArtifactPath is the results artifact of an upstream "task/subtask"
// for the configured model.
func UpstreamArtifactPath(cfg spec.Config, upstream string) string {
	return filepath.Join(cfg.Data.OutputDir, filepath.FromSlash(upstream), cfg.Model, "results.json")
}

// DatasetPath returns the benchmark dataset file for name. Explicit paths
// in data.datasets win over <output_dir>/<name>.json.
func DatasetPath(cfg spec.Config, name string) string {
	var explicit string
	switch name {
	case "vqa":
		explicit = cfg.Data.Datasets.VQA
	case "classification":
		explicit = cfg.Data.Datasets.Classification
	case "captioning":
		explicit = cfg.Data.Datasets.Captioning
	}
	if explicit != "" {
		return explicit
	}
	return filepath.Join(cfg.Data.OutputDir, name+".json")
}

// DistributionPath is where the source distribution report is written.
func DistributionPath(cfg spec.Config) string {
	return filepath.Join(cfg.Data.OutputDir, "distribution.json")
}

// OracleModel is the model the oracle calls: the evaluator for judge tasks,
// the model under test otherwise.
func OracleModel(cfg spec.Config, needsEvaluator bool) string {
	if needsEvaluator && strings.TrimSpace(cfg.Evaluator) != "" {
		return cfg.Evaluator
	}
	return cfg.Model
}
