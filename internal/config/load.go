package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"vlmbench/internal/spec"
)

// Load reads, expands, parses, normalizes, and validates a config file.
// A .env file next to the config is loaded first; variables already set in
// the environment win.
func Load(path string) (spec.Config, error) {
	baseDir := filepath.Dir(path)
	if err := LoadEnvFile(filepath.Join(baseDir, ".env")); err != nil {
		return spec.Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return spec.Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := spec.ParseConfig([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return spec.Config{}, err
	}
	Normalize(&cfg, baseDir)
	if err := Validate(&cfg, baseDir); err != nil {
		return spec.Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile loads path into the environment when it exists.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
