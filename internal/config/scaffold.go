package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1
model: "qwen2.5-vl-72b-instruct"
evaluator: "gpt-4o"

oracle:
  backend: api
  base_url: "${API_BASE_URL}"
  api_key_env: API_KEY
  request_timeout_seconds: 300
  max_image_side: 1024
  response_schemas:
    classify: "schemas/classify.schema.json"

metadata:
  kind: dir
  dir: "./metadata"
  language: en

data:
  image_dir: "./images"
  output_dir: "./data"

run:
  task: generation
  subtask: captioning
  start: 1
  end: 100
  workers: 8
  on_existing: prompt
  halt_on_inconsistency: false

rate_limiter:
  mode: disabled

logging:
  level: info
`

const defaultClassifySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id"],
    "properties": {
      "id": { "type": "string", "pattern": "^C([1-9]|1[0-8])$" },
      "name": { "type": "string" }
    }
  }
}
`

// Scaffold writes a starter config and its response schema next to it.
// Existing files are never overwritten.
func Scaffold(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	schemaPath := filepath.Join(filepath.Dir(configPath), "schemas", "classify.schema.json")
	for _, path := range []string{configPath, schemaPath} {
		if info, err := os.Stat(path); err == nil {
			if info.IsDir() {
				return fmt.Errorf("path %q is a directory", path)
			}
			return fmt.Errorf("file already exists at %q", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(schemaPath), 0o755); err != nil {
		return fmt.Errorf("create schemas dir: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.WriteFile(schemaPath, []byte(defaultClassifySchema), 0o644); err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}
	return nil
}
