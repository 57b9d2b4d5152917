package oracle

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaSet validates structured responses per pipeline step.
type SchemaSet struct {
	schemas map[string]*jsonschema.Schema
}

// CompileSchemaFiles compiles one schema file per step name.
func CompileSchemaFiles(paths map[string]string) (*SchemaSet, error) {
	set := &SchemaSet{schemas: map[string]*jsonschema.Schema{}}
	for step, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve schema path: %w", err)
		}
		compiler := jsonschema.NewCompiler()
		schema, err := compiler.Compile("file://" + filepath.ToSlash(abs))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", step, err)
		}
		set.schemas[step] = schema
	}
	return set, nil
}

// CompileSchemaSources compiles inline schema documents keyed by step.
func CompileSchemaSources(sources map[string]string) (*SchemaSet, error) {
	set := &SchemaSet{schemas: map[string]*jsonschema.Schema{}}
	for step, source := range sources {
		compiler := jsonschema.NewCompiler()
		url := "mem://schemas/" + step + ".json"
		if err := compiler.AddResource(url, strings.NewReader(source)); err != nil {
			return nil, fmt.Errorf("load schema for %s: %w", step, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", step, err)
		}
		set.schemas[step] = schema
	}
	return set, nil
}

// Validate checks a structured value against the schema registered for
// step. Steps without a schema always pass.
func (s *SchemaSet) Validate(step string, value Value) error {
	if s == nil || value.Kind() != KindStructured {
		return nil
	}
	schema, ok := s.schemas[step]
	if !ok {
		return nil
	}
	var doc any
	if err := json.Unmarshal(value.raw, &doc); err != nil {
		return newError(ErrMalformed, step, value.Text(), err)
	}
	if err := schema.Validate(doc); err != nil {
		return newError(ErrSchema, step, value.Text(), err)
	}
	return nil
}
