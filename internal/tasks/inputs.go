package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"vlmbench/internal/checkpoint"
)

// ErrMissingInput reports that a dataset or upstream artifact gating a task
// has not been produced yet.
var ErrMissingInput = errors.New("task input missing")

// Inputs holds the per-id inputs of a gated task. The zero value is ungated:
// every id is admitted and carries no input.
type Inputs struct {
	gated   bool
	entries map[string]json.RawMessage
	// Dropped counts upstream entries excluded because they were failures.
	Dropped int
}

// LoadInputs reads a consolidated artifact and gates on its ids. Failure
// markers are not admitted.
func LoadInputs(path string) (Inputs, error) {
	entries, err := checkpoint.LoadArtifact(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Inputs{}, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return Inputs{}, err
	}
	in := Inputs{gated: true, entries: make(map[string]json.RawMessage, len(entries))}
	for id, payload := range entries {
		if checkpoint.IsFailure(payload) {
			in.Dropped++
			continue
		}
		in.entries[id] = payload
	}
	return in, nil
}

// Gated reports whether ids are restricted to the loaded entries.
func (in Inputs) Gated() bool {
	return in.gated
}

// Admits reports whether id may be processed.
func (in Inputs) Admits(id string) bool {
	if !in.gated {
		return true
	}
	_, ok := in.entries[id]
	return ok
}

// Get returns the input for id.
func (in Inputs) Get(id string) json.RawMessage {
	return in.entries[id]
}

// Len returns the number of admitted ids of a gated input.
func (in Inputs) Len() int {
	return len(in.entries)
}
