package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vlmbench/internal/classify"
	"vlmbench/internal/oracle"
)

var errEmptyValue = errors.New("step produced no value")

// Item is the input of one pipeline execution.
type Item struct {
	ID string
	// Decision is the source classification for metadata-driven tasks.
	Decision classify.Decision
	// Input is the dataset or upstream artifact entry for gated tasks.
	Input     json.RawMessage
	ImagePath string
}

// State carries the values produced so far for one item.
type State struct {
	Item   Item
	values map[string]oracle.Value
}

// Value returns the value produced by an earlier step.
func (s *State) Value(step string) (oracle.Value, bool) {
	v, ok := s.values[step]
	return v, ok
}

// StepFunc runs one step. A returned error fails the step and stops the item.
type StepFunc func(ctx context.Context, state *State) (oracle.Value, error)

// Step is one sequential stage of an item pipeline.
type Step struct {
	Name string
	// Channel receives the step's value. Empty means the value is not logged.
	Channel string
	Run     StepFunc
}

// Pipeline is the ordered list of steps run for every item of a task.
type Pipeline struct {
	Name  string
	Steps []Step
}

// Channels returns the channels written by the pipeline's steps in order,
// without duplicates.
func (p Pipeline) Channels() []string {
	seen := map[string]bool{}
	var out []string
	for _, step := range p.Steps {
		if step.Channel == "" || seen[step.Channel] {
			continue
		}
		seen[step.Channel] = true
		out = append(out, step.Channel)
	}
	return out
}

// StepResult is the outcome of one step.
type StepResult struct {
	Step  Step
	Ran   bool
	Value oracle.Value
	Err   error
}

// Fault names the step that stopped an item.
type Fault struct {
	Step string
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %v", f.Step, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Outcome is the structured result of running a pipeline for one item.
type Outcome struct {
	ID      string
	Results []StepResult
	Fault   *Fault
	Elapsed time.Duration
}

// Execute runs the steps in order and stops at the first failing step.
// Steps after a fault are reported as not run.
func (p Pipeline) Execute(ctx context.Context, item Item) Outcome {
	started := time.Now()
	state := &State{Item: item, values: make(map[string]oracle.Value, len(p.Steps))}
	outcome := Outcome{ID: item.ID, Results: make([]StepResult, len(p.Steps))}
	for i, step := range p.Steps {
		outcome.Results[i].Step = step
		if outcome.Fault != nil {
			continue
		}
		value, err := step.Run(ctx, state)
		switch {
		case err != nil:
		case value.IsFailure():
			err = value.Err()
		case len(value.JSON()) == 0:
			err = errEmptyValue
		}
		outcome.Results[i].Ran = true
		if err != nil {
			outcome.Results[i].Err = err
			outcome.Results[i].Value = oracle.Failure(err)
			outcome.Fault = &Fault{Step: step.Name, Err: err}
			continue
		}
		outcome.Results[i].Value = value
		state.values[step.Name] = value
	}
	outcome.Elapsed = time.Since(started)
	return outcome
}

// Abort builds the outcome of an item that failed before any step ran.
func (p Pipeline) Abort(id, stage string, err error) Outcome {
	outcome := Outcome{ID: id, Results: make([]StepResult, len(p.Steps)), Fault: &Fault{Step: stage, Err: err}}
	for i, step := range p.Steps {
		outcome.Results[i].Step = step
	}
	return outcome
}
