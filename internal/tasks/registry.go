package tasks

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"vlmbench/internal/oracle"
	"vlmbench/internal/pipeline"
)

// Source says where the items of a task come from.
type Source int

const (
	// FromMetadata items are classified against the metadata store.
	FromMetadata Source = iota
	// FromDataset items are the keys of a benchmark dataset file.
	FromDataset
)

// Definition describes one benchmark task.
type Definition struct {
	Task    string
	Subtask string
	Source  Source
	// Dataset names the dataset file gating FromDataset tasks.
	Dataset string
	// Upstream is the task/subtask whose results artifact gates the items
	// and supplies their input.
	Upstream string
	// Publish is the dataset name the results artifact is copied to after a
	// run, for tasks that produce a benchmark dataset.
	Publish string
	// NeedsEvaluator is set for tasks that call a judge model rather than the
	// model under test.
	NeedsEvaluator bool
	Build          func(env Env) pipeline.Pipeline
}

// Name returns "task/subtask".
func (d Definition) Name() string {
	return d.Task + "/" + d.Subtask
}

// Env is what a pipeline needs at run time.
type Env struct {
	Oracle   oracle.Oracle
	Language string
	ImageDir string
	Logger   *slog.Logger
}

func (e Env) imagePath(id string) string {
	return filepath.Join(e.ImageDir, id+".png")
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

var registry = map[string]Definition{}

func register(def Definition) {
	registry[def.Name()] = def
}

func init() {
	register(Definition{
		Task: "generation", Subtask: "captioning", Source: FromMetadata, Publish: "captioning",
		Build: func(env Env) pipeline.Pipeline {
			return pipeline.Pipeline{Name: "generation/captioning", Steps: []pipeline.Step{translateStep(env), summarizeStep(env)}}
		},
	})
	register(Definition{
		Task: "generation", Subtask: "classification", Source: FromMetadata,
		Build: func(env Env) pipeline.Pipeline {
			return pipeline.Pipeline{Name: "generation/classification", Steps: []pipeline.Step{translateStep(env), classifyTextStep(env)}}
		},
	})
	register(Definition{
		Task: "prediction", Subtask: "classification", Source: FromDataset, Dataset: "classification",
		Build: func(env Env) pipeline.Pipeline {
			return pipeline.Pipeline{Name: "prediction/classification", Steps: []pipeline.Step{classifyImageStep(env)}}
		},
	})
	register(Definition{
		Task: "prediction", Subtask: "captioning", Source: FromDataset, Dataset: "captioning",
		Build: func(env Env) pipeline.Pipeline {
			return pipeline.Pipeline{Name: "prediction/captioning", Steps: []pipeline.Step{captionImageStep(env)}}
		},
	})
	register(Definition{
		Task: "prediction", Subtask: "vqa", Source: FromDataset, Dataset: "vqa",
		Build: func(env Env) pipeline.Pipeline {
			return pipeline.Pipeline{Name: "prediction/vqa", Steps: []pipeline.Step{answerStep(env)}}
		},
	})
	register(Definition{
		Task: "evaluation", Subtask: "captioning", Source: FromMetadata, Upstream: "prediction/captioning", NeedsEvaluator: true,
		Build: func(env Env) pipeline.Pipeline {
			return pipeline.Pipeline{Name: "evaluation/captioning", Steps: []pipeline.Step{translateStep(env), refineStep(env), scoreStep(env)}}
		},
	})
}

// Lookup returns the definition for task and subtask.
func Lookup(task, subtask string) (Definition, error) {
	def, ok := registry[task+"/"+subtask]
	if !ok {
		return Definition{}, fmt.Errorf("unknown task %s/%s (known: %v)", task, subtask, Names())
	}
	return def, nil
}

// Names lists the registered task names in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
