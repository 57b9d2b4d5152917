package cli

import (
	"fmt"

	"vlmbench/internal/checkpoint"
	"vlmbench/internal/config"
	"vlmbench/internal/ratelimit"
	"vlmbench/internal/runner"
	"vlmbench/internal/tasks"
)

// buildEngine wires the oracle, limiter, pipeline, channel set, inputs and
// classifier for def.
func buildEngine(s *session, def tasks.Definition, workersOverride int) (*runner.Engine, error) {
	orc, model, err := s.newOracle(def)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}
	limiter, err := ratelimit.BuildLimiter(s.cfg, model)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	pipe := def.Build(tasks.Env{
		Oracle:   orc,
		Language: s.cfg.Metadata.Language,
		ImageDir: s.cfg.Data.ImageDir,
		Logger:   s.logger,
	})
	dir := config.RunDir(s.cfg, def.Task, def.Subtask)
	engine := &runner.Engine{
		Task:     def,
		Pipeline: pipe,
		Set:      runner.ChannelSet(dir, pipe.Channels()),
		Provider: s.cfg.Oracle.Backend,
		Model:    model,
		Limiter:  limiter,
		Workers:  ratelimit.ResolveWorkers(s.cfg, workersOverride),
		Logger:   s.logger,

		HaltOnInconsistency: s.cfg.Run.HaltOnInconsistency,
	}
	if def.Source == tasks.FromMetadata {
		if engine.Classifier, err = s.classifier(); err != nil {
			return nil, err
		}
	}
	if engine.Inputs, err = loadTaskInputs(s, def); err != nil {
		return nil, err
	}
	if def.Publish != "" {
		engine.PublishPath = config.DatasetPath(s.cfg, def.Publish)
	}
	return engine, nil
}

// loadTaskInputs reads the dataset or upstream artifact gating def.
func loadTaskInputs(s *session, def tasks.Definition) (tasks.Inputs, error) {
	var path string
	switch {
	case def.Dataset != "":
		path = config.DatasetPath(s.cfg, def.Dataset)
	case def.Upstream != "":
		path = config.UpstreamArtifactPath(s.cfg, def.Upstream)
	default:
		return tasks.Inputs{}, nil
	}
	inputs, err := tasks.LoadInputs(path)
	if err != nil {
		return tasks.Inputs{}, err
	}
	s.logger.Debug("task input loaded", "path", path, "ids", inputs.Len(), "dropped", inputs.Dropped)
	return inputs, nil
}

// channelSetFor returns the channel set def writes, without building an
// oracle.
func channelSetFor(s *session, def tasks.Definition) checkpoint.Set {
	pipe := def.Build(tasks.Env{Language: s.cfg.Metadata.Language, ImageDir: s.cfg.Data.ImageDir, Logger: s.logger})
	return runner.ChannelSet(config.RunDir(s.cfg, def.Task, def.Subtask), pipe.Channels())
}
