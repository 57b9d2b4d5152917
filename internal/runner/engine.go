package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"vlmbench/internal/checkpoint"
	"vlmbench/internal/classify"
	"vlmbench/internal/itemid"
	"vlmbench/internal/metrics"
	"vlmbench/internal/pipeline"
	"vlmbench/internal/resume"
	"vlmbench/internal/tasks"
	"vlmbench/pkg/ratelimiter"
)

// ErrInterrupted is returned when the run context ends before every pending
// item finished. Finished items are recorded.
var ErrInterrupted = errors.New("run interrupted")

// Engine runs one task over an id range.
type Engine struct {
	Task     tasks.Definition
	Pipeline pipeline.Pipeline
	Set      checkpoint.Set
	// Classifier is required for tasks sourced from metadata.
	Classifier *classify.Classifier
	// Inputs gates dataset and upstream driven tasks. The zero value admits
	// every id.
	Inputs tasks.Inputs
	// Provider and Model key the rate limits.
	Provider string
	Model    string
	Limiter  ratelimiter.Limiter
	Workers  int
	Resume   resume.DecisionProvider
	Observer RunObserver
	Logger   *slog.Logger
	// PublishPath receives a copy of the primary artifact after the run.
	PublishPath string
	// HaltOnInconsistency makes a label without an info record stop the run
	// after that id's failure markers are recorded.
	HaltOnInconsistency bool
	// RunID defaults to NewRunID.
	RunID func() (string, error)
	Now   func() time.Time

	openWriters func(checkpoint.Set) (*checkpoint.Writers, error)
}

func (e *Engine) defaults() {
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.Observer == nil {
		e.Observer = nopObserver{}
	}
	if e.Limiter == nil {
		e.Limiter = ratelimiter.NoopLimiter
	}
	if e.Workers <= 0 {
		e.Workers = 1
	}
	if e.RunID == nil {
		e.RunID = NewRunID
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.openWriters == nil {
		e.openWriters = checkpoint.Set.Open
	}
}

// Run resolves the checkpoint, runs every pending item, and consolidates
// all channels. A fatal log write, or an inconsistency when
// HaltOnInconsistency is set, stops dispatch and is returned after
// in-flight items finish. Cancelling ctx does the same and yields
// ErrInterrupted.
func (e *Engine) Run(ctx context.Context, rng itemid.Range) (Summary, error) {
	e.defaults()
	if err := rng.Validate(); err != nil {
		return Summary{}, err
	}
	if e.Task.Source == tasks.FromMetadata && e.Classifier == nil {
		return Summary{}, fmt.Errorf("%s needs a metadata classifier", e.Task.Name())
	}
	runID, err := e.RunID()
	if err != nil {
		return Summary{}, err
	}
	logger := e.Logger.With("run_id", runID, "task", e.Task.Name())
	started := e.Now()

	lock, err := checkpoint.AcquireLock(e.Set.Dir)
	if err != nil {
		return Summary{}, err
	}
	defer lock.Release()

	cp, err := resume.Controller{Set: e.Set, Provider: e.Resume, Logger: logger}.Resolve(ctx)
	if err != nil {
		return Summary{}, err
	}
	plan, err := BuildPlan(rng, cp.Completed, e.Inputs)
	if err != nil {
		return Summary{}, err
	}
	plan.Task, plan.Model, plan.Dir, plan.Workers = e.Task.Name(), e.Model, e.Set.Dir, e.Workers
	summary := Summary{RunID: runID, Plan: plan}

	logger.Info(plan.Line(), "range", rng.String(), "workers", e.Workers)
	if e.Inputs.Dropped > 0 {
		logger.Info("upstream failures excluded from input", "count", e.Inputs.Dropped)
	}
	e.Observer.OnRunStart(runID, plan)

	var runErr error
	if len(plan.Pending) > 0 {
		runErr = e.dispatch(ctx, logger, plan, &summary)
	}

	channels, buildErr := e.Set.BuildAll()
	summary.Channels = channels
	if buildErr != nil {
		runErr = errors.Join(runErr, fmt.Errorf("consolidate: %w", buildErr))
	} else if e.PublishPath != "" {
		if err := e.publish(); err != nil {
			runErr = errors.Join(runErr, err)
		} else {
			summary.Published = e.PublishPath
		}
	}
	summary.Elapsed = e.Now().Sub(started)
	if n := summary.FailureMarkers(); n > 0 {
		logger.Warn("items failed, see failure channel", "count", n, "path", checkpoint.ArtifactPath(e.Set.Failure().Path))
	}
	e.Observer.OnRunEnd(summary)
	return summary, runErr
}

// dispatch submits every pending id and waits for the pool to drain.
func (e *Engine) dispatch(ctx context.Context, logger *slog.Logger, plan Plan, summary *Summary) error {
	if err := e.Set.ResetFailures(); err != nil {
		return fmt.Errorf("reset failure channel: %w", err)
	}
	writers, err := e.openWriters(e.Set)
	if err != nil {
		return err
	}
	defer writers.Close()

	jobs := &itemJobObserver{observer: e.Observer, task: plan.Task, now: e.Now}
	sched := ratelimiter.NewSchedulerWithObserver(e.Limiter, e.Workers, jobs)
	w := &worker{
		engine:  e,
		logger:  logger,
		writers: writers,
		jobs:    jobs,
		fatal:   make(chan struct{}),
	}
	metrics.PendingItems.Set(float64(len(plan.Pending)))

	var wg sync.WaitGroup
	for _, id := range plan.Pending {
		id := id
		if ctx.Err() != nil || w.failed() {
			break
		}
		wg.Add(1)
		jobs.emit(ItemEvent{ID: id, Type: ItemQueued})
		ok := sched.Submit(ratelimiter.Job{
			JobID:    id,
			Provider: e.Provider,
			Model:    e.Model,
			Execute: func(jobCtx context.Context) {
				defer wg.Done()
				w.process(jobCtx, id)
			},
			OnDrop: func() {
				defer wg.Done()
				jobs.emit(ItemEvent{ID: id, Type: ItemDropped})
			},
		})
		if !ok {
			wg.Done()
			break
		}
	}

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		logger.Warn("interrupted, waiting for running items", "reason", context.Cause(ctx))
	case <-w.fatal:
		logger.Error("stopping dispatch", "error", w.fatalErr())
	}
	// Running items always finish; only queued ones are dropped.
	if err := sched.Shutdown(context.Background()); err != nil {
		logger.Warn("scheduler shutdown", "error", err)
	}
	<-drained

	w.counts.fill(summary)
	summary.Dropped = len(plan.Pending) - summary.Finished()
	metrics.PendingItems.Set(float64(summary.Dropped))
	if err := w.fatalErr(); err != nil {
		return err
	}
	if ctx.Err() != nil && summary.Dropped > 0 {
		summary.Interrupted = true
		return fmt.Errorf("%w: %d of %d items not started", ErrInterrupted, summary.Dropped, len(plan.Pending))
	}
	return nil
}

func (e *Engine) publish() error {
	artifact, _, err := checkpoint.Consolidate(e.Set.Primary().Path)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := checkpoint.WriteArtifact(e.PublishPath, artifact); err != nil {
		return fmt.Errorf("publish %s: %w", e.PublishPath, err)
	}
	return nil
}
