package runner

import (
	"context"
	"log/slog"
	"sync"

	"vlmbench/internal/checkpoint"
	"vlmbench/internal/classify"
	"vlmbench/internal/metrics"
	"vlmbench/internal/pipeline"
	"vlmbench/internal/tasks"
)

// worker runs the pipeline of one item and records it. It is shared by all
// scheduler workers.
type worker struct {
	engine  *Engine
	logger  *slog.Logger
	writers *checkpoint.Writers
	jobs    *itemJobObserver
	counts  counters

	fatalOnce sync.Once
	fatal     chan struct{}
	mu        sync.Mutex
	err       error
}

func (w *worker) failed() bool {
	select {
	case <-w.fatal:
		return true
	default:
		return false
	}
}

func (w *worker) fatalErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *worker) setFatal(err error) {
	w.fatalOnce.Do(func() {
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
		close(w.fatal)
	})
}

// process classifies, executes, routes, and appends one item. Every record
// of the item is appended before process returns. Once a log write has
// failed, items the scheduler still hands out are dropped unstarted.
func (w *worker) process(ctx context.Context, id string) {
	e := w.engine
	task := e.Task.Name()
	if w.failed() {
		w.jobs.emit(ItemEvent{ID: id, Type: ItemDropped})
		return
	}
	w.jobs.emit(ItemEvent{ID: id, Type: ItemRunning})
	started := e.Now()

	item := pipeline.Item{ID: id, Input: e.Inputs.Get(id)}
	var (
		outcome pipeline.Outcome
		haltErr error
	)
	if e.Task.Source == tasks.FromMetadata {
		decision, err := e.Classifier.Classify(ctx, id)
		switch {
		case err != nil:
			w.logger.Error("metadata inconsistent", "id", id, "error", err)
			outcome = e.Pipeline.Abort(id, "classify", err)
			if e.HaltOnInconsistency {
				haltErr = err
			}
		case decision.Kind != classify.Eligible:
			w.counts.skipped.Add(1)
			metrics.ItemsTotal.WithLabelValues(task, pipeline.Skipped.String()).Inc()
			metrics.PendingItems.Dec()
			w.logger.Debug("item skipped", "id", id, "kind", decision.Kind.String())
			w.jobs.emit(ItemEvent{ID: id, Type: ItemSkipped, Error: decision.Kind.String()})
			return
		default:
			item.Decision = decision
		}
	}
	if outcome.Fault == nil {
		outcome = e.Pipeline.Execute(ctx, item)
	}

	routing := pipeline.Route(outcome, checkpoint.FailureName)
	status := routing.Status
	var writeErr error
	for _, rec := range routing.Records {
		if writeErr = w.writers.Append(rec.Channel, id, rec.Payload); writeErr != nil {
			w.setFatal(writeErr)
			break
		}
		metrics.LogAppendsTotal.WithLabelValues(rec.Channel).Inc()
	}

	event := ItemEvent{ID: id, WallTime: e.Now().Sub(started)}
	if writeErr != nil {
		status = pipeline.Failed
		event.Step = "record"
		event.Error = writeErr.Error()
		w.logger.Error("item not recorded", "id", id, "error", writeErr)
	}
	switch status {
	case pipeline.Succeeded:
		w.counts.succeeded.Add(1)
		event.Type = ItemSucceeded
	case pipeline.PartiallySucceeded:
		w.counts.partial.Add(1)
		event.Type = ItemPartial
	default:
		w.counts.failed.Add(1)
		event.Type = ItemFailed
	}
	if writeErr == nil && outcome.Fault != nil {
		event.Step = outcome.Fault.Step
		event.Error = outcome.Fault.Err.Error()
		w.logger.Warn("item failed", "id", id, "step", event.Step, "status", routing.Status.String(), "error", event.Error)
	}
	metrics.ItemsTotal.WithLabelValues(task, status.String()).Inc()
	metrics.PendingItems.Dec()
	w.jobs.emit(event)
	if haltErr != nil && writeErr == nil {
		w.setFatal(haltErr)
	}
}
