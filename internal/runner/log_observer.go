package runner

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// LogObserver reports run progress through a structured logger. It backs the
// plain UI mode.
type LogObserver struct {
	Logger *slog.Logger

	total    atomic.Int64
	finished atomic.Int64
}

// NewLogObserver returns a LogObserver writing to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) OnRunStart(runID string, plan Plan) {
	o.total.Store(int64(len(plan.Pending)))
	o.Logger.Info("run started", "run_id", runID, "task", plan.Task, "model", plan.Model,
		"pending", len(plan.Pending), "workers", plan.Workers)
}

func (o *LogObserver) OnItemEvent(event ItemEvent) {
	switch event.Type {
	case ItemWaitingRateLimit:
		o.Logger.Debug("item rate limited", "id", event.ID, "retry_after_ms", event.RetryAfterMs)
		return
	case ItemWaitingLimiterError:
		o.Logger.Debug("limiter error, retrying", "id", event.ID)
		return
	}
	if !event.Type.Terminal() {
		return
	}
	done := o.finished.Add(1)
	attrs := []any{"id", event.ID, "status", string(event.Type), "done", done, "of", o.total.Load()}
	switch event.Type {
	case ItemPartial, ItemFailed:
		attrs = append(attrs, "step", event.Step, "error", event.Error)
		o.Logger.Warn("item finished", attrs...)
	case ItemDropped:
		o.Logger.Debug("item dropped", "id", event.ID)
	default:
		attrs = append(attrs, "elapsed", event.WallTime.Round(time.Millisecond))
		o.Logger.Info("item finished", attrs...)
	}
}

func (o *LogObserver) OnRunEnd(summary Summary) {
	o.Logger.Info("run finished",
		"run_id", summary.RunID,
		"succeeded", summary.Succeeded,
		"partial", summary.Partial,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"dropped", summary.Dropped,
		"elapsed", summary.Elapsed.Round(time.Millisecond),
	)
}
