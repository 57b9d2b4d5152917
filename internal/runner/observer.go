package runner

import "time"

// ItemEventType identifies an item status update for observers.
type ItemEventType string

const (
	// ItemQueued marks an item submitted to the scheduler.
	ItemQueued ItemEventType = "queued"
	// ItemReserving marks a reserve attempt in progress.
	ItemReserving ItemEventType = "reserving"
	// ItemWaitingRateLimit marks a reserve denial with retry_after_ms.
	ItemWaitingRateLimit ItemEventType = "waiting_rate_limit"
	// ItemWaitingLimiterError marks a reserve error retry.
	ItemWaitingLimiterError ItemEventType = "waiting_limiter_error"
	// ItemRunning marks an item whose pipeline is executing.
	ItemRunning ItemEventType = "running"
	// ItemSucceeded marks an item whose every step produced a value.
	ItemSucceeded ItemEventType = "succeeded"
	// ItemPartial marks an item that failed after some steps produced values.
	ItemPartial ItemEventType = "partial"
	// ItemFailed marks an item that produced no value.
	ItemFailed ItemEventType = "failed"
	// ItemSkipped marks an item excluded or unlabeled in the metadata store.
	ItemSkipped ItemEventType = "skipped"
	// ItemDropped marks a queued item abandoned by shutdown.
	ItemDropped ItemEventType = "dropped"
)

// ItemEvent carries a single status update for an item.
type ItemEvent struct {
	Task         string
	ID           string
	Type         ItemEventType
	RetryAfterMs int
	// Step names the failing step of a partial or failed item.
	Step      string
	Error     string
	WallTime  time.Duration
	EmittedAt time.Time
}

// Terminal reports whether the event ends an item's lifecycle.
func (t ItemEventType) Terminal() bool {
	switch t {
	case ItemSucceeded, ItemPartial, ItemFailed, ItemSkipped, ItemDropped:
		return true
	}
	return false
}

// RunObserver receives run lifecycle events for UI or logging.
type RunObserver interface {
	// OnRunStart signals the start of a run with its work plan.
	OnRunStart(runID string, plan Plan)
	// OnItemEvent delivers an item status update.
	OnItemEvent(event ItemEvent)
	// OnRunEnd signals run completion.
	OnRunEnd(summary Summary)
}

type nopObserver struct{}

func (nopObserver) OnRunStart(string, Plan)  {}
func (nopObserver) OnItemEvent(ItemEvent)    {}
func (nopObserver) OnRunEnd(Summary)         {}
