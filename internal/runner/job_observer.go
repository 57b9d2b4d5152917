package runner

import (
	"time"

	"vlmbench/pkg/ratelimiter"
)

// itemJobObserver bridges scheduler events to RunObserver callbacks. Job ids
// are item ids.
type itemJobObserver struct {
	observer RunObserver
	task     string
	now      func() time.Time
}

func (o *itemJobObserver) emit(event ItemEvent) {
	event.Task = o.task
	if event.EmittedAt.IsZero() {
		event.EmittedAt = o.now()
	}
	o.observer.OnItemEvent(event)
}

// OnReserveStart reports reserve attempts from the scheduler.
func (o *itemJobObserver) OnReserveStart(job ratelimiter.Job) {
	o.emit(ItemEvent{ID: job.JobID, Type: ItemReserving})
}

// OnReserveDenied reports reserve denials from the scheduler.
func (o *itemJobObserver) OnReserveDenied(job ratelimiter.Job, res ratelimiter.ReserveResponse) {
	o.emit(ItemEvent{ID: job.JobID, Type: ItemWaitingRateLimit, RetryAfterMs: res.RetryAfterMs, Error: res.Error})
}

// OnReserveError reports reserve errors from the scheduler.
func (o *itemJobObserver) OnReserveError(job ratelimiter.Job, err error) {
	if err == nil {
		return
	}
	o.emit(ItemEvent{ID: job.JobID, Type: ItemWaitingLimiterError, Error: err.Error()})
}
