package ratelimiter

import "time"

// requeueRequest carries a job and its next eligible time.
type requeueRequest struct {
	job       Job
	notBefore time.Time
}

// run drives the scheduler loop until shutdown.
func (s *Scheduler) run() {
	timer := time.NewTimer(s.idleInterval)
	defer timer.Stop()

	for {
		s.state.promoteReady(s.now())
		s.dispatchReady()
		resetTimer(timer, s.nextWakeDelay())

		select {
		case <-s.stopCh:
			s.drain()
			close(s.workCh)
			close(s.doneCh)
			return
		case job := <-s.submitCh:
			s.state.enqueueReady(job)
		case msg := <-s.requeueCh:
			s.state.enqueueBlocked(msg.job, msg.notBefore)
		case <-timer.C:
		}
	}
}

// drain drops every job that has not been handed to a worker.
func (s *Scheduler) drain() {
	for _, job := range s.state.takeAll() {
		dropJob(job)
	}
	for {
		select {
		case job := <-s.submitCh:
			dropJob(job)
		default:
			return
		}
	}
}

// drainRequeues drops requeues that raced with shutdown. It runs after the
// workers have exited.
func (s *Scheduler) drainRequeues() {
	for {
		select {
		case msg := <-s.requeueCh:
			dropJob(msg.job)
		default:
			return
		}
	}
}

// dispatchReady sends available work to workers.
func (s *Scheduler) dispatchReady() {
	for len(s.workCh) < cap(s.workCh) {
		job, ok := s.state.nextReady()
		if !ok {
			return
		}
		s.workCh <- job
	}
}

// requeue schedules a job to be retried later, or drops it after shutdown.
func (s *Scheduler) requeue(job Job, notBefore time.Time) {
	msg := requeueRequest{job: job, notBefore: notBefore}
	select {
	case <-s.doneCh:
		dropJob(job)
	case s.requeueCh <- msg:
	}
}

// nextWakeDelay computes the delay until the next blocked job is ready.
func (s *Scheduler) nextWakeDelay() time.Duration {
	next, ok := s.state.nextBlockedTime()
	if !ok {
		return s.idleInterval
	}
	delay := next.Sub(s.now())
	if delay < 0 {
		return 0
	}
	return delay
}

func resetTimer(timer *time.Timer, delay time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(delay)
}

func dropJob(job Job) {
	if job.OnDrop != nil {
		job.OnDrop()
	}
}
