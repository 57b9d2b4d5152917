package runner

import (
	"sync/atomic"
	"time"

	"vlmbench/internal/checkpoint"
)

// Summary reports the outcome of a run segment.
type Summary struct {
	RunID string
	Plan  Plan

	Succeeded int
	Partial   int
	Failed    int
	// Skipped counts pending ids the metadata store excluded or had no
	// label for.
	Skipped int
	// Dropped counts pending ids never started because the run stopped.
	Dropped int

	Interrupted bool
	Channels    []checkpoint.Summary
	Published   string
	Elapsed     time.Duration
}

// Finished counts pending ids that reached a terminal state.
func (s Summary) Finished() int {
	return s.Succeeded + s.Partial + s.Failed + s.Skipped
}

// FailureMarkers returns the number of ids in the failure channel artifact.
func (s Summary) FailureMarkers() int {
	for _, ch := range s.Channels {
		if ch.Channel == checkpoint.FailureName {
			return ch.Unique
		}
	}
	return 0
}

// counters are updated by workers and read once the pool has drained.
type counters struct {
	succeeded atomic.Int64
	partial   atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
}

func (c *counters) fill(s *Summary) {
	s.Succeeded = int(c.succeeded.Load())
	s.Partial = int(c.partial.Load())
	s.Failed = int(c.failed.Load())
	s.Skipped = int(c.skipped.Load())
}
