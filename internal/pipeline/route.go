package pipeline

import (
	"encoding/json"

	"vlmbench/internal/checkpoint"
)

// Status is the terminal state of an item within a run.
type Status int

const (
	Succeeded Status = iota
	PartiallySucceeded
	Failed
	// Skipped items were excluded or absent; nothing is logged for them.
	Skipped
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case PartiallySucceeded:
		return "partial"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Record is one payload destined for a channel log.
type Record struct {
	Channel string
	Payload json.RawMessage
}

// Routing is the failure classifier's decision for one item.
type Routing struct {
	ID      string
	Records []Record
	Status  Status
	Err     error
}

// Route decides which channels receive which payloads for outcome. Every step
// that produced a value is recorded in its channel; the failing step and the
// steps after it get a failure marker; failureChannel gets one marker when the
// item has a fault.
func Route(outcome Outcome, failureChannel string) Routing {
	routing := Routing{ID: outcome.ID}
	produced := 0
	var marker json.RawMessage
	if outcome.Fault != nil {
		marker = checkpoint.MarshalFailure(outcome.Fault.Step, outcome.Fault.Err)
		routing.Err = outcome.Fault
	}
	for _, result := range outcome.Results {
		ok := result.Ran && result.Err == nil
		if ok {
			produced++
		}
		if result.Step.Channel == "" {
			continue
		}
		if ok {
			routing.Records = append(routing.Records, Record{Channel: result.Step.Channel, Payload: result.Value.JSON()})
			continue
		}
		if marker != nil {
			routing.Records = append(routing.Records, Record{Channel: result.Step.Channel, Payload: marker})
		}
	}
	if marker != nil && failureChannel != "" {
		routing.Records = append(routing.Records, Record{Channel: failureChannel, Payload: marker})
	}

	switch {
	case outcome.Fault == nil:
		routing.Status = Succeeded
	case produced > 0:
		routing.Status = PartiallySucceeded
	default:
		routing.Status = Failed
	}
	return routing
}
