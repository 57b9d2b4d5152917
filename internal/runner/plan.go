package runner

import (
	"fmt"

	"vlmbench/internal/checkpoint"
	"vlmbench/internal/itemid"
	"vlmbench/internal/tasks"
)

// Plan is the fixed work of one run segment.
type Plan struct {
	Task  string
	Model string
	Dir   string
	Range itemid.Range
	// Total counts the ids in the range.
	Total int
	// Completed counts ids of the range already in the checkpoint.
	Completed int
	// Skipped counts ids the task input does not admit.
	Skipped int
	// Pending lists the ids to run, in numeric order.
	Pending []string
	Workers int
}

// Line renders the pre-run report.
func (p Plan) Line() string {
	if len(p.Pending) == 0 {
		return "All tasks already completed."
	}
	return fmt.Sprintf("Total: %d | Completed: %d | Skipped: %d | Pending: %d", p.Total, p.Completed, p.Skipped, len(p.Pending))
}

// BuildPlan computes the pending ids: the range minus the checkpoint minus
// ids the input does not admit. The result never changes during a run.
func BuildPlan(rng itemid.Range, completed itemid.Set, inputs tasks.Inputs) (Plan, error) {
	ids, err := rng.IDs()
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{Range: rng, Total: len(ids), Pending: make([]string, 0, len(ids))}
	for _, id := range ids {
		switch {
		case completed.Has(id):
			plan.Completed++
		case !inputs.Admits(id):
			plan.Skipped++
		default:
			plan.Pending = append(plan.Pending, id)
		}
	}
	return plan, nil
}

// ChannelSet returns the channel set a pipeline writes in dir.
func ChannelSet(dir string, channels []string) checkpoint.Set {
	aux := make([]string, 0, len(channels))
	for _, name := range channels {
		if name != checkpoint.PrimaryName && name != checkpoint.FailureName {
			aux = append(aux, name)
		}
	}
	return checkpoint.NewSet(dir, aux...)
}
