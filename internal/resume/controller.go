package resume

import (
	"context"
	"fmt"
	"log/slog"

	"vlmbench/internal/checkpoint"
	"vlmbench/internal/itemid"
)

// Checkpoint is the set of ids already completed in the primary channel.
type Checkpoint struct {
	Path      string
	Completed itemid.Set
	Stats     checkpoint.ScanStats
}

// Len returns the number of completed ids.
func (cp Checkpoint) Len() int {
	return len(cp.Completed)
}

// ComputeCheckpoint scans the primary channel of a run.
func ComputeCheckpoint(primary checkpoint.Channel) (Checkpoint, error) {
	completed, stats, err := checkpoint.ScanCompleted(primary.Path)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("compute checkpoint: %w", err)
	}
	return Checkpoint{Path: primary.Path, Completed: completed, Stats: stats}, nil
}

// Controller decides what a run starts from.
type Controller struct {
	Set      checkpoint.Set
	Provider DecisionProvider
	Logger   *slog.Logger
}

// Resolve computes the checkpoint and, when it is not empty, applies the
// provider's decision. Restart removes the run's logs and artifacts and
// returns an empty checkpoint.
func (c Controller) Resolve(ctx context.Context) (Checkpoint, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cp, err := ComputeCheckpoint(c.Set.Primary())
	if err != nil {
		return Checkpoint{}, err
	}
	if cp.Stats.Malformed > 0 {
		logger.Warn("skipped malformed checkpoint lines", "path", cp.Path, "lines", cp.Stats.Malformed)
	}
	if cp.Len() == 0 {
		return cp, nil
	}
	if c.Provider == nil {
		return Checkpoint{}, fmt.Errorf("%w: no decision provider for existing output", ErrInvalidResumeDecision)
	}
	decision, err := c.Provider.Decide(ctx, cp)
	if err != nil {
		return Checkpoint{}, err
	}
	switch decision {
	case Restart:
		if err := c.Set.Remove(); err != nil {
			return Checkpoint{}, fmt.Errorf("restart: %w", err)
		}
		logger.Info("previous results deleted, starting fresh", "dir", c.Set.Dir)
		return Checkpoint{Path: cp.Path, Completed: itemid.NewSet()}, nil
	default:
		logger.Info("continuing with existing progress", "completed", cp.Len())
		return cp, nil
	}
}
