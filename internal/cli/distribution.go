package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vlmbench/internal/classify"
	"vlmbench/internal/config"
)

// runDistribution builds the handler for the distribution command.
func runDistribution(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := newFlagSet(cmd, stderr)
		var (
			global globalFlags
			rng    rangeFlags
		)
		global.register(fs)
		rng.register(fs)
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}

		sess, err := openSession(global, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to start: %v\n", err)
			return ExitError
		}
		defer sess.Close()
		itemRange := sess.applyRange(rng)
		ids, err := itemRange.IDs()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		classifier, err := sess.classifier()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitError
		}
		workers := rng.workers
		if workers <= 0 {
			workers = sess.cfg.Run.Workers
		}
		if workers <= 0 {
			workers = config.DefaultWorkers
		}

		ctx, stop := notifyContext(context.Background())
		defer stop()
		dist, err := classify.BuildDistribution(ctx, classifier, ids, workers)
		if err != nil {
			fmt.Fprintf(stderr, "Distribution failed: %v\n", err)
			return ExitError
		}
		path := config.DistributionPath(sess.cfg)
		if err := writeJSON(path, dist); err != nil {
			fmt.Fprintf(stderr, "Failed to write distribution: %v\n", err)
			return ExitError
		}

		fmt.Fprintf(stdout, "Range %s: %d eligible, %d excluded, %d without label\n",
			itemRange, dist.Eligible, dist.Excluded, dist.Absent)
		for _, source := range dist.SourceNames() {
			fmt.Fprintf(stdout, "  %-20s %d\n", source, len(dist.Sources[source]))
		}
		fmt.Fprintf(stdout, "Low confidence items: %d | High confidence items: %d\n", dist.Tally.Low, dist.Tally.High)
		fmt.Fprintf(stdout, "Report: %s\n", path)
		return ExitOK
	}
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
