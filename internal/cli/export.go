package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"vlmbench/internal/checkpoint"
	"vlmbench/internal/duckdb"
	"vlmbench/internal/tasks"
)

// runExport builds the handler for the export command.
func runExport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := newFlagSet(cmd, stderr)
		var (
			global globalFlags
			task   taskFlag
		)
		global.register(fs)
		task.register(fs)
		dbPath := fs.String("duckdb", "", "DuckDB file (default: export.duckdb_path)")
		runID := fs.String("run-id", "", "Run id recorded with the batch")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}

		sess, err := openSession(global, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to start: %v\n", err)
			return ExitError
		}
		defer sess.Close()
		def, err := sess.applyTask(task)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		if *dbPath != "" {
			sess.cfg.Export.DuckDBPath = *dbPath
		}
		if sess.cfg.Export.DuckDBPath == "" {
			fmt.Fprintln(stderr, "No DuckDB path: set export.duckdb_path or pass --duckdb")
			return ExitUsage
		}

		result, totals, err := exportSet(context.Background(), sess, def, channelSetFor(sess, def), *runID)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Exported %d entries (%d failures) as batch %s to %s\n",
			result.Entries, result.Failures, result.BatchID, sess.cfg.Export.DuckDBPath)
		for _, row := range totals {
			fmt.Fprintf(stdout, "  %-10s %d entries, %d failures\n", row.Channel, row.Entries, row.Failures)
		}
		return ExitOK
	}
}

// exportSet consolidates every channel log of set that exists and loads the
// artifacts into the configured DuckDB file. It returns the stored totals of
// the run directory after the load.
func exportSet(ctx context.Context, s *session, def tasks.Definition, set checkpoint.Set, runID string) (duckdb.Result, []duckdb.ChannelTotals, error) {
	batch := duckdb.Batch{RunID: runID, Task: def.Task, Subtask: def.Subtask, Model: s.cfg.Model}
	for _, ch := range set.Channels {
		if _, err := os.Stat(ch.Path); os.IsNotExist(err) {
			continue
		}
		artifact, stats, err := checkpoint.Consolidate(ch.Path)
		if err != nil {
			return duckdb.Result{}, nil, fmt.Errorf("consolidate %s: %w", ch.Name, err)
		}
		if stats.Malformed > 0 {
			s.logger.Warn("malformed log lines skipped", "channel", ch.Name, "count", stats.Malformed)
		}
		batch.Channels = append(batch.Channels, duckdb.ChannelArtifact{Channel: ch.Name, Artifact: artifact})
	}
	db, err := duckdb.Open(ctx, s.cfg.Export.DuckDBPath)
	if err != nil {
		return duckdb.Result{}, nil, err
	}
	defer db.Close()
	result, err := duckdb.Export(ctx, db, batch)
	if err != nil {
		return duckdb.Result{}, nil, err
	}
	s.logger.Info("artifacts exported", "path", s.cfg.Export.DuckDBPath, "batch_id", result.BatchID, "entries", result.Entries)
	totals, err := duckdb.Totals(ctx, db, def.Task, def.Subtask, s.cfg.Model)
	if err != nil {
		return result, nil, err
	}
	return result, totals, nil
}
