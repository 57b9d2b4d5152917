package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"vlmbench/internal/checkpoint"
	"vlmbench/internal/config"
	"vlmbench/internal/metrics"
	"vlmbench/internal/tasks"
)

// categorySource is the task whose results hold category lists.
const categorySource = "generation/classification"

// runCategories builds the handler for the categories command.
func runCategories(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := newFlagSet(cmd, stderr)
		var global globalFlags
		global.register(flags)
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}

		sess, err := openSession(global, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to start: %v\n", err)
			return ExitError
		}
		defer sess.Close()

		source := config.UpstreamArtifactPath(sess.cfg, categorySource)
		artifact, err := checkpoint.LoadArtifact(source)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(stderr, "No %s results at %s; run that task first\n", categorySource, source)
			} else {
				fmt.Fprintf(stderr, "Failed to read %s: %v\n", source, err)
			}
			return ExitError
		}
		derived, stats := tasks.DeriveCategories(artifact, sess.logger, metrics.FallbackParsesTotal)
		target := config.DatasetPath(sess.cfg, "classification")
		if err := checkpoint.WriteArtifact(target, derived); err != nil {
			fmt.Fprintf(stderr, "Failed to write %s: %v\n", target, err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Derived categories for %d items (%d failures skipped, %d recovered by token scan) -> %s\n",
			stats.Items, stats.Failures, stats.Fallbacks, target)
		return ExitOK
	}
}
