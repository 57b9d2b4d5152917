package cli

import (
	"fmt"
	"io"
)

// runConsolidate builds the handler for the consolidate command.
func runConsolidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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

		set := channelSetFor(sess, def)
		if !set.Exists() {
			fmt.Fprintf(stderr, "No checkpoint logs in %s\n", set.Dir)
			return ExitError
		}
		summaries, err := set.BuildAll()
		if err != nil {
			fmt.Fprintf(stderr, "Consolidation failed: %v\n", err)
			return ExitError
		}
		for _, ch := range summaries {
			fmt.Fprintf(stdout, "%-10s %d records, %d items, %d failures", ch.Channel, ch.Records, ch.Unique, ch.Failures)
			if ch.Malformed > 0 {
				fmt.Fprintf(stdout, ", %d malformed lines skipped", ch.Malformed)
			}
			fmt.Fprintf(stdout, " -> %s\n", ch.ArtifactPath)
		}
		return ExitOK
	}
}
