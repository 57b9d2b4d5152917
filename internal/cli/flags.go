package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// globalFlags are accepted by every command that reads the config.
type globalFlags struct {
	configPath string
	debug      bool
	noColor    bool
	logPath    string
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "Path to config file (default: search for vlmbench.yml)")
	fs.BoolVar(&g.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&g.noColor, "no-color", false, "Disable ANSI colors")
	fs.StringVar(&g.logPath, "log", "", "Write JSON logs to a file")
}

// taskFlag selects a task/subtask, overriding run.task and run.subtask.
type taskFlag struct {
	value string
}

func (t *taskFlag) register(fs *flag.FlagSet) {
	fs.StringVar(&t.value, "task", "", "Task as task/subtask (default: run.task and run.subtask)")
}

func (t taskFlag) split() (string, string, bool, error) {
	value := strings.TrimSpace(t.value)
	if value == "" {
		return "", "", false, nil
	}
	task, subtask, ok := strings.Cut(value, "/")
	if !ok || task == "" || subtask == "" {
		return "", "", false, fmt.Errorf("invalid --task %q (expected task/subtask)", t.value)
	}
	return task, subtask, true, nil
}

// rangeFlags override the id range and worker count.
type rangeFlags struct {
	start   int
	end     int
	workers int
}

func (r *rangeFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&r.start, "start", -1, "First item index (default: run.start)")
	fs.IntVar(&r.end, "end", -1, "Last item index, inclusive (default: run.end)")
	fs.IntVar(&r.workers, "workers", 0, "Worker count (default: run.workers)")
}

// parseFlags parses args and reports the exit code to return when parsing
// did not succeed.
func parseFlags(cmd *Command, fs *flag.FlagSet, args []string, stdout, stderr io.Writer) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printCommandUsage(cmd, stdout)
			return ExitOK, false
		}
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	return ExitOK, true
}

func newFlagSet(cmd *Command, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}
