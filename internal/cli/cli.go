package cli

import (
	"fmt"
	"io"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
	// ExitInterrupted is returned when SIGINT or SIGTERM stopped a run.
	ExitInterrupted = 130
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  vlmbench <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"vlmbench <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("init", "Scaffold vlmbench.yml and schemas", []string{
		"vlmbench init [--config <path>]",
	}, runInit),
	command("validate", "Validate vlmbench.yml and schemas", []string{
		"vlmbench validate [--config <path>]",
	}, runValidate),
	command("run", "Run a benchmark task over an id range", []string{
		"vlmbench run [--task <task/subtask>] [--start N] [--end N] [--workers N]",
		"             [--on-existing prompt|restart|continue] [--ui auto|live|plain]",
	}, runRun),
	command("import-metadata", "Copy metadata directories into the configured store", []string{
		"vlmbench import-metadata [--from <dir>] [--start N] [--end N]",
	}, runImport),
	command("distribution", "Report eligible items per metadata source", []string{
		"vlmbench distribution [--start N] [--end N] [--workers N]",
	}, runDistribution),
	command("consolidate", "Rebuild artifacts from checkpoint logs", []string{
		"vlmbench consolidate [--task <task/subtask>]",
	}, runConsolidate),
	command("categories", "Derive the classification dataset from generation output", []string{
		"vlmbench categories [--config <path>]",
	}, runCategories),
	command("export", "Load consolidated artifacts into DuckDB", []string{
		"vlmbench export [--task <task/subtask>] [--duckdb <path>] [--run-id <id>]",
	}, runExport),
}
