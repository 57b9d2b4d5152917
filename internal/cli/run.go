package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"

	"vlmbench/internal/checkpoint"
	"vlmbench/internal/resume"
	"vlmbench/internal/runner"
	"vlmbench/internal/ui/live"
)

// runInput supplies answers to the resume prompt. Nil means os.Stdin.
var runInput io.Reader

// notifyContext is replaced in tests to trigger an interrupt.
var notifyContext = func(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

var warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

// runRun builds the handler for the run command.
func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := newFlagSet(cmd, stderr)
		var (
			global globalFlags
			task   taskFlag
			rng    rangeFlags
		)
		global.register(fs)
		task.register(fs)
		rng.register(fs)
		onExisting := fs.String("on-existing", "", "prompt|restart|continue (default: run.on_existing)")
		uiMode := fs.String("ui", "auto", "Output mode: auto|live|plain")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}

		decision, err := resolveUIMode(*uiMode, global.debug, stdout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}
		console := stderr
		if decision.useLive {
			console = io.Discard
		}

		sess, err := openSession(global, console)
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
		itemRange := sess.applyRange(rng)
		if err := itemRange.Validate(); err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		policy := sess.cfg.Run.OnExisting
		if strings.TrimSpace(*onExisting) != "" {
			policy = *onExisting
		}
		provider, err := resumeProvider(policy, stdout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}

		engine, err := buildEngine(sess, def, rng.workers)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to prepare %s: %v\n", def.Name(), err)
			return ExitError
		}
		engine.Resume = provider

		stopMetrics, err := sess.startMetrics()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitError
		}
		defer stopMetrics()

		var controller *live.Controller
		if decision.useLive {
			controller = live.Start(stdout, live.Options{NoColor: global.noColor})
			engine.Observer = controller
		} else {
			engine.Observer = runner.NewLogObserver(sess.logger)
		}

		ctx, stop := notifyContext(context.Background())
		defer stop()
		summary, runErr := engine.Run(ctx, itemRange)
		controller.Close()
		controller.Wait()

		if runErr == nil && sess.cfg.Export.DuckDBPath != "" {
			if _, _, err := exportSet(context.Background(), sess, def, engine.Set, summary.RunID); err != nil {
				runErr = fmt.Errorf("export: %w", err)
			}
		}

		printRunSummary(stdout, summary, global.noColor)
		switch {
		case runErr == nil:
			return ExitOK
		case errors.Is(runErr, runner.ErrInterrupted) || errors.Is(runErr, context.Canceled):
			fmt.Fprintf(stderr, "Interrupted: %v\n", runErr)
			return ExitInterrupted
		default:
			fmt.Fprintf(stderr, "Run failed: %v\n", runErr)
			return ExitError
		}
	}
}

// resumeProvider maps on_existing to a decision provider.
func resumeProvider(policy string, stdout io.Writer) (resume.DecisionProvider, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", "prompt":
		in := runInput
		if in == nil {
			in = os.Stdin
		}
		return resume.NewInteractive(in, stdout), nil
	case "restart":
		return resume.Policy(resume.Restart), nil
	case "continue":
		return resume.Policy(resume.Continue), nil
	default:
		return nil, fmt.Errorf("invalid --on-existing %q (expected prompt|restart|continue)", policy)
	}
}

func printRunSummary(w io.Writer, summary runner.Summary, noColor bool) {
	if summary.RunID == "" {
		return
	}
	plan := summary.Plan
	fmt.Fprintf(w, "Run %s: %s\n", summary.RunID, plan.Line())
	if len(plan.Pending) > 0 {
		fmt.Fprintf(w, "Succeeded: %d | Partial: %d | Failed: %d | Skipped: %d",
			summary.Succeeded, summary.Partial, summary.Failed, summary.Skipped)
		if summary.Dropped > 0 {
			fmt.Fprintf(w, " | Not started: %d", summary.Dropped)
		}
		fmt.Fprintf(w, " (%s)\n", summary.Elapsed.Round(time.Second))
	}
	for _, ch := range summary.Channels {
		fmt.Fprintf(w, "  %-10s %d items -> %s\n", ch.Channel, ch.Unique, ch.ArtifactPath)
	}
	if summary.Published != "" {
		fmt.Fprintf(w, "Published: %s\n", summary.Published)
	}
	if n := summary.FailureMarkers(); n > 0 {
		line := fmt.Sprintf("WARNING: %d items failed in this run; see %s", n, failureArtifact(summary))
		if !noColor {
			line = warningStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

func failureArtifact(summary runner.Summary) string {
	for _, ch := range summary.Channels {
		if ch.Channel == checkpoint.FailureName {
			return ch.ArtifactPath
		}
	}
	return checkpoint.FailureName
}
