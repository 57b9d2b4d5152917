package resume

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decision is the operator's choice when a run already has output.
type Decision int

const (
	// Continue keeps the checkpoint and processes only the remaining ids.
	Continue Decision = iota
	// Restart deletes every channel log and artifact of the run.
	Restart
)

func (d Decision) String() string {
	if d == Restart {
		return "restart"
	}
	return "continue"
}

// ErrInvalidResumeDecision reports input that is neither restart nor continue.
var ErrInvalidResumeDecision = errors.New("invalid resume decision")

// ParseDecision accepts restart/continue and the y/n answers of the prompt.
func ParseDecision(input string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes", "restart":
		return Restart, nil
	case "n", "no", "continue":
		return Continue, nil
	default:
		return Continue, fmt.Errorf("%w: %q", ErrInvalidResumeDecision, input)
	}
}

// DecisionProvider supplies the decision for an existing checkpoint.
type DecisionProvider interface {
	Decide(ctx context.Context, cp Checkpoint) (Decision, error)
}

// Policy is a fixed decision taken from config or a flag.
type Policy Decision

// Decide returns the policy decision.
func (p Policy) Decide(context.Context, Checkpoint) (Decision, error) {
	return Decision(p), nil
}

// Interactive asks the operator on a terminal until a valid answer is given.
type Interactive struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewInteractive reads answers from in and writes prompts to out.
func NewInteractive(in io.Reader, out io.Writer) *Interactive {
	return &Interactive{reader: bufio.NewReader(in), out: out}
}

// Decide prompts and re-prompts on invalid input. End of input without an
// answer is an error; it never defaults.
func (p *Interactive) Decide(ctx context.Context, cp Checkpoint) (Decision, error) {
	for {
		fmt.Fprintf(p.out, "\nDetected existing completed data (%d items) in %q.\n", cp.Len(), cp.Path)
		fmt.Fprint(p.out, "Do you want to delete previous results and restart? (Y/N): ")
		line, err := p.readLine(ctx)
		if err != nil && !errors.Is(err, io.EOF) {
			return Continue, err
		}
		if strings.TrimSpace(line) != "" {
			decision, parseErr := ParseDecision(line)
			if parseErr == nil {
				return decision, nil
			}
			if err != nil {
				return Continue, parseErr
			}
			fmt.Fprintln(p.out, "Invalid input. Please enter 'Y' or 'N'.")
			continue
		}
		if err != nil {
			return Continue, fmt.Errorf("%w: no answer before end of input", ErrInvalidResumeDecision)
		}
		fmt.Fprintln(p.out, "Invalid input. Please enter 'Y' or 'N'.")
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one line, trimming line endings, unless ctx ends first.
func (p *Interactive) readLine(ctx context.Context) (string, error) {
	done := make(chan lineResult, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		done <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.line, res.err
	}
}
