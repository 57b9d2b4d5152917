package live

import (
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"vlmbench/internal/runner"
)

// Controller runs the live UI and implements runner.RunObserver. The Bubble
// Tea program starts with the run so a resume prompt can use the terminal
// first.
type Controller struct {
	stdout    io.Writer
	opts      Options
	events    chan Event
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// Start returns a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Controller{
		stdout: stdout,
		opts:   opts,
		events: make(chan Event, 1024),
		done:   make(chan struct{}),
	}
}

func (c *Controller) launch() {
	c.startOnce.Do(func() {
		program := tea.NewProgram(NewModel(c.events, c.opts), tea.WithOutput(c.stdout), tea.WithInput(nil))
		go func() {
			_, _ = program.Run()
			close(c.done)
		}()
	})
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.events)
	})
	c.startOnce.Do(func() {
		close(c.done)
	})
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// OnRunStart forwards the run plan to the UI.
func (c *Controller) OnRunStart(runID string, plan runner.Plan) {
	if c == nil {
		return
	}
	c.launch()
	c.send(Event{Kind: EventRunStart, RunID: runID, Plan: plan})
}

// OnItemEvent forwards item status updates to the UI.
func (c *Controller) OnItemEvent(event runner.ItemEvent) {
	c.send(Event{Kind: EventItem, Item: event})
}

// OnRunEnd forwards run completion to the UI and closes it.
func (c *Controller) OnRunEnd(summary runner.Summary) {
	c.send(Event{Kind: EventRunEnd, Summary: summary})
	c.Close()
}

// send enqueues an event without blocking the caller. Terminal item events
// and run boundaries block so the counts stay exact.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	if event.Kind != EventItem || event.Item.Type.Terminal() {
		select {
		case c.events <- event:
		case <-c.done:
		}
		return
	}
	select {
	case c.events <- event:
	default:
	}
}

func formatRunEnd(event Event) string {
	s := event.Summary
	return fmt.Sprintf("run finished: %d succeeded, %d partial, %d failed, %d skipped",
		s.Succeeded, s.Partial, s.Failed, s.Skipped)
}
