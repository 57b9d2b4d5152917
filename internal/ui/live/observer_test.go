package live

import (
	"bytes"
	"testing"
	"time"
)

// TestControllerCloseWithoutRun verifies Wait returns when no run started.
func TestControllerCloseWithoutRun(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		var out bytes.Buffer
		controller := Start(&out, Options{NoColor: true})
		controller.OnItemEvent(event("000000001", "queued", time.Now()))
		controller.Close()
		controller.Close()
		controller.Wait()
		if out.Len() != 0 {
			t.Fatalf("expected no output before the run starts, got %q", out.String())
		}
	})
}

// TestNilControllerIsSafe verifies a nil controller ignores calls.
func TestNilControllerIsSafe(t *testing.T) {
	var controller *Controller
	controller.OnItemEvent(event("000000001", "queued", time.Now()))
	controller.Close()
	controller.Wait()
}
