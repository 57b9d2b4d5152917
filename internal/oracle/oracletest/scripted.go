package oracletest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"vlmbench/internal/oracle"
)

// Call records one request received by a Scripted oracle.
type Call struct {
	Step      string
	Prompt    string
	ImagePath string
}

// Handler answers a call with raw model text or an error.
type Handler func(ctx context.Context, call Call) (string, error)

// Scripted is an oracle.Oracle whose answers come from per-step handlers.
// Responses pass through oracle.ParseResponse so shape handling matches the
// real client.
type Scripted struct {
	mu       sync.Mutex
	handlers map[string]Handler
	fallback Handler
	calls    []Call
	inflight atomic.Int64
	peak     atomic.Int64
}

// NewScripted returns an oracle with no handlers.
func NewScripted() *Scripted {
	return &Scripted{handlers: map[string]Handler{}}
}

// On registers the handler for step.
func (s *Scripted) On(step string, h Handler) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[step] = h
	return s
}

// Reply registers a fixed response for step.
func (s *Scripted) Reply(step, text string) *Scripted {
	return s.On(step, func(context.Context, Call) (string, error) { return text, nil })
}

// Fail registers a fixed error for step.
func (s *Scripted) Fail(step string, err error) *Scripted {
	return s.On(step, func(context.Context, Call) (string, error) { return "", err })
}

// Otherwise registers the handler for steps without their own.
func (s *Scripted) Otherwise(h Handler) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = h
	return s
}

// Calls returns a copy of every call received.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsFor counts calls for step.
func (s *Scripted) CallsFor(step string) int {
	count := 0
	for _, call := range s.Calls() {
		if call.Step == step {
			count++
		}
	}
	return count
}

// PeakConcurrency returns the largest number of simultaneous calls seen.
func (s *Scripted) PeakConcurrency() int {
	return int(s.peak.Load())
}

func (s *Scripted) GenerateFromText(ctx context.Context, prompt string, opts ...oracle.Option) (oracle.Value, error) {
	return s.answer(ctx, Call{Prompt: prompt}, opts)
}

func (s *Scripted) GenerateFromImageAndText(ctx context.Context, imagePath, prompt string, opts ...oracle.Option) (oracle.Value, error) {
	return s.answer(ctx, Call{Prompt: prompt, ImagePath: imagePath}, opts)
}

func (s *Scripted) answer(ctx context.Context, call Call, opts []oracle.Option) (oracle.Value, error) {
	current := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	resolved := oracle.ResolveOptions(opts)
	call.Step = resolved.Step

	s.mu.Lock()
	s.calls = append(s.calls, call)
	handler, ok := s.handlers[call.Step]
	if !ok {
		handler = s.fallback
	}
	s.mu.Unlock()

	if handler == nil {
		err := &oracle.Error{Kind: oracle.ErrTransport, Step: call.Step, Err: fmt.Errorf("no scripted response")}
		return oracle.Failure(err), err
	}
	text, err := handler(ctx, call)
	if err != nil {
		oe := &oracle.Error{Kind: oracle.ErrTransport, Step: call.Step, Err: err}
		return oracle.Failure(oe), oe
	}
	return oracle.ParseResponse(text, resolved)
}
