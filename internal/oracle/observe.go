package oracle

import (
	"context"
	"time"
)

// CallObserver receives the outcome of each oracle call.
type CallObserver interface {
	ObserveCall(step string, outcome string, elapsed time.Duration)
}

// Observed wraps an Oracle and reports every call to observer.
type Observed struct {
	inner    Oracle
	observer CallObserver
	now      func() time.Time
}

// Observe returns inner wrapped with observer. A nil observer returns inner.
func Observe(inner Oracle, observer CallObserver) Oracle {
	if observer == nil {
		return inner
	}
	return &Observed{inner: inner, observer: observer, now: time.Now}
}

// GenerateFromText forwards to the wrapped oracle.
func (o *Observed) GenerateFromText(ctx context.Context, prompt string, opts ...Option) (Value, error) {
	start := o.now()
	value, err := o.inner.GenerateFromText(ctx, prompt, opts...)
	o.report(opts, err, start)
	return value, err
}

// GenerateFromImageAndText forwards to the wrapped oracle.
func (o *Observed) GenerateFromImageAndText(ctx context.Context, imagePath, prompt string, opts ...Option) (Value, error) {
	start := o.now()
	value, err := o.inner.GenerateFromImageAndText(ctx, imagePath, prompt, opts...)
	o.report(opts, err, start)
	return value, err
}

func (o *Observed) report(opts []Option, err error, start time.Time) {
	call := ResolveOptions(opts)
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	o.observer.ObserveCall(call.Step, outcome, o.now().Sub(start))
}
