package ratelimit

import (
	"context"
	"testing"
	"time"

	"vlmbench/internal/spec"
	"vlmbench/internal/testutil"
	"vlmbench/pkg/ratelimiter"
	"vlmbench/pkg/ratelimiter/local"
)

// TestBuildLimiterDisabledReturnsNoop ensures disabled mode returns a no-op limiter.
func TestBuildLimiterDisabledReturnsNoop(t *testing.T) {
	runWithTimeout(t, func() {
		cfg := spec.Config{RateLimiter: spec.RateLimiterConfig{Mode: "disabled"}}
		limiter, err := BuildLimiter(cfg, "qwen-vl")
		if err != nil {
			t.Fatalf("build limiter: %v", err)
		}
		if limiter != ratelimiter.NoopLimiter {
			t.Fatalf("expected noop limiter")
		}
	})
}

// TestBuildLimiterEmbeddedEnforcesConcurrency ensures embedded mode limits in-flight items.
func TestBuildLimiterEmbeddedEnforcesConcurrency(t *testing.T) {
	runWithTimeout(t, func() {
		cfg := spec.Config{
			Oracle:      spec.OracleConfig{Backend: "api", RequestTimeoutSeconds: 30},
			RateLimiter: spec.RateLimiterConfig{Mode: "embedded", MaxConcurrency: 1},
		}
		limiter, err := BuildLimiter(cfg, "qwen-vl")
		if err != nil {
			t.Fatalf("build limiter: %v", err)
		}
		if _, ok := limiter.(*local.Client); !ok {
			t.Fatalf("expected local limiter, got %T", limiter)
		}
		ctx := context.Background()
		reqs := ratelimiter.BuildCallRequirements("api", "qwen-vl")
		first, err := limiter.Reserve(ctx, ratelimiter.ReserveRequest{LeaseID: ratelimiter.NewULID(), Requirements: reqs})
		if err != nil || !first.Allowed {
			t.Fatalf("expected first reservation, got %+v err=%v", first, err)
		}
		second, err := limiter.Reserve(ctx, ratelimiter.ReserveRequest{LeaseID: ratelimiter.NewULID(), Requirements: reqs})
		if err != nil || second.Allowed {
			t.Fatalf("expected second reservation to be denied, got %+v err=%v", second, err)
		}
	})
}

// TestBuildLimiterRejectsUnknownMode ensures unsupported modes fail.
func TestBuildLimiterRejectsUnknownMode(t *testing.T) {
	runWithTimeout(t, func() {
		cfg := spec.Config{RateLimiter: spec.RateLimiterConfig{Mode: "remote"}}
		if _, err := BuildLimiter(cfg, "m"); err == nil {
			t.Fatalf("expected error for remote mode")
		}
	})
}

func TestDefinitions(t *testing.T) {
	cfg := spec.Config{
		Oracle:      spec.OracleConfig{Backend: "api", CallTimeoutSeconds: 10},
		RateLimiter: spec.RateLimiterConfig{RequestsPerMinute: 30, MaxConcurrency: 4},
	}
	defs := Definitions(cfg, "m")
	if len(defs) != 2 {
		t.Fatalf("expected two definitions, got %+v", defs)
	}
	if defs[0].Key != ratelimiter.RPMKey("api", "m") || defs[0].Capacity != 30 || defs[0].WindowSeconds != 60 {
		t.Fatalf("unexpected rpm definition %+v", defs[0])
	}
	if defs[1].Kind != ratelimiter.KindConcurrency || defs[1].TimeoutSeconds != 40 {
		t.Fatalf("unexpected concurrency definition %+v", defs[1])
	}
}

func TestResolveWorkers(t *testing.T) {
	cfg := spec.Config{Oracle: spec.OracleConfig{Backend: "api"}}
	if got := ResolveWorkers(cfg, 0); got != defaultWorkers {
		t.Fatalf("expected default workers, got %d", got)
	}
	cfg.Run.Workers = 3
	if got := ResolveWorkers(cfg, 0); got != 3 {
		t.Fatalf("expected config workers, got %d", got)
	}
	if got := ResolveWorkers(cfg, 5); got != 5 {
		t.Fatalf("expected flag override, got %d", got)
	}
	cfg.Oracle.Backend = "local"
	if got := ResolveWorkers(cfg, 5); got != 1 {
		t.Fatalf("local backend must use one worker, got %d", got)
	}
}

// runWithTimeout executes a test body with an explicit timeout.
func runWithTimeout(t *testing.T, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, 2*time.Second)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}
