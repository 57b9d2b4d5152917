package ratelimit

import (
	"fmt"
	"strings"

	"vlmbench/internal/spec"
	"vlmbench/pkg/ratelimiter"
	"vlmbench/pkg/ratelimiter/local"
)

const defaultWorkers = 8

// BuildLimiter constructs the limiter guarding item dispatch for the oracle
// backend and model a run calls.
func BuildLimiter(cfg spec.Config, model string) (ratelimiter.Limiter, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.RateLimiter.Mode))
	switch mode {
	case "", "disabled":
		return ratelimiter.NoopLimiter, nil
	case "embedded":
		return local.NewLimiter(Definitions(cfg, model))
	default:
		return nil, fmt.Errorf("unsupported rate limiter mode %q", cfg.RateLimiter.Mode)
	}
}

// Definitions returns the limits configured for a backend and model.
func Definitions(cfg spec.Config, model string) []ratelimiter.LimitDefinition {
	backend := cfg.Oracle.Backend
	var defs []ratelimiter.LimitDefinition
	if rpm := cfg.RateLimiter.RequestsPerMinute; rpm > 0 {
		defs = append(defs, ratelimiter.LimitDefinition{
			Key:           ratelimiter.RPMKey(backend, model),
			Kind:          ratelimiter.KindRolling,
			Capacity:      uint64(rpm),
			WindowSeconds: 60,
		})
	}
	if conc := cfg.RateLimiter.MaxConcurrency; conc > 0 {
		timeout := cfg.Oracle.CallTimeoutSeconds
		if cfg.Oracle.RequestTimeoutSeconds > timeout {
			timeout = cfg.Oracle.RequestTimeoutSeconds
		}
		defs = append(defs, ratelimiter.LimitDefinition{
			Key:      ratelimiter.ConcurrencyKey(backend, model),
			Kind:     ratelimiter.KindConcurrency,
			Capacity: uint64(conc),
			// An item makes several calls; let a hold outlive a few of them.
			TimeoutSeconds: timeout * 4,
		})
	}
	return defs
}

// ResolveWorkers returns the worker count for a run. A positive override
// (the --workers flag) wins over run.workers. The local backend serves one
// request at a time and always gets a single worker.
func ResolveWorkers(cfg spec.Config, override int) int {
	if strings.EqualFold(cfg.Oracle.Backend, "local") {
		return 1
	}
	if override > 0 {
		return override
	}
	if cfg.Run.Workers > 0 {
		return cfg.Run.Workers
	}
	return defaultWorkers
}
