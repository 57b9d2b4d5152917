package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vlmbench/pkg/ratelimiter"
)

const defaultHoldTimeout = 10 * time.Minute

// Client is an in-process Limiter enforcing rolling-window and concurrency
// limits. Requirements whose key has no definition are not limited.
type Client struct {
	mu     sync.Mutex
	now    func() time.Time
	roll   map[ratelimiter.LimitKey]*rollingLimit
	conc   map[ratelimiter.LimitKey]*concLimit
	leases map[string][]ratelimiter.LimitKey
}

// NewLimiter validates defs and returns a Client enforcing them.
func NewLimiter(defs []ratelimiter.LimitDefinition) (*Client, error) {
	return newLimiter(defs, time.Now)
}

func newLimiter(defs []ratelimiter.LimitDefinition, now func() time.Time) (*Client, error) {
	c := &Client{
		now:    now,
		roll:   map[ratelimiter.LimitKey]*rollingLimit{},
		conc:   map[ratelimiter.LimitKey]*concLimit{},
		leases: map[string][]ratelimiter.LimitKey{},
	}
	for _, def := range defs {
		if def.Key == "" || def.Capacity == 0 {
			return nil, fmt.Errorf("limit %q: key and capacity are required", def.Key)
		}
		switch def.Kind {
		case ratelimiter.KindRolling:
			if def.WindowSeconds <= 0 {
				return nil, fmt.Errorf("limit %q: window_seconds must be positive", def.Key)
			}
			c.roll[def.Key] = &rollingLimit{window: time.Duration(def.WindowSeconds) * time.Second, cap: def.Capacity}
		case ratelimiter.KindConcurrency:
			timeout := time.Duration(def.TimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = defaultHoldTimeout
			}
			c.conc[def.Key] = &concLimit{timeout: timeout, cap: def.Capacity, holds: map[string]time.Time{}}
		default:
			return nil, fmt.Errorf("limit %q: unsupported kind %q", def.Key, def.Kind)
		}
	}
	return c, nil
}

// Reserve grants every requirement or none of them.
func (c *Client) Reserve(_ context.Context, req ratelimiter.ReserveRequest) (ratelimiter.ReserveResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.LeaseID == "" || len(req.Requirements) == 0 {
		return ratelimiter.ReserveResponse{Allowed: false, Error: "invalid_request"}, nil
	}
	now := c.now()
	if _, ok := c.leases[req.LeaseID]; ok {
		return ratelimiter.ReserveResponse{Allowed: true, ReservedAtUnixMs: now.UnixMilli()}, nil
	}

	var wait time.Duration
	for _, r := range req.Requirements {
		if l, ok := c.roll[r.Key]; ok {
			l.cleanup(now)
			if !l.fits(r.Amount) {
				wait = max(wait, l.retryAfter(now))
			}
		}
		if l, ok := c.conc[r.Key]; ok {
			l.cleanup(now)
			if !l.fits() {
				wait = max(wait, minRetry)
			}
		}
	}
	if wait > 0 {
		return ratelimiter.ReserveResponse{Allowed: false, RetryAfterMs: int(wait / time.Millisecond)}, nil
	}

	keys := make([]ratelimiter.LimitKey, 0, len(req.Requirements))
	for _, r := range req.Requirements {
		if l, ok := c.roll[r.Key]; ok {
			l.add(r.Amount, now)
		}
		if l, ok := c.conc[r.Key]; ok {
			l.add(req.LeaseID, now)
			keys = append(keys, r.Key)
		}
	}
	c.leases[req.LeaseID] = keys
	return ratelimiter.ReserveResponse{Allowed: true, ReservedAtUnixMs: now.UnixMilli()}, nil
}

// Complete releases the concurrency slots held by the lease. Rolling-window
// usage stays until it ages out.
func (c *Client) Complete(_ context.Context, req ratelimiter.CompleteRequest) (ratelimiter.CompleteResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys, ok := c.leases[req.LeaseID]
	if !ok {
		return ratelimiter.CompleteResponse{Ok: false, Error: "unknown_lease"}, nil
	}
	for _, key := range keys {
		c.conc[key].release(req.LeaseID)
	}
	delete(c.leases, req.LeaseID)
	return ratelimiter.CompleteResponse{Ok: true}, nil
}
