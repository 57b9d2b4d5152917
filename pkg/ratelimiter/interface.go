package ratelimiter

import "context"

// Limiter grants capacity for oracle calls and releases it afterwards.
type Limiter interface {
	Reserve(ctx context.Context, req ReserveRequest) (ReserveResponse, error)
	Complete(ctx context.Context, req CompleteRequest) (CompleteResponse, error)
}
