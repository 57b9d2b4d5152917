package ratelimiter

// LimitKey identifies the resource being limited.
type LimitKey string

// LimitKind defines the limiter semantics.
type LimitKind string

const (
	// KindRolling enforces a rolling-window capacity.
	KindRolling LimitKind = "rolling"
	// KindConcurrency enforces an in-flight concurrency capacity.
	KindConcurrency LimitKind = "concurrency"
)

// LimitDefinition describes one limit enforced by a local limiter.
type LimitDefinition struct {
	Key           LimitKey  `json:"key"`
	Kind          LimitKind `json:"kind"`
	Capacity      uint64    `json:"capacity"`
	WindowSeconds int       `json:"window_seconds"`
	// TimeoutSeconds bounds how long a concurrency hold survives without a
	// matching Complete.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// Requirement is a requested reservation for a limit.
type Requirement struct {
	Key    LimitKey `json:"key"`
	Amount uint64   `json:"amount"`
}
