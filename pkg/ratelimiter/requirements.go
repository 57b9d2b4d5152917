package ratelimiter

import "fmt"

// RPMKey is the requests-per-minute limit key for a backend/model pair.
func RPMKey(provider, model string) LimitKey {
	return LimitKey(fmt.Sprintf("oracle:%s:%s:rpm", provider, model))
}

// ConcurrencyKey is the in-flight limit key for a backend/model pair.
func ConcurrencyKey(provider, model string) LimitKey {
	return LimitKey(fmt.Sprintf("oracle:%s:%s:concurrency", provider, model))
}

// BuildCallRequirements builds the requirements of one oracle call.
func BuildCallRequirements(provider, model string) []Requirement {
	return []Requirement{
		{Key: RPMKey(provider, model), Amount: 1},
		{Key: ConcurrencyKey(provider, model), Amount: 1},
	}
}
