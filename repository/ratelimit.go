package repository

import "context"

// RateLimiter is the pluggable counter behind the mutation-endpoint rate
// limits. Keeping it an interface means the in-process deployment can swap in
// a shared counter later without touching the core.
type RateLimiter interface {
	// Allow consumes one token for key and reports whether the caller is
	// still within its budget.
	Allow(ctx context.Context, key string) (bool, error)
}
