package resilience

import "errors"

// Sentinel errors for guarded operations.
var (
	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimited is returned when no rate limit token is available in time.
	ErrRateLimited = errors.New("resilience: rate limit exceeded")

	// ErrConcurrencyLimit is returned when no concurrency slot is available in time.
	ErrConcurrencyLimit = errors.New("resilience: concurrency limit reached")

	// ErrTimeout is returned when an operation outlives its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)
