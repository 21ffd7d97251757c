// Package resilience guards the operations that fill a cache on a miss.
//
// Each guard has an Execute(ctx, op) method: Retry (backoff between attempts),
// CircuitBreaker (stop calling a failing backend), Timeout (bound each
// attempt), ConcurrencyLimiter and RateLimiter (protect the backend from a
// burst of misses). Executor composes them and satisfies cache.Guard:
//
//	guard := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(time.Second),
//	)
//	loader := cache.NewLoader(c, fetchUser, guard)
package resilience
