package resilience

import (
	"context"
	"time"
)

// Executor composes the guards in this package around an operation.
// *Executor satisfies cache.Guard, so it can protect cache loads.
//
// Guards apply outermost first: rate limit, concurrency limit, circuit
// breaker, retry, then a per-attempt timeout.
type Executor struct {
	rateLimiter *RateLimiter
	concurrency *ConcurrencyLimiter
	breaker     *CircuitBreaker
	retry       *Retry
	timeout     *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an Executor. With no options it runs op directly.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithRateLimiter(r *RateLimiter) ExecutorOption {
	return func(e *Executor) { e.rateLimiter = r }
}

func WithConcurrencyLimiter(l *ConcurrencyLimiter) ExecutorOption {
	return func(e *Executor) { e.concurrency = l }
}

func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.breaker = cb }
}

func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithTimeout bounds each attempt to d.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = NewTimeout(TimeoutConfig{Timeout: d}) }
}

type guard interface {
	Execute(ctx context.Context, op func(context.Context) error) error
}

// Execute runs op through every configured guard.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	// innermost first
	chain := []guard{}
	if e.timeout != nil {
		chain = append(chain, e.timeout)
	}
	if e.retry != nil {
		chain = append(chain, e.retry)
	}
	if e.breaker != nil {
		chain = append(chain, e.breaker)
	}
	if e.concurrency != nil {
		chain = append(chain, e.concurrency)
	}
	if e.rateLimiter != nil {
		chain = append(chain, e.rateLimiter)
	}

	run := op
	for _, g := range chain {
		inner := run
		run = func(ctx context.Context) error { return g.Execute(ctx, inner) }
	}
	return run(ctx)
}
