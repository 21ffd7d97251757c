package resilience

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ConcurrencyLimiterConfig configures ConcurrencyLimiter.
type ConcurrencyLimiterConfig struct {
	// MaxConcurrent is the number of operations allowed at once. Default: 10.
	MaxConcurrent int

	// MaxWait is how long to wait for a free slot. Zero fails immediately.
	MaxWait time.Duration
}

// ConcurrencyLimiter caps how many operations run at once, so a burst of
// cache misses cannot flood the backing store.
type ConcurrencyLimiter struct {
	config   ConcurrencyLimiterConfig
	sem      *semaphore.Weighted
	active   atomic.Int64
	rejected atomic.Int64
}

// NewConcurrencyLimiter creates a ConcurrencyLimiter.
func NewConcurrencyLimiter(config ConcurrencyLimiterConfig) *ConcurrencyLimiter {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &ConcurrencyLimiter{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Execute runs op once a slot is free, or returns ErrConcurrencyLimit.
func (l *ConcurrencyLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if !l.sem.TryAcquire(1) {
		if err := l.wait(ctx); err != nil {
			return err
		}
	}
	l.active.Add(1)
	defer func() {
		l.active.Add(-1)
		l.sem.Release(1)
	}()
	return op(ctx)
}

func (l *ConcurrencyLimiter) wait(ctx context.Context) error {
	if l.config.MaxWait <= 0 {
		l.rejected.Add(1)
		return ErrConcurrencyLimit
	}
	waitCtx, cancel := context.WithTimeout(ctx, l.config.MaxWait)
	defer cancel()
	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.rejected.Add(1)
		return ErrConcurrencyLimit
	}
	return nil
}

// Active returns the number of running operations.
func (l *ConcurrencyLimiter) Active() int { return int(l.active.Load()) }

// Rejected returns how many calls were turned away.
func (l *ConcurrencyLimiter) Rejected() int64 { return l.rejected.Load() }

// RateLimiterConfig configures RateLimiter.
type RateLimiterConfig struct {
	// Rate is the sustained number of operations per second. Default: 100.
	Rate float64

	// Burst is the number of operations allowed at once. Default: 10.
	Burst int

	// MaxWait is how long to wait for a token. Zero fails immediately.
	MaxWait time.Duration
}

// RateLimiter caps the rate of operations with a token bucket.
type RateLimiter struct {
	config  RateLimiterConfig
	limiter *rate.Limiter
}

// NewRateLimiter creates a RateLimiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	return &RateLimiter{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
	}
}

// Allow reports whether an operation may run now, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Execute runs op once a token is available, or returns ErrRateLimited.
func (r *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if !r.limiter.Allow() {
		if r.config.MaxWait <= 0 {
			return ErrRateLimited
		}
		waitCtx, cancel := context.WithTimeout(ctx, r.config.MaxWait)
		err := r.limiter.Wait(waitCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ErrRateLimited
		}
	}
	return op(ctx)
}
