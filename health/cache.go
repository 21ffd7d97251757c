package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/evictcache/cache"
)

// Inspector exposes what CacheChecker reads from a cache. cache.Bounded and
// cache.Sharded satisfy it.
type Inspector interface {
	Len() int
	Capacity() int
	Policy() cache.Policy
	Stats() cache.Stats
}

// CacheCheckerConfig configures CacheChecker.
type CacheCheckerConfig struct {
	// Name is reported by Name(). Default: "cache".
	Name string

	// WarningThreshold is the occupancy (Len/Capacity) at which the cache is
	// degraded. Default: 0.8.
	WarningThreshold float64

	// CriticalThreshold is the occupancy at which the cache is unhealthy.
	// Default: 1.0, i.e. every new key evicts.
	CriticalThreshold float64

	// MinHitRatio degrades the cache when its hit ratio falls below it.
	// Zero disables the check.
	MinHitRatio float64

	// MinLookups is the number of lookups required before MinHitRatio applies.
	// Default: 100.
	MinLookups uint64
}

func (c CacheCheckerConfig) withDefaults() CacheCheckerConfig {
	if c.Name == "" {
		c.Name = "cache"
	}
	if c.WarningThreshold <= 0 || c.WarningThreshold > 1 {
		c.WarningThreshold = 0.8
	}
	if c.CriticalThreshold <= 0 || c.CriticalThreshold > 1 {
		c.CriticalThreshold = 1
	}
	if c.CriticalThreshold < c.WarningThreshold {
		c.CriticalThreshold = c.WarningThreshold
	}
	if c.MinLookups == 0 {
		c.MinLookups = 100
	}
	return c
}

// CacheChecker reports the occupancy and hit ratio of a bounded cache.
type CacheChecker struct {
	cache  Inspector
	config CacheCheckerConfig
}

// NewCacheChecker returns a checker for c. Out of range thresholds fall back
// to their defaults.
func NewCacheChecker(c Inspector, config CacheCheckerConfig) (*CacheChecker, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	return &CacheChecker{cache: c, config: config.withDefaults()}, nil
}

func (c *CacheChecker) Name() string { return c.config.Name }

func (c *CacheChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context canceled", err)
	}

	size, capacity := c.cache.Len(), c.cache.Capacity()
	stats := c.cache.Stats()
	occupancy := 0.0
	if capacity > 0 {
		occupancy = float64(size) / float64(capacity)
	}

	details := map[string]any{
		"policy":    c.cache.Policy().String(),
		"len":       size,
		"capacity":  capacity,
		"occupancy": occupancy,
		"hits":      stats.Hits,
		"misses":    stats.Misses,
		"puts":      stats.Puts,
		"evictions": stats.Evictions,
		"hit_ratio": stats.HitRatio(),
	}

	switch {
	case occupancy >= c.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("cache occupancy critical: %.1f%%", occupancy*100), ErrCheckFailed).
			WithDetails(details)
	case occupancy >= c.config.WarningThreshold:
		return Degraded(fmt.Sprintf("cache occupancy high: %.1f%%", occupancy*100)).WithDetails(details)
	case c.config.MinHitRatio > 0 && stats.Hits+stats.Misses >= c.config.MinLookups && stats.HitRatio() < c.config.MinHitRatio:
		return Degraded(fmt.Sprintf("cache hit ratio low: %.1f%%", stats.HitRatio()*100)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("cache occupancy normal: %.1f%%", occupancy*100)).WithDetails(details)
	}
}

var _ Checker = (*CacheChecker)(nil)
