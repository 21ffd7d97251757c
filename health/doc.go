// Package health reports the health of caches and other components.
//
// A Checker returns a Result whose Status is healthy, degraded or unhealthy.
// CacheChecker derives it from a bounded cache's occupancy and hit ratio:
//
//	c := cache.MustNew[string, []byte](cache.LRU, cache.WithCapacity(1024))
//	checker, _ := health.NewCacheChecker(c, health.CacheCheckerConfig{
//	    Name:             "pages",
//	    WarningThreshold: 0.9,
//	    MinHitRatio:      0.5,
//	})
//
// An Aggregator runs several checkers, each under its own timeout, and
// Overall folds their results into one status:
//
//	agg := health.NewAggregator(health.DefaultAggregatorConfig())
//	agg.Register("pages", checker)
//	status := health.Overall(agg.CheckAll(ctx))
package health
