package health

import "errors"

var (
	// ErrCheckFailed indicates a check crossed its critical threshold.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a check did not finish before its deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under a name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrNilCache indicates a CacheChecker was built without a cache.
	ErrNilCache = errors.New("health: cache is nil")
)
