package cache

import (
	"errors"
	"reflect"
)

// DefaultCapacity is the capacity used when none is configured.
const DefaultCapacity = 4

// Sentinel errors for cache construction.
var (
	ErrInvalidCapacity = errors.New("cache: capacity must be greater than zero")
	ErrUnknownPolicy   = errors.New("cache: unknown eviction policy")
	ErrInvalidShards   = errors.New("cache: shard count must be greater than zero")
	ErrNilLoadFunc     = errors.New("cache: load function is nil")
	ErrInvalidKey      = errors.New("cache: key is invalid")
	ErrKeyTooLong      = errors.New("cache: key exceeds max length")
)

// Cache is the storage contract shared by the caches in this package.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Absent values: Put ignores nil keys and values; Get reports a miss for them.
// - Errors: Get never errors; it returns (zero, false) on miss.
type Cache[K comparable, V any] interface {
	// Put stores value under key, evicting if the cache is bounded and full.
	Put(key K, value V)

	// Get returns the value stored under key.
	Get(key K) (V, bool)

	// Len returns the number of stored entries.
	Len() int
}

// Stats holds cumulative counters for a cache.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Puts      uint64
	Evictions uint64
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// unusableKey reports whether key is absent or unequal to itself. A key
// holding a NaN can be stored in a map but never found again.
func unusableKey[K comparable](key K) bool {
	return isAbsent(key) || key != key
}

// isAbsent reports whether v is a nil interface or a nil pointer, map, slice,
// channel or function.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
