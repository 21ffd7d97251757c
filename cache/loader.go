package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a key missing from the cache.
type LoadFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Guard runs an operation under a resilience policy such as retries, a
// circuit breaker or a timeout. *resilience.Executor satisfies Guard.
type Guard interface {
	Execute(ctx context.Context, op func(context.Context) error) error
}

// Loader fills cache misses from a LoadFunc.
//
// Contract:
// - Concurrency: concurrent misses for the same key share one load.
// - Errors: load errors are returned unchanged and never cached.
// - Guard: when set, every load runs through it.
type Loader[K comparable, V any] struct {
	cache Cache[K, V]
	load  LoadFunc[K, V]
	guard Guard
	group singleflight.Group
}

// NewLoader creates a Loader over c. guard may be nil.
func NewLoader[K comparable, V any](c Cache[K, V], load LoadFunc[K, V], guard Guard) *Loader[K, V] {
	return &Loader[K, V]{
		cache: c,
		load:  load,
		guard: guard,
	}
}

// Get returns the cached value for key, loading it with the default LoadFunc on a miss.
func (l *Loader[K, V]) Get(ctx context.Context, key K) (V, error) {
	return l.GetWith(ctx, key, l.load)
}

// GetWith returns the cached value for key, loading it with load on a miss.
func (l *Loader[K, V]) GetWith(ctx context.Context, key K, load LoadFunc[K, V]) (V, error) {
	var zero V
	if load == nil {
		return zero, ErrNilLoadFunc
	}
	if val, found := l.cache.Get(key); found {
		return val, nil
	}

	res, err, _ := l.group.Do(flightKey(key), func() (any, error) {
		// another caller may have filled the key while we waited
		if val, found := l.cache.Get(key); found {
			return loaded[K, V]{key: key, val: val}, nil
		}
		val, err := l.fill(ctx, key, load)
		if err != nil {
			return nil, err
		}
		return loaded[K, V]{key: key, val: val}, nil
	})
	if err != nil {
		return zero, err
	}
	if r := res.(loaded[K, V]); r.key == key {
		return r.val, nil
	}
	// distinct keys with the same flight key: load this one on its own
	return l.fill(ctx, key, load)
}

// loaded pairs a value with the key it was loaded for.
type loaded[K comparable, V any] struct {
	key K
	val V
}

// flightKey names key's in-flight load. The dynamic type is included so
// keys of different types that print alike do not share a load.
func flightKey[K comparable](key K) string {
	return fmt.Sprintf("%T\x00%#v", key, key)
}

func (l *Loader[K, V]) fill(ctx context.Context, key K, load LoadFunc[K, V]) (V, error) {
	val, err := l.run(ctx, key, load)
	if err != nil {
		return val, err
	}
	l.cache.Put(key, val)
	return val, nil
}

func (l *Loader[K, V]) run(ctx context.Context, key K, load LoadFunc[K, V]) (V, error) {
	var (
		mu  sync.Mutex
		val V
	)
	op := func(ctx context.Context) error {
		v, err := load(ctx, key)
		if err != nil {
			return err
		}
		mu.Lock()
		val = v
		mu.Unlock()
		return nil
	}

	var err error
	if l.guard != nil {
		err = l.guard.Execute(ctx, op)
	} else {
		err = op(ctx)
	}

	mu.Lock()
	defer mu.Unlock()
	return val, err
}
