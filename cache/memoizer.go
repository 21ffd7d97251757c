package cache

import "context"

// MemoFunc computes a result from a structured input.
type MemoFunc[V any] func(ctx context.Context, input any) (V, error)

// Memoizer caches the results of a MemoFunc keyed by a Keyer.
//
// Contract:
// - Concurrency: safe for concurrent use when the underlying cache is.
// - Errors: results of failed calls are not cached.
// - Keys: if the Keyer fails, fn runs uncached.
type Memoizer[V any] struct {
	cache Cache[string, V]
	keyer Keyer
}

// NewMemoizer creates a Memoizer. If keyer is nil, a HashKeyer is used.
func NewMemoizer[V any](c Cache[string, V], keyer Keyer) *Memoizer[V] {
	if keyer == nil {
		keyer = NewHashKeyer()
	}
	return &Memoizer[V]{cache: c, keyer: keyer}
}

// Do returns the cached result for (namespace, input), calling fn on a miss.
func (m *Memoizer[V]) Do(ctx context.Context, namespace string, input any, fn MemoFunc[V]) (V, error) {
	key, err := m.keyer.Key(namespace, input)
	if err != nil {
		return fn(ctx, input)
	}

	if cached, found := m.cache.Get(key); found {
		return cached, nil
	}

	result, err := fn(ctx, input)
	if err != nil {
		return result, err
	}
	m.cache.Put(key, result)
	return result, nil
}
