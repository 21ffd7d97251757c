package cache

// Eviction describes an entry removed to make room for a new key.
type Eviction[K comparable, V any] struct {
	Key    K
	Value  V
	Policy Policy
}

// Observer receives eviction notifications.
//
// Contract:
// - Called exactly once per eviction, after the cache lock is released.
// - The evicted entry is already gone when the observer runs.
// - May be invoked concurrently when the cache is shared across goroutines.
type Observer[K comparable, V any] interface {
	OnEvict(ev Eviction[K, V])
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc[K comparable, V any] func(ev Eviction[K, V])

// OnEvict calls f(ev).
func (f ObserverFunc[K, V]) OnEvict(ev Eviction[K, V]) {
	f(ev)
}

func notify[K comparable, V any](observers []Observer[K, V], evicted []Eviction[K, V]) {
	for _, ev := range evicted {
		for _, o := range observers {
			o.OnEvict(ev)
		}
	}
}
