// Package cache provides bounded in-memory key-value caches with pluggable
// eviction policies.
//
// A [Bounded] cache holds at most a fixed number of entries. When a new key
// would exceed that capacity, the configured [Policy] picks exactly one victim
// before the new entry is stored:
//
//   - [FIFO]: the oldest inserted key
//   - [LIFO]: the newest inserted key
//   - [LRU]: the least recently touched key
//   - [MRU]: the most recently touched key
//   - [LFU]: the least frequently touched key, ties broken by recency
//
// Every policy runs in O(1) per operation over an [OrderIndex].
//
// # Basic Usage
//
//	c := cache.MustNew[string, int](cache.LRU, cache.WithCapacity(2))
//	c.OnEvict(cache.ObserverFunc[string, int](func(ev cache.Eviction[string, int]) {
//	    fmt.Println("DISCARD:", ev.Key)
//	}))
//	c.Put("a", 1)
//	c.Put("b", 2)
//	c.Get("a")
//	c.Put("c", 3) // DISCARD: b
//
// Nil keys and values (nil interfaces, pointers, maps, slices, channels and
// functions) are never stored: Put ignores them and Get reports a miss.
//
// # Loading
//
// [Loader] fills misses from a backing function, collapsing concurrent loads
// of the same key and optionally guarding them with a resilience executor.
// [Memoizer] derives cache keys from arbitrary inputs with a [Keyer].
package cache
