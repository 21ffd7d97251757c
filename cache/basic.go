package cache

import (
	"io"
	"sync"
)

// Basic is an unbounded cache. It never evicts.
type Basic[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// NewBasic creates an empty unbounded cache.
func NewBasic[K comparable, V any]() *Basic[K, V] {
	return &Basic[K, V]{items: make(map[K]V)}
}

// Put stores value under key. Nil keys and values are ignored.
func (c *Basic[K, V]) Put(key K, value V) {
	if unusableKey(key) || isAbsent(value) {
		return
	}
	c.mu.Lock()
	c.items[key] = value
	c.mu.Unlock()
}

// Get returns the value stored under key.
func (c *Basic[K, V]) Get(key K) (V, bool) {
	var zero V
	if unusableKey(key) {
		return zero, false
	}
	c.mu.RLock()
	val, found := c.items[key]
	c.mu.RUnlock()
	return val, found
}

// Len returns the number of stored entries.
func (c *Basic[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Dump writes the entries in the same format as Bounded.Dump.
func (c *Basic[K, V]) Dump(w io.Writer) error {
	c.mu.RLock()
	lines := formatEntries(c.items)
	c.mu.RUnlock()
	return writeDump(w, lines)
}

var _ Cache[string, int] = (*Basic[string, int])(nil)
