package cache

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Bounded is a capacity-limited cache whose eviction order is decided by a Policy.
// A Bounded must be created with [New], [MustNew] or [NewFromConfig].
type Bounded[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int
	policy    Policy
	items     map[K]V
	index     OrderIndex[K]
	observers []Observer[K, V]
	stats     Stats
}

// New creates a bounded cache using policy. Capacity defaults to
// DefaultCapacity; use WithCapacity to change it.
func New[K comparable, V any](policy Policy, opts ...Option) (*Bounded[K, V], error) {
	return NewFromConfig[K, V](buildConfig(policy, opts))
}

// MustNew is like New but panics on an invalid configuration.
func MustNew[K comparable, V any](policy Policy, opts ...Option) *Bounded[K, V] {
	c, err := New[K, V](policy, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// NewFromConfig creates a bounded cache from cfg.
func NewFromConfig[K comparable, V any](cfg Config) (*Bounded[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	index, err := NewOrderIndex[K](cfg.Policy)
	if err != nil {
		return nil, err
	}
	return &Bounded[K, V]{
		capacity: cfg.Capacity,
		policy:   cfg.Policy,
		items:    make(map[K]V, cfg.Capacity),
		index:    index,
	}, nil
}

// Put stores value under key.
//
// Nil keys and values are ignored, as are keys unequal to themselves (NaN). Updating an existing key never evicts.
// Inserting a new key into a full cache first evicts exactly one entry chosen
// by the policy and notifies every observer once.
func (c *Bounded[K, V]) Put(key K, value V) {
	if unusableKey(key) || isAbsent(value) {
		return
	}

	c.mu.Lock()
	c.stats.Puts++
	if _, found := c.items[key]; found {
		c.items[key] = value
		c.index.Touch(key)
		c.mu.Unlock()
		return
	}

	var (
		ev      Eviction[K, V]
		evicted bool
	)
	if len(c.items) >= c.capacity {
		victim := c.index.Victim()
		ev = Eviction[K, V]{Key: victim, Value: c.items[victim], Policy: c.policy}
		evicted = true
		c.index.Remove(victim)
		delete(c.items, victim)
		c.stats.Evictions++
	}

	c.items[key] = value
	c.index.Register(key)
	observers := c.observers
	c.mu.Unlock()

	if evicted {
		notify(observers, []Eviction[K, V]{ev})
	}
}

// Get returns the value stored under key. A hit counts as an access for the
// recency and frequency policies.
func (c *Bounded[K, V]) Get(key K) (V, bool) {
	var zero V
	if unusableKey(key) {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	val, found := c.items[key]
	if !found {
		c.stats.Misses++
		return zero, false
	}
	c.stats.Hits++
	c.index.Hit(key)
	return val, true
}

// Peek returns the value stored under key without affecting eviction order
// or statistics.
func (c *Bounded[K, V]) Peek(key K) (V, bool) {
	if unusableKey(key) {
		var zero V
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	val, found := c.items[key]
	return val, found
}

// Contains reports whether key is stored, without affecting eviction order.
func (c *Bounded[K, V]) Contains(key K) bool {
	if unusableKey(key) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	_, found := c.items[key]
	return found
}

// Len returns the number of stored entries.
func (c *Bounded[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *Bounded[K, V]) Capacity() int {
	return c.capacity
}

// Policy returns the eviction policy.
func (c *Bounded[K, V]) Policy() Policy {
	return c.policy
}

// Keys returns the stored keys in eviction order: the first key is the next victim.
func (c *Bounded[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.index.Keys()
}

// Stats returns a snapshot of the cache counters.
func (c *Bounded[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

// Clear removes every entry. Observers are not notified.
func (c *Bounded[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]V, c.capacity)
	c.index.Reset()
}

// OnEvict registers an observer for evictions.
func (c *Bounded[K, V]) OnEvict(o Observer[K, V]) {
	if o == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	observers := make([]Observer[K, V], len(c.observers), len(c.observers)+1)
	copy(observers, c.observers)
	c.observers = append(observers, o)
}

// Dump writes "Current cache:" followed by one "key: value" line per entry,
// ordered by the formatted key.
func (c *Bounded[K, V]) Dump(w io.Writer) error {
	c.mu.Lock()
	lines := formatEntries(c.items)
	c.mu.Unlock()

	return writeDump(w, lines)
}

func formatEntries[K comparable, V any](items map[K]V) [][2]string {
	lines := make([][2]string, 0, len(items))
	for k, v := range items {
		lines = append(lines, [2]string{fmt.Sprint(k), fmt.Sprint(v)})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i][0] < lines[j][0]
	})
	return lines
}

func writeDump(w io.Writer, lines [][2]string) error {
	if _, err := io.WriteString(w, "Current cache:\n"); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s: %s\n", l[0], l[1]); err != nil {
			return err
		}
	}
	return nil
}

// Ensure Bounded implements Cache
var _ Cache[string, int] = (*Bounded[string, int])(nil)
