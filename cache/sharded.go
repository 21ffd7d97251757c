package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// DefaultShardCount is the number of shards used by NewSharded.
const DefaultShardCount = 16

// Sharded spreads keys over independent Bounded caches to reduce lock
// contention. Eviction order holds per shard, not across the whole cache.
type Sharded[K comparable, V any] struct {
	shards   []*Bounded[K, V]
	capacity int
	policy   Policy
}

// NewSharded creates a sharded cache with DefaultShardCount shards.
func NewSharded[K comparable, V any](policy Policy, opts ...Option) (*Sharded[K, V], error) {
	return NewShardedWithCount[K, V](DefaultShardCount, policy, opts...)
}

// NewShardedWithCount creates a sharded cache with up to shardCount shards.
// The configured capacity is split evenly, the remainder going to the first
// shards. A capacity below shardCount lowers the shard count to the capacity,
// so every shard holds at least one entry and Capacity matches the
// configured value.
func NewShardedWithCount[K comparable, V any](shardCount int, policy Policy, opts ...Option) (*Sharded[K, V], error) {
	if shardCount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShards, shardCount)
	}
	cfg := buildConfig(policy, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shardCount = min(shardCount, cfg.Capacity)
	perShard := cfg.Capacity / shardCount
	remainder := cfg.Capacity % shardCount

	s := &Sharded[K, V]{
		shards: make([]*Bounded[K, V], shardCount),
		policy: cfg.Policy,
	}
	for i := range s.shards {
		shardCfg := cfg
		shardCfg.Capacity = perShard
		if i < remainder {
			shardCfg.Capacity++
		}
		shard, err := NewFromConfig[K, V](shardCfg)
		if err != nil {
			return nil, err
		}
		s.shards[i] = shard
		s.capacity += shardCfg.Capacity
	}
	return s, nil
}

func (s *Sharded[K, V]) shard(key K) *Bounded[K, V] {
	var h uint64
	switch k := any(key).(type) {
	case string:
		h = xxhash.Sum64String(k)
	default:
		h = xxhash.Sum64String(fmt.Sprint(k))
	}
	return s.shards[h%uint64(len(s.shards))]
}

// Put stores value under key in the key's shard.
func (s *Sharded[K, V]) Put(key K, value V) {
	if unusableKey(key) {
		return
	}
	s.shard(key).Put(key, value)
}

// Get returns the value stored under key.
func (s *Sharded[K, V]) Get(key K) (V, bool) {
	if unusableKey(key) {
		var zero V
		return zero, false
	}
	return s.shard(key).Get(key)
}

// Len returns the number of entries across all shards.
func (s *Sharded[K, V]) Len() int {
	n := 0
	for _, shard := range s.shards {
		n += shard.Len()
	}
	return n
}

// Capacity returns the total capacity across all shards.
func (s *Sharded[K, V]) Capacity() int {
	return s.capacity
}

// Policy returns the eviction policy shared by all shards.
func (s *Sharded[K, V]) Policy() Policy {
	return s.policy
}

// ShardCount returns the number of shards.
func (s *Sharded[K, V]) ShardCount() int {
	return len(s.shards)
}

// Stats returns the sum of all shard counters.
func (s *Sharded[K, V]) Stats() Stats {
	var total Stats
	for _, shard := range s.shards {
		st := shard.Stats()
		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Puts += st.Puts
		total.Evictions += st.Evictions
	}
	return total
}

// Clear empties every shard.
func (s *Sharded[K, V]) Clear() {
	for _, shard := range s.shards {
		shard.Clear()
	}
}

// OnEvict registers o on every shard.
func (s *Sharded[K, V]) OnEvict(o Observer[K, V]) {
	for _, shard := range s.shards {
		shard.OnEvict(o)
	}
}

var _ Cache[string, int] = (*Sharded[string, int])(nil)
