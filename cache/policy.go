package cache

import (
	"fmt"
	"strings"
)

// Policy selects the eviction strategy of a bounded cache.
type Policy int

const (
	// LRU evicts the least recently touched key.
	LRU Policy = iota
	// FIFO evicts the oldest inserted key. Reads do not reorder.
	FIFO
	// LIFO evicts the newest inserted key. Reads do not reorder.
	LIFO
	// MRU evicts the most recently touched key.
	MRU
	// LFU evicts the least frequently touched key, oldest touch first on ties.
	LFU
)

// Policies lists every supported policy in declaration order.
var Policies = []Policy{LRU, FIFO, LIFO, MRU, LFU}

// String returns the lower-case policy name.
func (p Policy) String() string {
	switch p {
	case LRU:
		return "lru"
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case MRU:
		return "mru"
	case LFU:
		return "lfu"
	default:
		return "unknown"
	}
}

// Valid reports whether p names a supported policy.
func (p Policy) Valid() bool {
	return p >= LRU && p <= LFU
}

// ParsePolicy parses a case-insensitive policy name.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lru":
		return LRU, nil
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "mru":
		return MRU, nil
	case "lfu":
		return LFU, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// OrderIndex is the bookkeeping a policy keeps to choose eviction victims.
//
// Contract:
// - Concurrency: not safe for concurrent use; the owning cache serializes calls.
// - Membership: Register is called once per new key, Remove once per evicted key.
// - Re-registering a removed key starts from a fresh state.
// - Victim: must not be called on an empty index; it panics.
type OrderIndex[K comparable] interface {
	// Register records a newly inserted key.
	Register(key K)

	// Touch records a write to an existing key.
	Touch(key K)

	// Hit records a successful read of an existing key.
	Hit(key K)

	// Victim returns the key that would be evicted next.
	Victim() K

	// Remove forgets key. Unknown keys are ignored.
	Remove(key K)

	// Len returns the number of registered keys.
	Len() int

	// Keys returns the registered keys in eviction order, next victim first.
	Keys() []K

	// Reset forgets every key.
	Reset()
}

// NewOrderIndex returns an empty index implementing p.
func NewOrderIndex[K comparable](p Policy) (OrderIndex[K], error) {
	switch p {
	case FIFO:
		return newListIndex[K](false, false), nil
	case LIFO:
		return newListIndex[K](true, false), nil
	case LRU:
		return newListIndex[K](false, true), nil
	case MRU:
		return newListIndex[K](true, true), nil
	case LFU:
		return newLFUIndex[K](), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(p))
	}
}
