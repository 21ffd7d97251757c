package observe

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/evictcache/cache"
)

// Attribute and field keys shared by logs, spans and metrics.
const (
	attrCacheName     = "cache.name"
	attrCachePolicy   = "cache.policy"
	attrCacheCapacity = "cache.capacity"
	attrCacheOp       = "cache.op"
	attrCacheHit      = "cache.hit"
	attrCacheError    = "cache.error"

	// FieldKey is the log field carrying an evicted or loaded key.
	FieldKey = "cache.key"
)

// CacheMeta identifies a cache instance in telemetry.
type CacheMeta struct {
	Name     string // required
	Policy   string // eviction policy name, e.g. "lru"
	Capacity int
}

// sizedCache is satisfied by cache.Bounded and cache.Sharded.
type sizedCache interface {
	Policy() cache.Policy
	Capacity() int
}

// MetaFor builds a CacheMeta from a bounded or sharded cache.
func MetaFor(name string, c sizedCache) CacheMeta {
	return CacheMeta{
		Name:     name,
		Policy:   c.Policy().String(),
		Capacity: c.Capacity(),
	}
}

// Validate reports ErrMissingCacheName when Name is empty.
func (m CacheMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingCacheName
	}
	return nil
}

// SpanName returns cache.<op>.<name>, or cache.<op> for an unnamed cache.
func (m CacheMeta) SpanName(op string) string {
	if m.Name == "" {
		return "cache." + op
	}
	return "cache." + op + "." + m.Name
}

func (m CacheMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(attrCacheName, m.Name)}
	if m.Policy != "" {
		attrs = append(attrs, attribute.String(attrCachePolicy, m.Policy))
	}
	return attrs
}
