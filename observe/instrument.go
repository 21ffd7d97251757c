package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/evictcache/cache"
)

// Instrumentation bundles the tracer, metrics and logger used to observe
// caches.
//
// Contract:
//   - Concurrency: safe for concurrent use; the helpers it builds are too.
//   - Errors: errors from wrapped load functions are recorded and returned
//     unchanged.
//   - Ownership: keys and values pass through untouched; only keys are logged.
type Instrumentation struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewInstrumentation creates an Instrumentation from its parts.
func NewInstrumentation(tracer Tracer, metrics Metrics, logger Logger) *Instrumentation {
	if logger == nil {
		logger = NopLogger()
	}
	return &Instrumentation{tracer: tracer, metrics: metrics, logger: logger}
}

// InstrumentationFromObserver builds an Instrumentation on obs's providers.
func InstrumentationFromObserver(obs Observer) (*Instrumentation, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewInstrumentation(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Logger returns the instrumentation's logger.
func (in *Instrumentation) Logger() Logger { return in.logger }

// EvictionObserver returns an observer that logs each eviction as a DISCARD
// entry carrying the evicted key and counts it.
func EvictionObserver[K comparable, V any](in *Instrumentation, meta CacheMeta) cache.ObserverFunc[K, V] {
	log := in.logger.WithCache(meta)
	return func(ev cache.Eviction[K, V]) {
		ctx := context.Background()
		log.Info(ctx, "DISCARD", Field{Key: FieldKey, Value: fmt.Sprint(ev.Key)})
		if in.metrics != nil {
			in.metrics.RecordEviction(ctx, meta)
		}
	}
}

// WrapLoad wraps a load function with a span, load metrics and a log entry.
func WrapLoad[K comparable, V any](in *Instrumentation, meta CacheMeta, fn cache.LoadFunc[K, V]) cache.LoadFunc[K, V] {
	log := in.logger.WithCache(meta)
	return func(ctx context.Context, key K) (val V, err error) {
		if in.tracer != nil {
			var span trace.Span
			ctx, span = in.tracer.StartSpan(ctx, meta, "load")
			defer func() { in.tracer.EndSpan(span, err) }()
		}

		start := time.Now()
		val, err = fn(ctx, key)
		duration := time.Since(start)

		if in.metrics != nil {
			in.metrics.RecordLoad(ctx, meta, duration, err)
		}

		fields := []Field{
			{Key: FieldKey, Value: fmt.Sprint(key)},
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			log.Error(ctx, "cache load failed", fields...)
		} else {
			log.Debug(ctx, "cache load completed", fields...)
		}
		return val, err
	}
}

// InstrumentedCache counts the gets and puts of the cache it wraps.
type InstrumentedCache[K comparable, V any] struct {
	cache.Cache[K, V]
	meta    CacheMeta
	metrics Metrics
}

// Wrap returns c with get and put counting. Len passes through.
func Wrap[K comparable, V any](in *Instrumentation, meta CacheMeta, c cache.Cache[K, V]) *InstrumentedCache[K, V] {
	return &InstrumentedCache[K, V]{Cache: c, meta: meta, metrics: in.metrics}
}

// Get implements cache.Cache.
func (c *InstrumentedCache[K, V]) Get(key K) (V, bool) {
	val, hit := c.Cache.Get(key)
	if c.metrics != nil {
		c.metrics.RecordGet(context.Background(), c.meta, hit)
	}
	return val, hit
}

// Put implements cache.Cache.
func (c *InstrumentedCache[K, V]) Put(key K, value V) {
	c.Cache.Put(key, value)
	if c.metrics != nil {
		c.metrics.RecordPut(context.Background(), c.meta)
	}
}

var _ cache.Cache[string, int] = (*InstrumentedCache[string, int])(nil)
