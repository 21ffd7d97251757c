package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache counters.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordGet counts a lookup, split by the cache.hit attribute.
	RecordGet(ctx context.Context, meta CacheMeta, hit bool)

	// RecordPut counts a write.
	RecordPut(ctx context.Context, meta CacheMeta)

	// RecordEviction counts a capacity eviction.
	RecordEviction(ctx context.Context, meta CacheMeta)

	// RecordLoad records a miss fill with its duration and error status.
	RecordLoad(ctx context.Context, meta CacheMeta, duration time.Duration, err error)
}

type otelMetrics struct {
	meter        metric.Meter
	gets         metric.Int64Counter
	puts         metric.Int64Counter
	evictions    metric.Int64Counter
	loads        metric.Int64Counter
	loadErrors   metric.Int64Counter
	loadDuration metric.Float64Histogram
}

// NewMetrics creates the cache instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &otelMetrics{meter: meter}
	var err error

	if m.gets, err = meter.Int64Counter("cache.gets",
		metric.WithDescription("Cache lookups"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.puts, err = meter.Int64Counter("cache.puts",
		metric.WithDescription("Cache writes"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.evictions, err = meter.Int64Counter("cache.evictions",
		metric.WithDescription("Entries evicted to make room"),
		metric.WithUnit("{entry}"),
	); err != nil {
		return nil, err
	}
	if m.loads, err = meter.Int64Counter("cache.loads",
		metric.WithDescription("Miss fills"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.loadErrors, err = meter.Int64Counter("cache.load.errors",
		metric.WithDescription("Failed miss fills"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.loadDuration, err = meter.Float64Histogram("cache.load.duration_ms",
		metric.WithDescription("Miss fill duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *otelMetrics) RecordGet(ctx context.Context, meta CacheMeta, hit bool) {
	attrs := append(meta.attributes(), attribute.Bool(attrCacheHit, hit))
	m.gets.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *otelMetrics) RecordPut(ctx context.Context, meta CacheMeta) {
	m.puts.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

func (m *otelMetrics) RecordEviction(ctx context.Context, meta CacheMeta) {
	m.evictions.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

func (m *otelMetrics) RecordLoad(ctx context.Context, meta CacheMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)
	m.loads.Add(ctx, 1, opt)
	if err != nil {
		m.loadErrors.Add(ctx, 1, opt)
	}
	m.loadDuration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

// ObserveSize registers an asynchronous gauge reporting size() as the
// cache.entries metric for meta. Unregister the returned registration when
// the cache is discarded.
func ObserveSize(meter metric.Meter, meta CacheMeta, size func() int) (metric.Registration, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	gauge, err := meter.Int64ObservableGauge("cache.entries",
		metric.WithDescription("Entries currently held"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}
	opt := metric.WithAttributes(meta.attributes()...)
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(size()), opt)
		return nil
	}, gauge)
}
