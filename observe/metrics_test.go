package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumWhere adds the data points of an int64 sum whose attributes contain kv.
func sumWhere(t *testing.T, rm metricdata.ResourceMetrics, name string, kv ...attribute.KeyValue) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s data = %T, want Sum[int64]", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		match := true
		for _, want := range kv {
			got, ok := dp.Attributes.Value(want.Key)
			if !ok || got != want.Value {
				match = false
				break
			}
		}
		if match {
			total += dp.Value
		}
	}
	return total
}

var testMeta = CacheMeta{Name: "users", Policy: "lru", Capacity: 4}

func TestMetrics_Gets(t *testing.T) {
	m, reader, _ := newTestMetrics(t)
	ctx := context.Background()

	m.RecordGet(ctx, testMeta, true)
	m.RecordGet(ctx, testMeta, true)
	m.RecordGet(ctx, testMeta, false)

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "cache.gets", attribute.Bool(attrCacheHit, true)); got != 2 {
		t.Errorf("hits = %d, want 2", got)
	}
	if got := sumWhere(t, rm, "cache.gets", attribute.Bool(attrCacheHit, false)); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
	if got := sumWhere(t, rm, "cache.gets", attribute.String(attrCacheName, "users")); got != 3 {
		t.Errorf("gets for users = %d, want 3", got)
	}
}

func TestMetrics_PutsAndEvictions(t *testing.T) {
	m, reader, _ := newTestMetrics(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		m.RecordPut(ctx, testMeta)
	}
	m.RecordEviction(ctx, testMeta)

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "cache.puts"); got != 5 {
		t.Errorf("puts = %d, want 5", got)
	}
	if got := sumWhere(t, rm, "cache.evictions", attribute.String(attrCachePolicy, "lru")); got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}
}

func TestMetrics_Loads(t *testing.T) {
	m, reader, _ := newTestMetrics(t)
	ctx := context.Background()

	m.RecordLoad(ctx, testMeta, 3*time.Millisecond, nil)
	m.RecordLoad(ctx, testMeta, 5*time.Millisecond, errors.New("backend down"))

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "cache.loads"); got != 2 {
		t.Errorf("loads = %d, want 2", got)
	}
	if got := sumWhere(t, rm, "cache.load.errors"); got != 1 {
		t.Errorf("load errors = %d, want 1", got)
	}

	found := findMetric(rm, "cache.load.duration_ms")
	if found == nil {
		t.Fatal("cache.load.duration_ms not recorded")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration data = %T, want Histogram[float64]", found.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 2 {
		t.Errorf("duration points = %+v, want one point with count 2", hist.DataPoints)
	}
	if hist.DataPoints[0].Sum != 8 {
		t.Errorf("duration sum = %v, want 8", hist.DataPoints[0].Sum)
	}
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader, _ := newTestMetrics(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordPut(context.Background(), testMeta)
		}()
	}
	wg.Wait()

	if got := sumWhere(t, collect(t, reader), "cache.puts"); got != 50 {
		t.Errorf("puts = %d, want 50", got)
	}
}

func TestObserveSize(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	size := 3
	reg, err := ObserveSize(mp.Meter("test"), testMeta, func() int { return size })
	if err != nil {
		t.Fatalf("ObserveSize() error = %v", err)
	}
	defer func() { _ = reg.Unregister() }()

	rm := collect(t, reader)
	found := findMetric(rm, "cache.entries")
	if found == nil {
		t.Fatal("cache.entries not recorded")
	}
	gauge, ok := found.Data.(metricdata.Gauge[int64])
	if !ok {
		t.Fatalf("cache.entries data = %T, want Gauge[int64]", found.Data)
	}
	if len(gauge.DataPoints) != 1 || gauge.DataPoints[0].Value != 3 {
		t.Errorf("cache.entries = %+v, want 3", gauge.DataPoints)
	}
}

func TestObserveSize_RequiresName(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	_, err := ObserveSize(mp.Meter("test"), CacheMeta{}, func() int { return 0 })
	if !errors.Is(err, ErrMissingCacheName) {
		t.Fatalf("ObserveSize() error = %v, want %v", err, ErrMissingCacheName)
	}
}
