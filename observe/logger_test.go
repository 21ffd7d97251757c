package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	log.Debug(ctx, "debug")
	log.Info(ctx, "info")
	log.Warn(ctx, "warn")
	log.Error(ctx, "error")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0]["level"] != "warn" || entries[1]["level"] != "error" {
		t.Errorf("levels = %v, %v, want warn, error", entries[0]["level"], entries[1]["level"])
	}
}

func TestLogger_EntryShape(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Info(context.Background(), "DISCARD", Field{Key: FieldKey, Value: "A"})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["msg"] != "DISCARD" {
		t.Errorf("msg = %v, want DISCARD", e["msg"])
	}
	if e[FieldKey] != "A" {
		t.Errorf("%s = %v, want A", FieldKey, e[FieldKey])
	}
	if _, ok := e["timestamp"]; !ok {
		t.Error("entry missing timestamp")
	}
}

func TestLogger_WithCacheAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf)
	scoped := base.WithCache(CacheMeta{Name: "users", Policy: "lfu", Capacity: 4})

	scoped.Info(context.Background(), "scoped")
	base.Info(context.Background(), "base")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0][attrCacheName] != "users" || entries[0][attrCachePolicy] != "lfu" {
		t.Errorf("scoped entry = %v, want cache attributes", entries[0])
	}
	// JSON numbers decode as float64
	if entries[0][attrCacheCapacity] != float64(4) {
		t.Errorf("%s = %v, want 4", attrCacheCapacity, entries[0][attrCacheCapacity])
	}
	if _, ok := entries[1][attrCacheName]; ok {
		t.Errorf("base logger picked up cache attributes: %v", entries[1])
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Info(context.Background(), "put",
		Field{Key: FieldKey, Value: "session"},
		Field{Key: "cache.value", Value: "s3cr3t"},
		Field{Key: "token", Value: "abc"},
	)

	out := buf.String()
	if strings.Contains(out, "s3cr3t") || strings.Contains(out, "abc") {
		t.Errorf("sensitive value leaked: %s", out)
	}
	entries := decodeLines(t, &buf)
	if entries[0][FieldKey] != "session" {
		t.Errorf("%s = %v, want session", FieldKey, entries[0][FieldKey])
	}
}

func TestLogger_DropsUnencodableEntries(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Info(context.Background(), "bad", Field{Key: "ch", Value: make(chan int)})
	if buf.Len() != 0 {
		t.Errorf("unencodable entry written: %q", buf.String())
	}
}

func TestLogger_ConcurrentWritesStayLineDelimited(t *testing.T) {
	var (
		buf bytes.Buffer
		wg  sync.WaitGroup
	)
	base := NewLoggerWithWriter("info", &buf)
	scoped := base.WithCache(CacheMeta{Name: "c"})

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); base.Info(context.Background(), "base") }()
		go func() { defer wg.Done(); scoped.Info(context.Background(), "scoped") }()
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 40 {
		t.Errorf("got %d entries, want 40", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
		"":      LevelInfo,
		"loud":  LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	log.Info(context.Background(), "ignored")
	if log.WithCache(CacheMeta{Name: "x"}) == nil {
		t.Fatal("WithCache() returned nil")
	}
}
