package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLoad = errors.New("load failed")

type countingGuard struct {
	calls atomic.Int32
}

func (g *countingGuard) Execute(ctx context.Context, op func(context.Context) error) error {
	g.calls.Add(1)
	return op(ctx)
}

func TestLoader_MissLoadsAndStores(t *testing.T) {
	c := MustNew[string, string](LRU)
	var calls atomic.Int32
	l := NewLoader[string, string](c, func(_ context.Context, key string) (string, error) {
		calls.Add(1)
		return "value-" + key, nil
	}, nil)

	got, err := l.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "value-a", got)

	got, err = l.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "value-a", got)
	assert.Equal(t, int32(1), calls.Load())

	v, ok := c.Peek("a")
	require.True(t, ok)
	assert.Equal(t, "value-a", v)
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	c := MustNew[string, int](FIFO)
	var calls atomic.Int32
	l := NewLoader[string, int](c, func(context.Context, string) (int, error) {
		calls.Add(1)
		return 0, errLoad
	}, nil)

	_, err := l.Get(context.Background(), "a")
	assert.ErrorIs(t, err, errLoad)
	_, err = l.Get(context.Background(), "a")
	assert.ErrorIs(t, err, errLoad)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestLoader_NilLoadFunc(t *testing.T) {
	l := NewLoader[string, int](MustNew[string, int](LRU), nil, nil)
	_, err := l.Get(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNilLoadFunc)
}

func TestLoader_GetWithOverridesDefault(t *testing.T) {
	l := NewLoader[string, int](MustNew[string, int](LRU), func(context.Context, string) (int, error) {
		return 1, nil
	}, nil)

	got, err := l.GetWith(context.Background(), "a", func(context.Context, string) (int, error) {
		return 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestLoader_UsesGuard(t *testing.T) {
	guard := &countingGuard{}
	l := NewLoader[string, int](MustNew[string, int](LRU), func(context.Context, string) (int, error) {
		return 7, nil
	}, guard)

	got, err := l.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	_, err = l.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int32(1), guard.calls.Load())
}

func TestLoader_ConcurrentMissesShareLoad(t *testing.T) {
	c := MustNew[string, int](LRU)
	var calls atomic.Int32
	release := make(chan struct{})
	l := NewLoader[string, int](c, func(context.Context, string) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}, nil)

	const workers = 8
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)
	results := make([]int, workers)
	errs := make([]error, workers)
	wg.Add(workers)
	started.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i], errs[i] = l.Get(context.Background(), "shared")
		}(i)
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 42, results[i])
	}
	// late goroutines may start after the first load finished and hit the cache
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoader_KeysThatPrintAlikeLoadSeparately(t *testing.T) {
	c := MustNew[any, string](LRU)
	release := make(chan struct{})
	l := NewLoader[any, string](c, func(_ context.Context, key any) (string, error) {
		<-release
		return fmt.Sprintf("%T", key), nil
	}, nil)

	var (
		wg     sync.WaitGroup
		intVal string
		strVal string
		intErr error
		strErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		intVal, intErr = l.Get(context.Background(), 1)
	}()
	go func() {
		defer wg.Done()
		strVal, strErr = l.Get(context.Background(), "1")
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, intErr)
	require.NoError(t, strErr)
	assert.Equal(t, "int", intVal)
	assert.Equal(t, "string", strVal)

	v, ok := c.Peek("1")
	require.True(t, ok)
	assert.Equal(t, "string", v)
	v, ok = c.Peek(1)
	require.True(t, ok)
	assert.Equal(t, "int", v)
}

// sameName formats identically for every value.
type sameName struct{ n int }

func (sameName) GoString() string { return "sameName" }

func TestLoader_FlightKeyCollisionLoadsOwnKey(t *testing.T) {
	assert.Equal(t, flightKey(sameName{1}), flightKey(sameName{2}))

	c := MustNew[sameName, int](LRU)
	release := make(chan struct{})
	l := NewLoader[sameName, int](c, func(_ context.Context, key sameName) (int, error) {
		if key.n == 1 {
			<-release
		}
		return key.n * 10, nil
	}, nil)

	var (
		wg   sync.WaitGroup
		one  int
		oneE error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		one, oneE = l.Get(context.Background(), sameName{1})
	}()
	time.Sleep(20 * time.Millisecond)

	var (
		two  int
		twoE error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		two, twoE = l.Get(context.Background(), sameName{2})
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, oneE)
	require.NoError(t, twoE)
	assert.Equal(t, 10, one)
	assert.Equal(t, 20, two)
	v, ok := c.Peek(sameName{2})
	require.True(t, ok)
	assert.Equal(t, 20, v)
}

func TestFlightKey_IncludesType(t *testing.T) {
	assert.NotEqual(t, flightKey[any](1), flightKey[any]("1"))
	assert.NotEqual(t, flightKey[any](int64(1)), flightKey[any](int32(1)))
	assert.Equal(t, flightKey("a"), flightKey("a"))
}
