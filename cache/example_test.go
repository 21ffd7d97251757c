package cache_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonwraymond/evictcache/cache"
)

func ExampleNew() {
	c, err := cache.New[string, string](cache.LRU, cache.WithCapacity(2))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	c.OnEvict(cache.ObserverFunc[string, string](func(ev cache.Eviction[string, string]) {
		fmt.Println("DISCARD:", ev.Key)
	}))

	c.Put("A", "alpha")
	c.Put("B", "beta")
	c.Get("A")
	c.Put("C", "gamma")

	_ = c.Dump(os.Stdout)
	// Output:
	// DISCARD: B
	// Current cache:
	// A: alpha
	// C: gamma
}

func ExampleNew_invalidCapacity() {
	_, err := cache.New[string, int](cache.FIFO, cache.WithCapacity(0))
	fmt.Println(errors.Is(err, cache.ErrInvalidCapacity))
	// Output:
	// true
}

func ExampleBounded_Keys() {
	c := cache.MustNew[string, int](cache.LFU)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Get("a")
	c.Get("a")
	c.Get("c")

	// next victim first
	fmt.Println(c.Keys())
	// Output:
	// [b c a]
}

func ExampleParsePolicy() {
	p, err := cache.ParsePolicy("mru")
	fmt.Println(p, err)

	_, err = cache.ParsePolicy("random")
	fmt.Println(errors.Is(err, cache.ErrUnknownPolicy))
	// Output:
	// mru <nil>
	// true
}

func ExampleLoader() {
	c := cache.MustNew[int, string](cache.FIFO)
	loader := cache.NewLoader[int, string](c, func(_ context.Context, id int) (string, error) {
		fmt.Println("loading", id)
		return fmt.Sprintf("user-%d", id), nil
	}, nil)

	ctx := context.Background()
	v, _ := loader.Get(ctx, 7)
	fmt.Println(v)
	v, _ = loader.Get(ctx, 7)
	fmt.Println(v)
	// Output:
	// loading 7
	// user-7
	// user-7
}

func ExampleMemoizer() {
	m := cache.NewMemoizer[int](cache.MustNew[string, int](cache.LRU), nil)
	sum := func(_ context.Context, input any) (int, error) {
		fmt.Println("computing")
		total := 0
		for _, n := range input.([]any) {
			total += n.(int)
		}
		return total, nil
	}

	ctx := context.Background()
	v, _ := m.Do(ctx, "sum", []any{1, 2, 3}, sum)
	fmt.Println(v)
	v, _ = m.Do(ctx, "sum", []any{1, 2, 3}, sum)
	fmt.Println(v)
	// Output:
	// computing
	// 6
	// 6
}
