// Package observe instruments caches with OpenTelemetry tracing and metrics
// and a JSON structured logger.
//
// NewObserver builds the providers from a Config. InstrumentationFromObserver
// turns them into helpers that plug into the cache package:
//
//	in, _ := observe.InstrumentationFromObserver(obs)
//	meta := observe.MetaFor("users", c)
//	c.OnEvict(observe.EvictionObserver[string, *User](in, meta))
//	loader := cache.NewLoader(c, observe.WrapLoad(in, meta, loadUser), nil)
//
// Every eviction is logged at info as a DISCARD entry with the evicted key in
// the cache.key field.
package observe
