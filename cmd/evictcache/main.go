// Command evictcache replays a put/get script against a bounded cache and
// prints every eviction as it happens.
//
// Script lines are one of:
//
//	put <key> <value>
//	get <key>
//	dump
//
// Blank lines and lines starting with # are skipped. Without -script, a
// built-in script is replayed.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/jonwraymond/evictcache/cache"
	"github.com/jonwraymond/evictcache/health"
	"github.com/jonwraymond/evictcache/observe"
)

const defaultScript = `put A Hello
put B World
put C Holberton
put D School
get B
put E Battery
get A
put F Mission
dump
`

var errUsage = errors.New("evictcache: invalid script line")

type options struct {
	policy   string
	capacity int
	script   string
	logLevel string
	health   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	opts := options{policy: "lru", capacity: cache.DefaultCapacity}
	if v := os.Getenv("EVICTCACHE_POLICY"); v != "" {
		opts.policy = v
	}
	if v := os.Getenv("EVICTCACHE_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("evictcache: EVICTCACHE_CAPACITY: %w", err)
		}
		opts.capacity = n
	}

	fs := flag.NewFlagSet("evictcache", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.policy, "policy", opts.policy, "eviction policy: fifo, lifo, lru, mru or lfu")
	fs.IntVar(&opts.capacity, "capacity", opts.capacity, "maximum number of entries")
	fs.StringVar(&opts.script, "script", "", "script file to replay, - for stdin")
	fs.StringVar(&opts.logLevel, "log-level", "", "log evictions as JSON to stderr at this level")
	fs.BoolVar(&opts.health, "health", false, "print a health check after the script")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if !slices.Contains(observe.ValidLogLevels, opts.logLevel) {
		return opts, fmt.Errorf("%w: %q", observe.ErrInvalidLogLevel, opts.logLevel)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}
	policy, err := cache.ParsePolicy(opts.policy)
	if err != nil {
		return err
	}
	c, err := cache.New[string, string](policy, cache.WithCapacity(opts.capacity))
	if err != nil {
		return err
	}

	c.OnEvict(cache.ObserverFunc[string, string](func(ev cache.Eviction[string, string]) {
		fmt.Fprintln(stdout, "DISCARD:", ev.Key)
	}))
	if opts.logLevel != "" {
		obs, err := attachLogging(ctx, c, opts.logLevel, stderr)
		if err != nil {
			return err
		}
		defer func() { _ = obs.Shutdown(context.WithoutCancel(ctx)) }()
	}

	script, closeScript, err := openScript(opts.script, stdin)
	if err != nil {
		return err
	}
	defer closeScript()

	if err := replay(ctx, c, script, stdout); err != nil {
		return err
	}

	if opts.health {
		checker, err := health.NewCacheChecker(c, health.CacheCheckerConfig{Name: "evictcache"})
		if err != nil {
			return err
		}
		res := checker.Check(ctx)
		fmt.Fprintf(stdout, "health: %s: %s\n", res.Status, res.Message)
	}
	return nil
}

func attachLogging(ctx context.Context, c *cache.Bounded[string, string], level string, w io.Writer) (observe.Observer, error) {
	cfg := observe.DefaultConfig("evictcache")
	cfg.Logging.Level = level
	cfg.Logging.Output = w

	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		return nil, err
	}
	in, err := observe.InstrumentationFromObserver(obs)
	if err != nil {
		return nil, err
	}
	c.OnEvict(observe.EvictionObserver[string, string](in, observe.MetaFor("evictcache", c)))
	return obs, nil
}

func openScript(path string, stdin io.Reader) (io.Reader, func(), error) {
	switch path {
	case "":
		return strings.NewReader(defaultScript), func() {}, nil
	case "-":
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("evictcache: open script: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func replay(ctx context.Context, c *cache.Bounded[string, string], script io.Reader, stdout io.Writer) error {
	scanner := bufio.NewScanner(script)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch {
		case fields[0] == "put" && len(fields) >= 3:
			c.Put(fields[1], strings.Join(fields[2:], " "))
		case fields[0] == "get" && len(fields) == 2:
			if v, ok := c.Get(fields[1]); ok {
				fmt.Fprintf(stdout, "%s: %s\n", fields[1], v)
			} else {
				fmt.Fprintf(stdout, "%s: None\n", fields[1])
			}
		case fields[0] == "dump" && len(fields) == 1:
			if err := c.Dump(stdout); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w %d: %q", errUsage, lineNo, line)
		}
	}
	return scanner.Err()
}
