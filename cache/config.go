package cache

import "fmt"

// Config configures a bounded cache.
type Config struct {
	// Capacity is the maximum number of entries. Must be positive.
	// Default: DefaultCapacity (4)
	Capacity int

	// Policy is the eviction policy.
	// Default: LRU
	Policy Policy
}

// DefaultConfig returns a Config with DefaultCapacity and LRU eviction.
func DefaultConfig() Config {
	return Config{
		Capacity: DefaultCapacity,
		Policy:   LRU,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, c.Capacity)
	}
	if !c.Policy.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPolicy, int(c.Policy))
	}
	return nil
}

// Option adjusts a Config before a cache is built.
type Option func(*Config)

// WithCapacity sets the maximum number of entries.
// A non-positive capacity makes construction fail.
func WithCapacity(capacity int) Option {
	return func(c *Config) {
		c.Capacity = capacity
	}
}

// WithPolicy overrides the eviction policy.
func WithPolicy(p Policy) Option {
	return func(c *Config) {
		c.Policy = p
	}
}

func buildConfig(policy Policy, opts []Option) Config {
	cfg := DefaultConfig()
	cfg.Policy = policy
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
