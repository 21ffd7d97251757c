package resilience

import (
	"context"
	"sync"
	"time"
)

// State is a circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures CircuitBreaker. Zero fields take the
// defaults noted.
type CircuitBreakerConfig struct {
	// MaxFailures is the run of consecutive failures that opens the circuit.
	// Default: 5.
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before probing.
	// Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMaxRequests bounds concurrent probes. Default: 1.
	HalfOpenMaxRequests int

	// IsFailure reports whether err counts against the circuit.
	// Default: any error.
	IsFailure func(err error) bool

	// OnStateChange is called after each transition, outside the breaker's lock.
	OnStateChange func(from, to State)
}

// CircuitBreakerMetrics is a snapshot of a breaker.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	LastFailure time.Time
}

// CircuitBreaker stops calling a failing backend until it has had time to
// recover.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	now    func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probes      int
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{config: config, now: time.Now}
}

// Execute runs op unless the circuit is open, and records its outcome.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := op(ctx)
	cb.record(err)
	return err
}

// State returns the current state, moving open to half-open once
// ResetTimeout has passed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	t := cb.refreshLocked()
	s := cb.state
	cb.mu.Unlock()
	cb.notify(t)
	return s
}

// Metrics returns a snapshot of the breaker.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	t := cb.refreshLocked()
	m := CircuitBreakerMetrics{State: cb.state, Failures: cb.failures, LastFailure: cb.lastFailure}
	cb.mu.Unlock()
	cb.notify(t)
	return m
}

// Reset closes the circuit and clears the failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	t := cb.setLocked(StateClosed)
	cb.failures = 0
	cb.mu.Unlock()
	cb.notify(t)
}

type transition struct {
	from, to State
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	t := cb.refreshLocked()
	var err error
	switch cb.state {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if cb.probes >= cb.config.HalfOpenMaxRequests {
			err = ErrCircuitOpen
		} else {
			cb.probes++
		}
	}
	cb.mu.Unlock()
	cb.notify(t)
	return err
}

func (cb *CircuitBreaker) record(err error) {
	failed := cb.config.IsFailure(err)

	cb.mu.Lock()
	var t *transition
	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			break
		}
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.failures >= cb.config.MaxFailures {
			t = cb.setLocked(StateOpen)
		}
	case StateHalfOpen:
		if failed {
			cb.lastFailure = cb.now()
			t = cb.setLocked(StateOpen)
		} else {
			cb.failures = 0
			t = cb.setLocked(StateClosed)
		}
	}
	cb.mu.Unlock()
	cb.notify(t)
}

func (cb *CircuitBreaker) refreshLocked() *transition {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailure) >= cb.config.ResetTimeout {
		return cb.setLocked(StateHalfOpen)
	}
	return nil
}

func (cb *CircuitBreaker) setLocked(s State) *transition {
	if cb.state == s {
		return nil
	}
	t := &transition{from: cb.state, to: s}
	cb.state = s
	cb.probes = 0
	return t
}

func (cb *CircuitBreaker) notify(t *transition) {
	if t != nil && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(t.from, t.to)
	}
}
