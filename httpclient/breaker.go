package httpclient

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/restkit/errors"
)

// BreakerState represents the circuit breaker state.
type BreakerState int

const (
	// BreakerClosed lets requests pass through.
	BreakerClosed BreakerState = iota
	// BreakerOpen fails every request without sending it.
	BreakerOpen
	// BreakerHalfOpen lets a limited number of probe requests through.
	BreakerHalfOpen
)

// String returns the state name.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// Name identifies the breaker in errors and callbacks.
	Name string
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int
	// Cooldown is how long the circuit stays open before probing again.
	Cooldown time.Duration
	// HalfOpenMaxCalls is the number of probe requests allowed when half-open.
	HalfOpenMaxCalls int
	// IsFailure decides whether an exchange counts as a failure. Defaults to
	// retryable errors and transport status codes >= 500.
	IsFailure func(*Response, error) bool
	// OnStateChange is called when the state changes.
	OnStateChange func(name string, from, to BreakerState)
}

// DefaultBreakerConfig returns sensible defaults.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxFailures:      5,
		Cooldown:         30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// Breaker implements the circuit breaker pattern over exchanges.
type Breaker struct {
	config BreakerConfig
	now    func() time.Time

	mu              sync.Mutex
	state           BreakerState
	failures        int
	successes       int
	halfOpenCalls   int
	lastFailureTime time.Time
}

// NewBreaker creates a closed circuit breaker.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = defaultIsFailure
	}
	return &Breaker{config: config, now: time.Now}
}

func defaultIsFailure(res *Response, err error) bool {
	if err != nil {
		return errors.IsRetryable(err)
	}
	return res != nil && res.StatusCode >= 500
}

// Middleware returns the breaker as pipeline middleware. While the circuit
// is open, requests fail with SERVICE_UNAVAILABLE without calling next.
func (b *Breaker) Middleware() Middleware {
	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		if !b.allow() {
			return nil, errors.ServiceUnavailable(b.config.Name, nil).
				WithDetail("breaker", BreakerOpen.String())
		}
		res, err := next(ctx, req)
		b.record(b.config.IsFailure(res, err))
		return res, err
	}
}

// CircuitBreaker returns middleware guarded by a new breaker built from cfg.
func CircuitBreaker(cfg BreakerConfig) Middleware {
	return NewBreaker(cfg).Middleware()
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState()
}

// Reset forces the breaker closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toState(BreakerClosed)
	b.failures = 0
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState() {
	case BreakerClosed:
		return true
	case BreakerHalfOpen:
		if b.halfOpenCalls < b.config.HalfOpenMaxCalls {
			b.halfOpenCalls++
			return true
		}
	}
	return false
}

func (b *Breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !failed {
		switch b.currentState() {
		case BreakerClosed:
			b.failures = 0
		case BreakerHalfOpen:
			b.successes++
			if b.successes >= b.config.HalfOpenMaxCalls {
				b.toState(BreakerClosed)
			}
		}
		return
	}

	b.failures++
	b.lastFailureTime = b.now()
	switch b.currentState() {
	case BreakerClosed:
		if b.failures >= b.config.MaxFailures {
			b.toState(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.toState(BreakerOpen)
	}
}

// currentState moves an expired open circuit to half-open. Callers hold mu.
func (b *Breaker) currentState() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.lastFailureTime) >= b.config.Cooldown {
		b.toState(BreakerHalfOpen)
	}
	return b.state
}

func (b *Breaker) toState(to BreakerState) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to

	b.successes = 0
	b.halfOpenCalls = 0
	if to == BreakerClosed {
		b.failures = 0
	}

	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.config.Name, from, to)
	}
}
