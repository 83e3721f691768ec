// Package circuitbreaker provides a circuit breaker for outbound service
// calls.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/clock"
)

// State represents the circuit breaker state.
type State int

const (
	StateClosed   State = iota // normal operation
	StateOpen                  // failing fast
	StateHalfOpen              // probing for recovery
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

// Errors returned by the circuit breaker.
var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Config holds circuit breaker configuration.
type Config struct {
	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold int
	// SuccessThreshold is the number of consecutive successes needed in
	// half-open to close.
	SuccessThreshold int
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenMaxRequests limits concurrent probes in half-open state.
	HalfOpenMaxRequests int
	// Clock defaults to the real clock when nil.
	Clock clock.Clock
	// OnStateChange, if non-nil, is notified of every state transition.
	OnStateChange func(from, to State)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		FailureThreshold:    5,
		SuccessThreshold:    3,
		OpenTimeout:         30 * time.Second,
		HalfOpenMaxRequests: 3,
	}
}

// CircuitBreaker implements the circuit breaker pattern.
type CircuitBreaker struct {
	mu sync.Mutex

	config *Config
	clk    clock.Clock

	state                State
	consecutiveFailures  int
	consecutiveSuccesses int
	halfOpenRequests     int
	lastFailure          time.Time

	totalRequests  int64
	totalSuccesses int64
	totalFailures  int64
	totalRejected  int64

	logger *zap.Logger
	name   string
}

// New creates a new circuit breaker.
func New(name string, config *Config, logger *zap.Logger) *CircuitBreaker {
	if config == nil {
		config = DefaultConfig()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &CircuitBreaker{
		name:   name,
		config: config,
		clk:    clk,
		state:  StateClosed,
		logger: logger,
	}
}

// Execute runs fn within the circuit breaker's protection. Returns
// ErrCircuitOpen without calling fn when the circuit is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn(ctx)

	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalRequests++

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if cb.clk.Since(cb.lastFailure) >= cb.config.OpenTimeout {
			cb.setState(StateHalfOpen)
			cb.halfOpenRequests = 1
			cb.logger.Info("circuit breaker transitioning to half-open",
				zap.String("name", cb.name),
			)
			return nil
		}
		cb.totalRejected++
		return ErrCircuitOpen

	case StateHalfOpen:
		if cb.halfOpenRequests >= cb.config.HalfOpenMaxRequests {
			cb.totalRejected++
			return ErrTooManyRequests
		}
		cb.halfOpenRequests++
		return nil
	}

	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.recordSuccess()
		return
	}

	// Client-side cancellation is not a service failure.
	if errors.Is(err, context.Canceled) {
		return
	}

	cb.recordFailure(err)
}

func (cb *CircuitBreaker) recordFailure(err error) {
	cb.totalFailures++
	cb.consecutiveFailures++
	cb.consecutiveSuccesses = 0
	cb.lastFailure = cb.clk.Now()

	switch cb.state {
	case StateClosed:
		if cb.consecutiveFailures >= cb.config.FailureThreshold {
			cb.setState(StateOpen)
			cb.logger.Warn("circuit breaker opened",
				zap.String("name", cb.name),
				zap.Error(err),
			)
		}

	case StateHalfOpen:
		// Any failure while probing reopens the circuit.
		cb.setState(StateOpen)
		cb.logger.Warn("circuit breaker reopened from half-open",
			zap.String("name", cb.name),
			zap.Error(err),
		)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.totalSuccesses++
	cb.consecutiveSuccesses++
	cb.consecutiveFailures = 0

	if cb.state == StateHalfOpen && cb.consecutiveSuccesses >= cb.config.SuccessThreshold {
		cb.setState(StateClosed)
		cb.logger.Info("circuit breaker closed",
			zap.String("name", cb.name),
		)
	}
}

// setState changes state and resets per-state counters. Callers hold cb.mu.
func (cb *CircuitBreaker) setState(newState State) {
	from := cb.state
	cb.state = newState
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses = 0
	cb.halfOpenRequests = 0

	if cb.config.OnStateChange != nil && from != newState {
		cb.config.OnStateChange(from, newState)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats holds circuit breaker statistics.
type Stats struct {
	Name           string `json:"name"`
	State          string `json:"state"`
	TotalRequests  int64  `json:"total_requests"`
	TotalSuccesses int64  `json:"total_successes"`
	TotalFailures  int64  `json:"total_failures"`
	TotalRejected  int64  `json:"total_rejected"`
}

// Stats returns current statistics.
func (cb *CircuitBreaker) Stats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Stats{
		Name:           cb.name,
		State:          cb.state.String(),
		TotalRequests:  cb.totalRequests,
		TotalSuccesses: cb.totalSuccesses,
		TotalFailures:  cb.totalFailures,
		TotalRejected:  cb.totalRejected,
	}
}
