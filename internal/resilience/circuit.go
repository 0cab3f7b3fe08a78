// Package resilience guards durable cache backends and bounds upstream calls.
//
// Durable backends run behind a Policy (bulkhead, then circuit breaker). There is
// no retry layer: upstream calls are attempted once and a failing
// backend degrades to a cache miss. Timeout bounds the generative text call.
package resilience

import (
	"sync"
	"time"

	"github.com/LavishGent/breedbase/internal/config"
)

// State is a circuit breaker state.
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half-open",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// counts are reset on every transition.
type counts struct {
	fails  int
	succs  int
	probes int
}

// CircuitBreaker stops calling a backend after consecutive failures and probes it
// again once the open duration has elapsed.
type CircuitBreaker struct {
	name string
	now  func() time.Time

	failureThreshold int
	successThreshold int
	openDuration     time.Duration
	maxProbes        int

	mu       sync.Mutex
	state    State
	counts   counts
	reopenAt time.Time
	notify   func(from, to State)
}

// NewCircuitBreaker creates a breaker named after the backend it protects.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:             name,
		now:              time.Now,
		failureThreshold: orDefault(cfg.FailureThreshold, 5),
		successThreshold: orDefault(cfg.SuccessThreshold, 2),
		openDuration:     orDefault(cfg.OpenDuration, 30*time.Second),
		maxProbes:        orDefault(cfg.HalfOpenMaxRequests, 1),
	}
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// Name returns the name of the protected backend.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute runs fn if the breaker lets it through. Errors for which IsFailure is
// false (cache misses, caller cancellation) count as successes.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.Allow() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(!IsFailure(err))
	return err
}

// Allow admits a call. An open breaker whose open duration has elapsed moves to
// half-open and admits up to the configured number of probes.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	var fire func()
	allowed := true
	switch cb.state {
	case StateOpen:
		if cb.now().Before(cb.reopenAt) {
			allowed = false
			break
		}
		fire = cb.setState(StateHalfOpen)
		cb.counts.probes = 1
	case StateHalfOpen:
		allowed = cb.counts.probes < cb.maxProbes
		if allowed {
			cb.counts.probes++
		}
	}
	cb.mu.Unlock()

	if fire != nil {
		fire()
	}
	return allowed
}

// RecordSuccess counts a healthy call made outside Execute.
func (cb *CircuitBreaker) RecordSuccess() { cb.record(true) }

// RecordFailure counts a failed call made outside Execute.
func (cb *CircuitBreaker) RecordFailure() { cb.record(false) }

func (cb *CircuitBreaker) record(ok bool) {
	cb.mu.Lock()
	var fire func()
	switch {
	case cb.state == StateClosed && ok:
		cb.counts.fails = 0
	case cb.state == StateClosed:
		cb.counts.fails++
		if cb.counts.fails >= cb.failureThreshold {
			fire = cb.setState(StateOpen)
		}
	case cb.state == StateHalfOpen && ok:
		cb.counts.succs++
		cb.counts.probes--
		if cb.counts.succs >= cb.successThreshold {
			fire = cb.setState(StateClosed)
		}
	case cb.state == StateHalfOpen:
		fire = cb.setState(StateOpen)
	}
	cb.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// setState must be called with mu held. The returned func, when non-nil, reports
// the transition and must run after mu is released.
func (cb *CircuitBreaker) setState(to State) func() {
	from := cb.state
	if from == to {
		return nil
	}
	cb.state = to
	cb.counts = counts{}
	if to == StateOpen {
		cb.reopenAt = cb.now().Add(cb.openDuration)
	}
	if notify := cb.notify; notify != nil {
		return func() { notify(from, to) }
	}
	return nil
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// IsOpen reports whether calls are being rejected.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// SetOnStateChange registers fn for transitions. It runs synchronously outside
// the breaker's lock, so it may read breaker state.
func (cb *CircuitBreaker) SetOnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	cb.notify = fn
	cb.mu.Unlock()
}

// Reset closes the breaker without reporting a transition.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	cb.state = StateClosed
	cb.counts = counts{}
	cb.mu.Unlock()
}

// CircuitBreakerStats is a point-in-time view of a CircuitBreaker.
type CircuitBreakerStats struct {
	Name             string
	State            State
	ConsecutiveFails int
	ConsecutiveSuccs int
}

// Stats returns the current state and counters.
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return CircuitBreakerStats{
		Name:             cb.name,
		State:            cb.state,
		ConsecutiveFails: cb.counts.fails,
		ConsecutiveSuccs: cb.counts.succs,
	}
}
