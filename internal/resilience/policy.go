package resilience

import (
	"context"

	"github.com/LavishGent/breedbase/internal/config"
)

// Executor is what a guarded cache backend needs from its policy.
type Executor interface {
	Execute(ctx context.Context, fn func(context.Context) error) error
	CircuitState() State
	SetOnCircuitStateChange(fn func(from, to State))
}

// Policy guards one durable backend. A call first takes a bulkhead slot, then
// passes the circuit breaker. Either guard is nil when disabled in config, and
// the zero Policy runs every call directly.
type Policy struct {
	breaker  *CircuitBreaker
	bulkhead *Bulkhead
}

// NewPolicy builds the guards the config enables for the named backend.
func NewPolicy(name string, cfg *config.Config) *Policy {
	var p Policy
	if cfg.CircuitBreaker.Enabled {
		p.breaker = NewCircuitBreaker(name, cfg.CircuitBreaker)
	}
	if cfg.Bulkhead.Enabled {
		p.bulkhead = NewBulkhead(cfg.Bulkhead)
	}
	return &p
}

// NewDisabledPolicy returns a policy with neither guard, used for local
// backends and when resilience is switched off.
func NewDisabledPolicy() *Policy {
	return &Policy{}
}

// Execute runs fn through the enabled guards.
func (p *Policy) Execute(ctx context.Context, fn func(context.Context) error) error {
	call := fn
	if cb := p.breaker; cb != nil {
		call = func(ctx context.Context) error {
			return cb.Execute(func() error { return fn(ctx) })
		}
	}
	if p.bulkhead == nil {
		return call(ctx)
	}
	return p.bulkhead.Execute(ctx, call)
}

// CircuitBreaker is nil when the breaker is disabled.
func (p *Policy) CircuitBreaker() *CircuitBreaker {
	return p.breaker
}

// CircuitState reports closed for a disabled breaker.
func (p *Policy) CircuitState() State {
	if p.breaker == nil {
		return StateClosed
	}
	return p.breaker.State()
}

// SetOnCircuitStateChange registers fn for breaker transitions. No-op when the breaker is disabled.
func (p *Policy) SetOnCircuitStateChange(fn func(from, to State)) {
	if p.breaker != nil {
		p.breaker.SetOnStateChange(fn)
	}
}

// BulkheadStats is zero when the bulkhead is disabled.
func (p *Policy) BulkheadStats() BulkheadStats {
	if p.bulkhead == nil {
		return BulkheadStats{}
	}
	return p.bulkhead.Stats()
}

var _ Executor = (*Policy)(nil)
