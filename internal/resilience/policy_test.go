package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/types"
)

func testConfig() *config.Config {
	cfg := config.ForTesting()
	cfg.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled:             true,
		FailureThreshold:    2,
		SuccessThreshold:    1,
		OpenDuration:        time.Hour,
		HalfOpenMaxRequests: 1,
	}
	cfg.Bulkhead = config.BulkheadConfig{
		Enabled:        true,
		MaxConcurrent:  4,
		AcquireTimeout: 10 * time.Millisecond,
	}
	return cfg
}

func TestPolicyOpensCircuitOnBackendFailures(t *testing.T) {
	p := NewPolicy("redis", testConfig())

	var states []State
	p.SetOnCircuitStateChange(func(from, to State) { states = append(states, to) })

	calls := 0
	fail := func(context.Context) error { calls++; return errBackendDown }

	_ = p.Execute(context.Background(), fail)
	_ = p.Execute(context.Background(), fail)
	err := p.Execute(context.Background(), fail)

	if !IsCircuitOpen(err) {
		t.Errorf("third Execute() error = %v, want circuit open", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (no retries, then fast-fail)", calls)
	}
	if p.CircuitState() != StateOpen {
		t.Errorf("CircuitState() = %v, want open", p.CircuitState())
	}
	if len(states) != 1 || states[0] != StateOpen {
		t.Errorf("state changes = %v, want [open]", states)
	}
	if p.BulkheadStats().TotalExecuted != 3 {
		t.Errorf("bulkhead executed = %d, want 3", p.BulkheadStats().TotalExecuted)
	}
}

func TestPolicyPassesMissesThrough(t *testing.T) {
	p := NewPolicy("dynamodb", testConfig())

	for i := 0; i < 5; i++ {
		err := p.Execute(context.Background(), func(context.Context) error { return types.ErrCacheMiss })
		if !errors.Is(err, types.ErrCacheMiss) {
			t.Fatalf("Execute() error = %v, want miss", err)
		}
	}
	if p.CircuitState() != StateClosed {
		t.Errorf("CircuitState() = %v, want closed", p.CircuitState())
	}
}

func TestPolicyWithComponentsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.CircuitBreaker.Enabled = false
	cfg.Bulkhead.Enabled = false
	p := NewPolicy("file", cfg)

	if p.CircuitBreaker() != nil {
		t.Error("CircuitBreaker() should be nil when disabled")
	}
	for i := 0; i < 5; i++ {
		if err := p.Execute(context.Background(), func(context.Context) error { return errBackendDown }); !errors.Is(err, errBackendDown) {
			t.Fatalf("Execute() error = %v", err)
		}
	}
	if p.CircuitState() != StateClosed {
		t.Errorf("CircuitState() = %v, want closed", p.CircuitState())
	}
	if p.BulkheadStats() != (BulkheadStats{}) {
		t.Error("BulkheadStats() should be zero when disabled")
	}
}

func TestDisabledPolicy(t *testing.T) {
	p := NewDisabledPolicy()
	ran := false
	if err := p.Execute(context.Background(), func(context.Context) error { ran = true; return nil }); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !ran {
		t.Error("operation did not run")
	}
	if p.CircuitState() != StateClosed {
		t.Errorf("CircuitState() = %v", p.CircuitState())
	}
}

func TestIsFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"miss", types.ErrCacheMiss, false},
		{"wrapped miss", types.NewCacheError("get", "k", "redis", types.ErrCacheMiss), false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"connection", errBackendDown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFailure(tt.err); got != tt.want {
				t.Errorf("IsFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}
