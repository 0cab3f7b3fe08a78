package resilience

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/types"
)

var errBackendDown = errors.New("dial tcp: connection refused")

// fakeClock lets tests move the breaker past its open duration without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	cb := NewCircuitBreaker("redis", config.CircuitBreakerConfig{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		OpenDuration:        time.Minute,
		HalfOpenMaxRequests: 1,
	})
	cb.now = clock.Now
	return cb
}

func TestCircuitBreakerStateString(t *testing.T) {
	//nolint:govet // Test table - alignment not critical
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("State.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewCircuitBreakerDefaults(t *testing.T) {
	cb := NewCircuitBreaker("dynamodb", config.CircuitBreakerConfig{})

	if cb.Name() != "dynamodb" {
		t.Errorf("Name() = %s, want dynamodb", cb.Name())
	}
	if cb.failureThreshold != 5 || cb.successThreshold != 2 {
		t.Errorf("thresholds = %d/%d, want 5/2", cb.failureThreshold, cb.successThreshold)
	}
	if cb.openDuration != 30*time.Second {
		t.Errorf("openDuration = %v, want 30s", cb.openDuration)
	}
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errBackendDown })
		if !errors.Is(err, errBackendDown) {
			t.Fatalf("attempt %d: error = %v, want backend error", i, err)
		}
	}

	if !cb.IsOpen() {
		t.Fatalf("State() = %v, want open", cb.State())
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("operation should not run while the circuit is open")
	}
}

func TestCircuitBreakerMissesAreNotFailures(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cb := newTestBreaker(clock)

	for i := 0; i < 10; i++ {
		_ = cb.Execute(func() error {
			return types.NewCacheError("get", "dog_breeds_cache", "redis", types.ErrCacheMiss)
		})
	}

	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed after misses", cb.State())
	}
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cb := newTestBreaker(clock)

	_ = cb.Execute(func() error { return errBackendDown })
	_ = cb.Execute(func() error { return errBackendDown })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errBackendDown })

	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
	if got := cb.Stats().ConsecutiveFails; got != 1 {
		t.Errorf("ConsecutiveFails = %d, want 1", got)
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cb := newTestBreaker(clock)

	var transitions []string
	cb.SetOnStateChange(func(from, to State) {
		transitions = append(transitions, fmt.Sprintf("%s->%s", from, to))
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBackendDown })
	}
	clock.Advance(time.Minute)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("first probe error = %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("State() = %v, want half-open after one success", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("second probe error = %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("State() = %v, want closed", cb.State())
	}

	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if fmt.Sprint(transitions) != fmt.Sprint(want) {
		t.Errorf("transitions = %v, want %v", transitions, want)
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBackendDown })
	}
	clock.Advance(2 * time.Minute)

	_ = cb.Execute(func() error { return errBackendDown })
	if !cb.IsOpen() {
		t.Fatalf("State() = %v, want open after failed probe", cb.State())
	}

	clock.Advance(30 * time.Second)
	if cb.Allow() {
		t.Error("Allow() = true before the new open duration elapsed")
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBackendDown })
	}
	cb.Reset()

	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
	if cb.Stats().ConsecutiveFails != 0 {
		t.Error("Reset() should clear counters")
	}
}

func TestCircuitBreakerCallbackMayReadState(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cb := newTestBreaker(clock)

	done := make(chan State, 1)
	cb.SetOnStateChange(func(from, to State) {
		done <- cb.Stats().State
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBackendDown })
	}

	select {
	case got := <-done:
		if got != StateOpen {
			t.Errorf("state seen by callback = %v, want open", got)
		}
	case <-time.After(time.Second):
		t.Fatal("callback deadlocked or was not invoked")
	}
}
