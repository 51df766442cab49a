package circuitbreaker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      2,
		Interval:         10 * time.Second,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig())

	if cb.Name() != "test-circuit" {
		t.Errorf("expected name='test-circuit', got %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state=Closed, got %v", cb.State())
	}
}

func TestCircuitBreaker_Do(t *testing.T) {
	cb := New(testConfig())

	if err := cb.Do(func() error { return nil }); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	testErr := errors.New("test error")
	if err := cb.Do(func() error { return testErr }); err != testErr {
		t.Errorf("expected error=%v, got %v", testErr, err)
	}
}

func TestCircuitBreaker_DBConfigTripsOnConsecutiveFailures(t *testing.T) {
	testErr := errors.New("connection refused")

	t.Run("after a run of successes", func(t *testing.T) {
		cb := New(DBConfig())
		for i := 0; i < 10; i++ {
			_ = cb.Do(func() error { return nil })
		}
		for i := 0; i < 5; i++ {
			_ = cb.Do(func() error { return testErr })
		}
		if !cb.IsOpen() {
			t.Errorf("expected state=Open after 5 consecutive failures, got %v", cb.State())
		}
		if err := cb.Do(func() error { return nil }); !errors.Is(err, gobreaker.ErrOpenState) {
			t.Errorf("expected ErrOpenState, got %v", err)
		}
	})

	t.Run("a success resets the run", func(t *testing.T) {
		cb := New(DBConfig())
		for round := 0; round < 3; round++ {
			for i := 0; i < 4; i++ {
				_ = cb.Do(func() error { return testErr })
			}
			_ = cb.Do(func() error { return nil })
		}
		if cb.State() != gobreaker.StateClosed {
			t.Errorf("expected state=Closed, got %v", cb.State())
		}
	})
}

func TestCircuitBreaker_TripsOpenAndRecovers(t *testing.T) {
	cb := New(testConfig())

	testErr := errors.New("test error")
	for i := 0; i < 5; i++ {
		_ = cb.Do(func() error { return testErr })
	}
	if !cb.IsOpen() {
		t.Fatalf("expected open circuit, got %v", cb.State())
	}

	err := cb.Do(func() error {
		t.Error("function should not be called when circuit is open")
		return nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	if err := cb.Do(func() error { return nil }); err != nil {
		t.Errorf("expected success in half-open state, got %v", err)
	}
	if cb.IsOpen() {
		t.Errorf("circuit should not be open after a successful half-open request")
	}
}

func TestCircuitBreaker_DoPassThrough(t *testing.T) {
	cb := New(testConfig())

	sentinel := errors.New("integrity")
	for i := 0; i < 10; i++ {
		err := cb.Do(func() error { return fmt.Errorf("add: %w", sentinel) }, sentinel)
		if !errors.Is(err, sentinel) {
			t.Fatalf("request %d: expected wrapped sentinel, got %v", i, err)
		}
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("pass-through errors must not trip the circuit, got %v", cb.State())
	}
}

func TestCircuitBreaker_MinRequests(t *testing.T) {
	cfg := testConfig()
	cfg.MinRequests = 10
	cb := New(cfg)

	testErr := errors.New("test error")
	for i := 0; i < 4; i++ {
		if err := cb.Do(func() error { return testErr }); err != testErr {
			t.Errorf("request %d: expected test error, got %v", i, err)
		}
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed (below MinRequests), got %v", cb.State())
	}
}

func TestDBConfig(t *testing.T) {
	cfg := DBConfig()

	if cfg.Name != "database" {
		t.Errorf("expected Name=%q, got %q", "database", cfg.Name)
	}
	if cfg.MaxRequests != 3 {
		t.Errorf("expected MaxRequests=3, got %d", cfg.MaxRequests)
	}
	if cfg.ConsecutiveFailures != 5 {
		t.Errorf("expected ConsecutiveFailures=5, got %d", cfg.ConsecutiveFailures)
	}
	if cfg.FailureThreshold != 0 {
		t.Errorf("expected ratio rule disabled, got FailureThreshold=%v", cfg.FailureThreshold)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected Timeout=30s, got %v", cfg.Timeout)
	}
}
