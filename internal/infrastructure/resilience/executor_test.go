package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func fastRetries(attempts int) Config {
	return Config{
		RetryMaxAttempts:    attempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
	}
}

func retryOn(target error) ErrorClassifier {
	return func(err error) ErrorClassification {
		return ErrorClassification{Retryable: errors.Is(err, target), RecordFailure: true}
	}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	exec := NewExecutor(fastRetries(3), nil)

	errBusy := errors.New("busy")
	attempts := 0
	err := exec.Execute(context.Background(), "store.put", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errBusy
		}
		return nil
	}, retryOn(errBusy))
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteStopsOnFatalError(t *testing.T) {
	exec := NewExecutor(fastRetries(5), nil)

	errFatal := errors.New("constraint violation")
	attempts := 0
	err := exec.Execute(context.Background(), "store.put", func(context.Context) error {
		attempts++
		return errFatal
	}, nil)
	if !errors.Is(err, errFatal) || attempts != 1 {
		t.Fatalf("expected a single failing attempt, got attempts=%d err=%v", attempts, err)
	}
}

func TestExecuteReturnsLastErrorWhenContextEnds(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    5,
		RetryInitialBackoff: time.Second,
		RetryMaxBackoff:     time.Second,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errBusy := errors.New("busy")
	err := exec.Execute(ctx, "nats.publish", func(context.Context) error {
		cancel()
		return errBusy
	}, retryOn(errBusy))
	if !errors.Is(err, errBusy) {
		t.Fatalf("expected the operation error, got %v", err)
	}
}

func TestExecuteOpensCircuitAndNotifiesObserver(t *testing.T) {
	cfg := fastRetries(1)
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	cfg.BreakerHalfOpenMaxCalls = 1
	exec := NewExecutor(cfg, nil)

	var transitions []gobreaker.State
	exec.OnStateChange(func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	})

	errDown := errors.New("down")
	for i := 0; i < 2; i++ {
		if err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
			return errDown
		}, nil); !errors.Is(err, errDown) {
			t.Fatalf("iteration %d: expected operation error, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		t.Fatalf("open circuit must not call the operation")
		return nil
	}, nil)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit error, got %v", err)
	}
	if len(transitions) != 1 || transitions[0] != gobreaker.StateOpen {
		t.Fatalf("expected a single transition to open, got %v", transitions)
	}
}

func TestConfigBackoffIsCapped(t *testing.T) {
	cfg := Config{
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     250 * time.Millisecond,
		RetryMultiplier:     2,
	}.normalize()

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond}
	for i, w := range want {
		if got := cfg.backoff(i + 1); got != w {
			t.Fatalf("backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}
