package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSleeper struct {
	delays []time.Duration
	err    error
}

func (f *fakeSleeper) sleep(_ context.Context, d time.Duration) error {
	f.delays = append(f.delays, d)
	return f.err
}

func retryAll(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func TestExecuteRetriesUpToMaxAttempts(t *testing.T) {
	sleeper := &fakeSleeper{}
	exec := NewExecutor(Config{MaxAttempts: 3, Delay: 250 * time.Millisecond}).WithSleeper(sleeper.sleep)

	failure := errors.New("model overloaded")
	calls := 0
	err := exec.Execute(context.Background(), "vision.extract", func(context.Context) error {
		calls++
		return failure
	}, retryAll)

	if !errors.Is(err, failure) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(sleeper.delays) != 2 {
		t.Fatalf("expected 2 sleeps between 3 attempts, got %d", len(sleeper.delays))
	}
	for i, d := range sleeper.delays {
		if d != 250*time.Millisecond {
			t.Fatalf("sleep %d: expected fixed 250ms delay, got %v", i, d)
		}
	}
}

func TestExecuteStopsOnSuccess(t *testing.T) {
	sleeper := &fakeSleeper{}
	exec := NewExecutor(Config{MaxAttempts: 5, Delay: time.Second}).WithSleeper(sleeper.sleep)

	calls := 0
	err := exec.Execute(context.Background(), "vision.extract", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, retryAll)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected success on attempt 3, got %d calls", calls)
	}
	if len(sleeper.delays) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(sleeper.delays))
	}
}

func TestExecuteDoesNotRetryNonRetryableErrors(t *testing.T) {
	sleeper := &fakeSleeper{}
	exec := NewExecutor(Config{MaxAttempts: 3, Delay: time.Second}).WithSleeper(sleeper.sleep)

	calls := 0
	err := exec.Execute(context.Background(), "vision.extract", func(context.Context) error {
		calls++
		return errors.New("bad request")
	}, nil)

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("non-retryable error must not be retried, got %d calls", calls)
	}
	if len(sleeper.delays) != 0 {
		t.Fatalf("expected no sleeps, got %d", len(sleeper.delays))
	}
}

func TestExecuteStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sleeper := &fakeSleeper{}
	exec := NewExecutor(Config{MaxAttempts: 5, Delay: time.Second}).WithSleeper(func(c context.Context, d time.Duration) error {
		sleeper.delays = append(sleeper.delays, d)
		cancel()
		return c.Err()
	})

	failure := errors.New("transient")
	calls := 0
	err := exec.Execute(ctx, "vision.extract", func(context.Context) error {
		calls++
		return failure
	}, retryAll)

	if !errors.Is(err, failure) {
		t.Fatalf("expected last operation error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("cancellation during sleep must stop retries, got %d calls", calls)
	}
}

func TestExecuteRejectsNilCallback(t *testing.T) {
	exec := NewExecutor(DefaultConfig())
	if err := exec.Execute(context.Background(), "noop", nil, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestNormalizeAllowsZeroDelay(t *testing.T) {
	cfg := Config{MaxAttempts: 2, Delay: 0}.normalize()
	if cfg.Delay != 0 {
		t.Fatalf("zero delay must be preserved for fast retries, got %v", cfg.Delay)
	}
	if (Config{MaxAttempts: 0}).normalize().MaxAttempts != 3 {
		t.Fatal("non-positive attempts must fall back to the default")
	}
}
