package pool

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestRunner[T, R any](fn ProcessFunc[T, R], opts ...Option) *taskRunner[T, R] {
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return &taskRunner[T, R]{fn: fn, cfg: newRunConfig[R](false, opts...)}
}

func TestTaskRunner_Guard(t *testing.T) {
	t.Run("success within deadline", func(t *testing.T) {
		r := newTestRunner(func(ctx context.Context, n int) (int, error) {
			return n + 1, nil
		}, WithTimeout(time.Second))

		out := r.run(context.Background(), 0, 41)
		if out.Kind() != Succeeded || out.Value() != 42 {
			t.Errorf("expected success 42, got %v %v", out.Kind(), out.Value())
		}
	})

	t.Run("deadline passes first", func(t *testing.T) {
		var warned atomic.Int32
		r := newTestRunner(func(ctx context.Context, n int) (int, error) {
			time.Sleep(200 * time.Millisecond)
			return n, nil
		}, WithTimeout(20*time.Millisecond), WithWarningHandler(func(w TimeoutWarning) {
			if w.Index == 9 && w.Timeout == 20*time.Millisecond {
				warned.Add(1)
			}
		}))

		start := time.Now()
		out := r.run(context.Background(), 9, 1)
		if out.Kind() != TimedOut {
			t.Fatalf("expected timeout, got %v", out.Kind())
		}
		if time.Since(start) > 150*time.Millisecond {
			t.Error("guard should not wait for the abandoned task")
		}
		if warned.Load() != 1 {
			t.Errorf("expected exactly one warning, got %d", warned.Load())
		}
	})

	t.Run("parent cancellation is a failure", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		r := newTestRunner(func(ctx context.Context, n int) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		}, WithTimeout(time.Second))

		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		out := r.run(ctx, 0, 1)
		if out.Kind() != Failed || !errors.Is(out.Err(), context.Canceled) {
			t.Errorf("expected cancellation failure, got %v %v", out.Kind(), out.Err())
		}
	})

	t.Run("cancelled before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var called atomic.Bool
		r := newTestRunner(func(ctx context.Context, n int) (int, error) {
			called.Store(true)
			return n, nil
		})

		out := r.run(ctx, 0, 1)
		if out.Kind() != Failed {
			t.Errorf("expected failure, got %v", out.Kind())
		}
		if called.Load() {
			t.Error("task should not run once the batch is cancelled")
		}
	})

	t.Run("no timeout runs inline", func(t *testing.T) {
		r := newTestRunner(func(ctx context.Context, n int) (int, error) {
			if _, ok := ctx.Deadline(); ok {
				return 0, errors.New("unexpected deadline")
			}
			return n, nil
		})

		if out := r.run(context.Background(), 0, 3); out.Kind() != Succeeded {
			t.Errorf("expected success, got %v %v", out.Kind(), out.Err())
		}
	})

	t.Run("panic is not retried", func(t *testing.T) {
		var calls atomic.Int32
		r := newTestRunner(func(ctx context.Context, n int) (int, error) {
			calls.Add(1)
			panic("kaboom")
		}, WithRetryPolicy(3, 0))

		out := r.run(context.Background(), 0, 1)
		if out.Kind() != Failed || !strings.Contains(out.Err().Error(), "worker panic: kaboom") {
			t.Errorf("expected panic failure, got %v %v", out.Kind(), out.Err())
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 call, got %d", calls.Load())
		}
	})

	t.Run("retry stops at deadline", func(t *testing.T) {
		var calls atomic.Int32
		r := newTestRunner(func(ctx context.Context, n int) (int, error) {
			calls.Add(1)
			return 0, errors.New("flaky")
		}, WithRetryPolicy(100, 20*time.Millisecond), WithBackoff(BackoffFixed, 0, 0),
			WithTimeout(50*time.Millisecond), WithWarningHandler(func(TimeoutWarning) {}))

		out := r.run(context.Background(), 0, 1)
		if out.Kind() != TimedOut {
			t.Errorf("expected timeout, got %v %v", out.Kind(), out.Err())
		}
		time.Sleep(30 * time.Millisecond)
		if n := calls.Load(); n > 5 {
			t.Errorf("retries should stop with the deadline, saw %d calls", n)
		}
	})
}

func TestOutcome_Resolve(t *testing.T) {
	errBad := errors.New("bad")

	tests := []struct {
		name    string
		outcome Outcome[int]
		want    int
		wantErr error
	}{
		{name: "success", outcome: success(5), want: 5},
		{name: "timeout uses replacer", outcome: timedOut[int](), want: -1},
		{name: "failure", outcome: failure[int](errBad), want: 0, wantErr: errBad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.outcome.Resolve(-1)
			if got != tt.want {
				t.Errorf("Resolve() = %d, want %d", got, tt.want)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOutcomeKind_String(t *testing.T) {
	for kind, want := range map[OutcomeKind]string{
		Succeeded:      "succeeded",
		TimedOut:       "timed_out",
		Failed:         "failed",
		OutcomeKind(9): "unknown",
	} {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
