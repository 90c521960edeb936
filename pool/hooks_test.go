package pool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/utkarsh5026/parmap/pool"
)

// TestHooksWithRetry checks that a hook sees the attempts a task needed.
func TestHooksWithRetry(t *testing.T) {
	var mu sync.Mutex
	attempts := map[int]int{}
	var calls [3]atomic.Int32

	_, err := pool.Map(context.Background(), []int{0, 1, 2}, func(ctx context.Context, task int) (int, error) {
		// task i fails i times before succeeding
		if int(calls[task].Add(1)) <= task {
			return 0, errors.New("transient")
		}
		return task, nil
	},
		pool.WithWorkerCount(2),
		pool.WithRetryPolicy(3, time.Millisecond),
		pool.WithTaskHook(func(ev pool.TaskEvent) {
			mu.Lock()
			defer mu.Unlock()
			attempts[ev.Index] = ev.Attempts
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for task, want := range []int{1, 2, 3} {
		if attempts[task] != want {
			t.Errorf("task %d: expected %d attempts, got %d", task, want, attempts[task])
		}
	}
}

// TestHooksWithTimeout checks the event of a task abandoned at its deadline.
func TestHooksWithTimeout(t *testing.T) {
	events := make(chan pool.TaskEvent, 1)

	res, err := pool.Map(context.Background(), []int{1}, func(ctx context.Context, _ int) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	},
		pool.WithTimeout(20*time.Millisecond),
		pool.WithTimeoutReplacer(-1),
		pool.WithWarningHandler(func(pool.TimeoutWarning) {}),
		pool.WithTaskHook(func(ev pool.TaskEvent) { events <- ev }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res[0] != -1 {
		t.Errorf("expected the replacer, got %d", res[0])
	}

	ev := <-events
	if ev.Kind != pool.TimedOut {
		t.Errorf("expected a timed_out event, got %s", ev.Kind)
	}
	if ev.Duration < 20*time.Millisecond {
		t.Errorf("expected the event to span the deadline, got %v", ev.Duration)
	}
}

// TestHooksMultiple checks that every hook runs once per task, in registration order.
func TestHooksMultiple(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) func(pool.TaskEvent) {
		return func(pool.TaskEvent) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}

	_, err := pool.Map(context.Background(), []int{1}, func(ctx context.Context, task int) (int, error) {
		return task, nil
	}, pool.WithTaskHook(record("first")), pool.WithTaskHook(record("second")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected [first second], got %v", order)
	}
}

// TestHooksWithPanic checks that a panicking task is reported as failed and not retried.
func TestHooksWithPanic(t *testing.T) {
	events := make(chan pool.TaskEvent, 1)

	_, err := pool.Map(context.Background(), []int{1}, func(ctx context.Context, _ int) (int, error) {
		panic("boom")
	},
		pool.WithRetryPolicy(3, time.Millisecond),
		pool.WithTaskHook(func(ev pool.TaskEvent) { events <- ev }),
	)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	ev := <-events
	if ev.Kind != pool.Failed || ev.Attempts != 1 || ev.Err == nil {
		t.Errorf("unexpected event: %+v", ev)
	}
}
