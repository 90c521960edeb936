package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// taskRunner executes single tasks of a batch under the batch's timeout, retry and
// rate-limit settings. Every call to run yields exactly one Outcome.
type taskRunner[T, R any] struct {
	fn  ProcessFunc[T, R]
	cfg *runConfig[R]
}

func (r *taskRunner[T, R]) run(ctx context.Context, index int, task T) Outcome[R] {
	start := time.Now()
	var attempts atomic.Int32

	out := r.guard(ctx, index, task, &attempts)
	if len(r.cfg.hooks) > 0 {
		ev := TaskEvent{
			Index:    index,
			Kind:     out.Kind(),
			Err:      out.Err(),
			Attempts: int(attempts.Load()),
			Duration: time.Since(start),
		}
		for _, hook := range r.cfg.hooks {
			hook(ev)
		}
	}
	return out
}

// guard races the task against its deadline. The deadline starts when the task does,
// not when it was submitted. On expiry the task goroutine is abandoned: its context is
// cancelled but nothing waits for it to return.
func (r *taskRunner[T, R]) guard(ctx context.Context, index int, task T, attempts *atomic.Int32) Outcome[R] {
	if err := ctx.Err(); err != nil {
		return failure[R](err)
	}

	if r.cfg.rateLimiter != nil {
		if err := r.cfg.rateLimiter.Wait(ctx); err != nil {
			return failure[R](err)
		}
	}

	if r.cfg.timeout <= 0 {
		return r.call(ctx, task, attempts)
	}

	tctx, cancel := context.WithTimeout(ctx, r.cfg.timeout)
	defer cancel()

	done := make(chan Outcome[R], 1)
	go func() {
		done <- r.call(tctx, task, attempts)
	}()

	select {
	case out := <-done:
		// The task noticed its own deadline before the watchdog did.
		if out.Kind() == Failed && errors.Is(out.Err(), context.DeadlineExceeded) && ctx.Err() == nil && tctx.Err() != nil {
			return r.timeout(index)
		}
		return out
	case <-tctx.Done():
		if err := ctx.Err(); err != nil {
			return failure[R](err)
		}
		return r.timeout(index)
	}
}

func (r *taskRunner[T, R]) timeout(index int) Outcome[R] {
	r.cfg.onWarning(TimeoutWarning{Index: index, Timeout: r.cfg.timeout})
	return timedOut[R]()
}

// call runs fn with retries. A panic ends the task; it is not retried.
func (r *taskRunner[T, R]) call(ctx context.Context, task T, attempts *atomic.Int32) (out Outcome[R]) {
	defer func() {
		if rec := recover(); rec != nil {
			out = failure[R](panicError(rec))
		}
	}()

	maxAttempts := max(r.cfg.maxAttempts, 1)

	var err error
	for attempt := range maxAttempts {
		if attempt > 0 && r.cfg.backoff != nil {
			select {
			case <-time.After(r.cfg.backoff.Delay(attempt - 1)):
			case <-ctx.Done():
				return failure[R](ctx.Err())
			}
		}

		attempts.Add(1)
		var v R
		if v, err = r.fn(ctx, task); err == nil {
			return success(v)
		}

		if ctx.Err() != nil {
			break
		}
	}

	return failure[R](err)
}
