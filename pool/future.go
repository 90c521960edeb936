package pool

import (
	"context"
	"sync"
)

// Future is the pending result of a task submitted with Go.
type Future[R any] struct {
	done chan struct{}
	once sync.Once
	res  Result[R]
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

func (f *Future[R]) complete(res Result[R]) {
	f.once.Do(func() {
		f.res = res
		close(f.done)
	})
}

// Get blocks until the result is available.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.res.Value, f.res.Error
}

// GetWithContext blocks until the result is available or ctx is done.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.res.Value, f.res.Error
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// TryGet returns the result without blocking. ok is false while the task is running.
func (f *Future[R]) TryGet() (value R, err error, ok bool) {
	select {
	case <-f.done:
		return f.res.Value, f.res.Error, true
	default:
		return value, nil, false
	}
}

// Done is closed once the result is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Go submits fn to e and returns its Future. Timeout, replacer, retry, rate-limit and
// hook options apply as they do for a batch; executor options are ignored.
// Submission blocks while e's queues are full.
func Go[R any](ctx context.Context, e *Executor, fn func(ctx context.Context) (R, error), opts ...Option) (*Future[R], error) {
	rc := newRunConfig[R](true, opts...)
	runner := &taskRunner[struct{}, R]{
		fn: func(ctx context.Context, _ struct{}) (R, error) {
			return fn(ctx)
		},
		cfg: rc,
	}

	f := newFuture[R]()
	err := e.submit(ctx, func() {
		v, err := runner.run(ctx, 0, struct{}{}).Resolve(rc.replacer)
		f.complete(Result[R]{Value: v, Error: err})
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}
