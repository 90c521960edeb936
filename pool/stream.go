package pool

import (
	"context"
	"errors"
	"sync"
)

// MapStream processes tasks from a channel of unknown length. Results are delivered in
// completion order, each tagged with the task's submission index. Progress is not
// reported. The error channel yields at most one error and is closed once the result
// channel is closed.
//
// The first failing task stops the stream unless WithContinueOnError is set, in which
// case failed results are delivered with their Error and all failures are joined.
// Consumers must drain the result channel or cancel ctx.
func MapStream[T, R any](ctx context.Context, tasks <-chan T, fn ProcessFunc[T, R], opts ...Option) (<-chan Result[R], <-chan error) {
	rc := newRunConfig[R](false, opts...)

	results := make(chan Result[R], rc.exec.normalize().Buffer)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		if err := stream(ctx, tasks, fn, rc, results); err != nil {
			errc <- err
		}
	}()

	return results, errc
}

func stream[T, R any](ctx context.Context, tasks <-chan T, fn ProcessFunc[T, R], rc *runConfig[R], results chan<- Result[R]) error {
	defer close(results)

	exec, release, err := rc.acquire(-1)
	if err != nil {
		return err
	}
	defer release()

	bctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		runner   = &taskRunner[T, R]{fn: fn, cfg: rc}
		inflight sync.WaitGroup
		mu       sync.Mutex
		errs     []error
	)

	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		if !rc.continueOnError {
			cancel()
		}
	}

	dispatch(bctx, tasks, func(index int, task T) error {
		inflight.Add(1)
		job := func() {
			defer inflight.Done()

			v, err := runner.run(bctx, index, task).Resolve(rc.replacer)
			if err != nil {
				err = taskError(index, err)
				fail(err)
			}

			select {
			case results <- Result[R]{Value: v, Error: err, Index: index}:
			case <-bctx.Done():
			}
		}

		if err := exec.submit(bctx, job); err != nil {
			inflight.Done()
			if bctx.Err() == nil {
				fail(err)
			}
			return err
		}
		return nil
	})
	inflight.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}

// dispatch hands tasks to submit, numbering them in arrival order, until the channel is
// closed, ctx is done or submit fails.
func dispatch[T any](ctx context.Context, tasks <-chan T, submit func(index int, task T) error) {
	for index := 0; ; index++ {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			if err := submit(index, task); err != nil {
				return
			}
		}
	}
}
