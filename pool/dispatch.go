package pool

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// acquire resolves the executor a call runs on. n is the batch size, or -1 when it is
// unknown; scoped executors never start more workers than there are tasks.
func (cfg *mapConfig) acquire(n int) (*Executor, func(), error) {
	switch {
	case cfg.executor != nil:
		return cfg.executor, func() {}, nil

	case cfg.scoped:
		exec := cfg.exec.normalize()
		if n > 0 {
			exec.Workers = min(exec.Workers, n)
		}
		e := NewExecutor(exec, cfg.logger)
		return e, func() { _ = e.Shutdown(0) }, nil

	default:
		r := cfg.registry
		if r == nil {
			r = DefaultRegistry()
		}
		e, err := r.Acquire(cfg.exec)
		if err != nil {
			return nil, nil, err
		}
		return e, func() {}, nil
	}
}

// runBatch dispatches every task and gathers one outcome per task. With failFast the
// first failed task cancels the rest of the batch and its error is returned.
func runBatch[T, R any](ctx context.Context, tasks []T, fn ProcessFunc[T, R], rc *runConfig[R], failFast bool) (*collector[R], error) {
	col := newCollector[R](len(tasks), rc.completionOrder)
	if len(tasks) == 0 {
		return col, nil
	}

	exec, release, err := rc.acquire(len(tasks))
	if err != nil {
		return nil, err
	}
	defer release()

	bctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner := &taskRunner[T, R]{fn: fn, cfg: rc}
	completions := make(chan entry[R], len(tasks))

	var inflight sync.WaitGroup
	var producer errgroup.Group
	producer.Go(func() error {
		for i, task := range tasks {
			inflight.Add(1)
			job := func() {
				defer inflight.Done()
				completions <- entry[R]{index: i, outcome: runner.run(bctx, i, task)}
			}

			if err := exec.submit(bctx, job); err != nil {
				inflight.Done()
				return fmt.Errorf("submit task %d: %w", i, err)
			}
		}
		return nil
	})

	go func() {
		_ = producer.Wait()
		inflight.Wait()
		close(completions)
	}()

	observer := rc.batchObserver()
	observer.Start(len(tasks))
	defer observer.Finish()

	var firstErr error
	for e := range completions {
		col.add(e)
		observer.Advance(1)

		if failFast && e.outcome.Kind() == Failed {
			firstErr = taskError(e.index, e.outcome.Err())
			cancel()
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := producer.Wait(); err != nil {
		return nil, err
	}
	return col, nil
}

// resolveBatch runs a batch and resolves its outcomes into values.
func resolveBatch[T, R any](ctx context.Context, tasks []T, fn ProcessFunc[T, R], reusable bool, opts []Option) ([]int, []R, error) {
	rc := newRunConfig[R](reusable, opts...)

	col, err := runBatch(ctx, tasks, fn, rc, !rc.continueOnError)
	if err != nil {
		return nil, nil, err
	}
	return col.results(rc.replacer)
}

// inSubmissionOrder overrides WithCompletionOrder for calls that are always ordered.
func inSubmissionOrder() Option {
	return func(cfg *mapConfig) {
		cfg.completionOrder = false
	}
}

// with returns opts followed by extra without touching the caller's slice.
func with(opts []Option, extra ...Option) []Option {
	out := make([]Option, 0, len(opts)+len(extra))
	out = append(out, opts...)
	return append(out, extra...)
}
