package pool

import (
	"context"
	"time"
)

// Map applies fn to every task in parallel and returns the results in input order.
// It runs on a scoped executor with min(workers, len(tasks)) workers that is shut down
// before Map returns, unless WithRegistry or WithExecutor says otherwise.
//
// The first failing task cancels the batch and its error is returned. With
// WithContinueOnError every task runs and all failures are joined.
func Map[T, R any](ctx context.Context, tasks []T, fn ProcessFunc[T, R], opts ...Option) ([]R, error) {
	_, values, err := resolveBatch(ctx, tasks, fn, false, with(opts, inSubmissionOrder()))
	if err != nil && values == nil {
		return nil, err
	}
	return values, err
}

// MapOutcomes is Map without interpretation: every task's Outcome is returned in input
// order, so a timed-out task can be told apart from one that returned the replacer.
// Task failures do not stop the batch. The error reports only dispatch problems and
// cancellation of ctx.
func MapOutcomes[T, R any](ctx context.Context, tasks []T, fn ProcessFunc[T, R], opts ...Option) ([]Outcome[R], error) {
	rc := newRunConfig[R](false, with(opts, inSubmissionOrder())...)

	col, err := runBatch(ctx, tasks, fn, rc, false)
	if err != nil {
		return nil, err
	}
	_, outcomes := col.sorted()
	return outcomes, nil
}

// MapWithTimeout applies fn to every task, giving each task at most timeout to finish.
// Tasks that run out of time are reported as the replacer value (see
// WithTimeoutReplacer) and a TimeoutWarning; they never fail the call. Results are in
// input order.
//
// Unless an executor option is given, the call runs on the reusable executor of
// DefaultRegistry.
func MapWithTimeout[T, R any](ctx context.Context, tasks []T, fn ProcessFunc[T, R], timeout time.Duration, opts ...Option) ([]R, error) {
	return mapOrdered(ctx, tasks, fn, with(opts, WithTimeout(timeout)))
}

// mapOrdered runs tasks on a reusable executor and returns results in input order.
func mapOrdered[T, R any](ctx context.Context, tasks []T, fn ProcessFunc[T, R], opts []Option) ([]R, error) {
	_, values, err := resolveBatch(ctx, tasks, fn, true, with(opts, inSubmissionOrder()))
	if err != nil && values == nil {
		return nil, err
	}
	return values, err
}

// IMap is the iterator-style map: results are in input order by default or in
// completion order with WithCompletionOrder. It runs on a reusable executor.
func IMap[T, R any](ctx context.Context, tasks []T, fn ProcessFunc[T, R], opts ...Option) ([]R, error) {
	_, values, err := IMapIndexed(ctx, tasks, fn, opts...)
	return values, err
}

// IMapIndexed is IMap that also returns, for every result, the submission index of
// the task that produced it.
func IMapIndexed[T, R any](ctx context.Context, tasks []T, fn ProcessFunc[T, R], opts ...Option) ([]int, []R, error) {
	indices, values, err := resolveBatch(ctx, tasks, fn, true, opts)
	if err != nil && values == nil {
		return nil, nil, err
	}
	return indices, values, err
}

// StarMap2 calls fn(a, b) for every argument pair and returns the results in input order.
func StarMap2[A, B, R any](ctx context.Context, args []Pair[A, B], fn func(ctx context.Context, a A, b B) (R, error), opts ...Option) ([]R, error) {
	return mapOrdered(ctx, args, unpack2(fn), opts)
}

// StarMap3 calls fn(a, b, c) for every argument triple and returns the results in input order.
func StarMap3[A, B, C, R any](ctx context.Context, args []Triple[A, B, C], fn func(ctx context.Context, a A, b B, c C) (R, error), opts ...Option) ([]R, error) {
	unpacked := func(ctx context.Context, t Triple[A, B, C]) (R, error) {
		return fn(ctx, t.First, t.Second, t.Third)
	}
	return mapOrdered(ctx, args, unpacked, opts)
}

// IStarMap2 is the iterator-style StarMap2 honouring WithCompletionOrder.
func IStarMap2[A, B, R any](ctx context.Context, args []Pair[A, B], fn func(ctx context.Context, a A, b B) (R, error), opts ...Option) ([]R, error) {
	return IMap(ctx, args, unpack2(fn), opts...)
}

// IStarMap2Indexed is IStarMap2 that also returns the submission index of every result.
func IStarMap2Indexed[A, B, R any](ctx context.Context, args []Pair[A, B], fn func(ctx context.Context, a A, b B) (R, error), opts ...Option) ([]int, []R, error) {
	return IMapIndexed(ctx, args, unpack2(fn), opts...)
}

func unpack2[A, B, R any](fn func(ctx context.Context, a A, b B) (R, error)) ProcessFunc[Pair[A, B], R] {
	return func(ctx context.Context, p Pair[A, B]) (R, error) {
		return fn(ctx, p.First, p.Second)
	}
}
