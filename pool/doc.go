// Package pool maps functions over slices and streams of tasks in parallel.
//
// Every task runs on a worker of an Executor. Calls either start a scoped executor that
// lives for the duration of the call (Map, MapOutcomes, MapStream) or borrow a reusable
// one kept by a Registry (MapWithTimeout, IMap and the star maps), so repeated calls with
// the same settings do not pay worker start-up again.
//
// # Basic Usage
//
//	ctx := context.Background()
//	tasks := []int{1, 2, 3, 4}
//	results, err := pool.Map(ctx, tasks, func(ctx context.Context, t int) (int, error) {
//	    return t * 2, nil
//	}, pool.WithWorkerCount(4))
//
// # Timeouts
//
// Each task can be given its own deadline. A task that runs out of time does not fail
// the call: its slot receives the replacer value and a TimeoutWarning is emitted.
//
//	results, err := pool.MapWithTimeout(ctx, urls, fetch, 2*time.Second,
//	    pool.WithTimeoutReplacer(Page{}),
//	)
//
// The task goroutine is abandoned, not killed. It sees its context cancelled and should
// return promptly. Use MapOutcomes to tell timed-out tasks from real results.
//
// # Ordering
//
// Results come back in input order. IMap and IStarMap2 accept WithCompletionOrder, and
// their Indexed variants also return the submission index of every result.
//
// # Executors
//
// KindOSThread workers (the default) each own an OS thread and can be pinned to a core
// with WithCPUPinning. KindGoroutine workers are plain goroutines.
//
//	reg := pool.NewRegistry(nil)
//	defer reg.Shutdown(time.Second)
//	results, err := pool.IMap(ctx, tasks, fn, pool.WithRegistry(reg))
//
// # Retry Logic and Rate Limiting
//
//	results, err := pool.Map(ctx, tasks, callAPI,
//	    pool.WithRetryPolicy(3, 100*time.Millisecond), // 3 attempts, 100ms initial delay
//	    pool.WithRateLimit(5.0, 10),                   // 5 tasks/sec, burst of 10
//	)
//
// # Error Handling
//
// Calls fail fast: the first task error cancels the batch and is returned, wrapped with
// the task index. WithContinueOnError runs every task and joins all failures. Panics
// are recovered into errors carrying the stack trace.
package pool
