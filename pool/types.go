package pool

import (
	"context"
	"time"
)

// ProcessFunc is a function type that defines how individual tasks are processed.
// It takes a context for cancellation/timeout control and a task of type T, returning a result of type R.
// The context carries the per-task deadline when a timeout is configured.
//
// Type parameters:
//   - T: The type of input task to be processed
//   - R: The type of result produced after processing
type ProcessFunc[T any, R any] func(ctx context.Context, task T) (R, error)

// Result represents the outcome of processing a single task from a stream or a future.
//
// Fields:
//   - Value: The result produced by processing the task (only valid if Error is nil)
//   - Error: Any error that occurred during task processing (nil if successful)
//   - Index: The submission position of the task
type Result[R any] struct {
	Value R
	Error error
	Index int
}

// Pair is an argument tuple for the two-argument star maps.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is an argument tuple for StarMap3.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Zip pairs as[i] with bs[i]. The shorter slice bounds the result.
func Zip[A, B any](as []A, bs []B) []Pair[A, B] {
	n := min(len(as), len(bs))
	out := make([]Pair[A, B], n)
	for i := range n {
		out[i] = Pair[A, B]{First: as[i], Second: bs[i]}
	}
	return out
}

// TaskEvent is reported to task hooks once per finished task.
type TaskEvent struct {
	Index    int
	Kind     OutcomeKind
	Err      error
	Attempts int
	Duration time.Duration
}
