package frame

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/utkarsh5026/parmap/pool"
)

var (
	ErrInvalidWindow = errors.New("invalid rolling window")
)

// Rolling describes trailing windows over a series. Position t sees the elements
// [max(0, t-size+1), t].
type Rolling[T any] struct {
	data       []T
	size       int
	minPeriods int
}

// RollingOption configures a Rolling.
type RollingOption func(*rollingConfig)

type rollingConfig struct {
	minPeriods int
}

// WithMinPeriods sets how many elements a window needs before its result is kept.
// Results of earlier positions are replaced by NaN. Defaults to the window size.
func WithMinPeriods(p int) RollingOption {
	return func(cfg *rollingConfig) {
		cfg.minPeriods = p
	}
}

// NewRolling validates the window before anything runs: size must be positive and
// min periods within [1, size].
func NewRolling[T any](data []T, size int, opts ...RollingOption) (*Rolling[T], error) {
	cfg := rollingConfig{minPeriods: size}
	for _, opt := range opts {
		opt(&cfg)
	}

	if size < 1 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidWindow, size)
	}
	if cfg.minPeriods < 1 || cfg.minPeriods > size {
		return nil, fmt.Errorf("%w: min periods %d outside [1, %d]", ErrInvalidWindow, cfg.minPeriods, size)
	}

	return &Rolling[T]{data: data, size: size, minPeriods: cfg.minPeriods}, nil
}

// Len is the number of positions, which equals the series length.
func (r *Rolling[T]) Len() int { return len(r.data) }

func (r *Rolling[T]) Size() int { return r.size }

func (r *Rolling[T]) MinPeriods() int { return r.minPeriods }

// Window returns a copy of the window ending at position t.
func (r *Rolling[T]) Window(t int) []T {
	return slices.Clone(r.data[max(0, t-r.size+1) : t+1])
}

// Windows returns a copy of every window in position order.
func (r *Rolling[T]) Windows() [][]T {
	out := make([][]T, len(r.data))
	for t := range r.data {
		out[t] = r.Window(t)
	}
	return out
}

// WindowFunc computes the result for one window.
type WindowFunc[T any] func(ctx context.Context, window []T) (Value, error)

// RollingApply calls fn on every window in order on the calling goroutine and returns
// one result per position, indexed by position.
func RollingApply[T any](ctx context.Context, r *Rolling[T], fn WindowFunc[T], opts ...ApplyOption) (*Frame[int], error) {
	cfg := newApplyConfig(opts)

	observer := cfg.observer
	if observer != nil {
		observer.Start(r.Len())
		defer observer.Finish()
	}

	values := make([]Value, r.Len())
	for t := range r.Len() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, err := fn(ctx, r.Window(t))
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", t, err)
		}
		values[t] = v

		if observer != nil {
			observer.Advance(1)
		}
	}

	return r.assemble(values, cfg.shape)
}

// ParallelRollingApply is RollingApply with windows spread over a pool. Results keep
// position order.
func ParallelRollingApply[T any](ctx context.Context, r *Rolling[T], fn WindowFunc[T], opts ...ApplyOption) (*Frame[int], error) {
	cfg := newApplyConfig(opts)

	values, err := pool.Map(ctx, r.Windows(), pool.ProcessFunc[[]T, Value](fn), cfg.poolOptions()...)
	if err != nil {
		return nil, err
	}
	return r.assemble(values, cfg.shape)
}

// assemble validates shapes, fills missing results with NaN rows and blanks the
// positions that precede min periods.
func (r *Rolling[T]) assemble(values []Value, declared Shape) (*Frame[int], error) {
	check := newShapeCheck(declared)
	for t, v := range values {
		if err := check.check(fmt.Sprintf("position %d", t), v); err != nil {
			return nil, err
		}
	}

	// Every position keeps one row: missing and empty results become NaN rows, one
	// column wide when no result fixed the width.
	shape, cols := check.shape, check.cols
	if shape == ShapeUnknown {
		shape = ShapeScalar
	}
	if !check.seen {
		cols = 1
	}
	for t, v := range values {
		if rows, _ := v.Dims(); rows == 0 {
			values[t] = nanRow(shape, cols)
		}
	}

	positions := make([]int, len(values))
	for t := range positions {
		positions[t] = t
	}

	f := assemble(positions, values, shape)
	f.blank(func(t int) bool { return t < r.minPeriods-1 })
	return f, nil
}

func nanRow(shape Shape, cols int) Value {
	row := make([]float64, cols)
	for j := range row {
		row[j] = math.NaN()
	}
	v := Row(row...)
	v.shape = shape
	return v
}
