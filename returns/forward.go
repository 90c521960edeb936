package returns

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/utkarsh5026/parmap/frame"
)

var (
	ErrInvalidHorizon = errors.New("forward horizon requires n >= m >= 1")
)

// ForwardCore returns, for every position t, the compounded return over the following
// days t+m through t+n: prod(1 + rets[t+m..t+n]) - 1. Positions whose window runs past
// the end of the series, or contains a NaN, are NaN.
func ForwardCore(ctx context.Context, rets []float64, m, n int) ([]float64, error) {
	if m < 1 || n < m {
		return nil, fmt.Errorf("%w: m=%d n=%d", ErrInvalidHorizon, m, n)
	}

	// Trailing windows over the reversed series are leading windows over the original.
	reversed := slices.Clone(rets)
	slices.Reverse(reversed)

	rolling, err := frame.NewRolling(reversed, n-m+1)
	if err != nil {
		return nil, err
	}

	f, err := frame.RollingApply(ctx, rolling, compoundWindow, frame.WithShape(frame.ShapeScalar))
	if err != nil {
		return nil, err
	}

	out := shift(f.Col(0), m, len(rets))
	slices.Reverse(out)
	return out, nil
}

func compoundWindow(_ context.Context, window []float64) (frame.Value, error) {
	prod := 1.0
	for _, r := range window {
		if math.IsNaN(r) {
			return frame.Scalar(math.NaN()), nil
		}
		prod *= 1 + r
	}
	return frame.Scalar(prod - 1), nil
}

// shift moves values k positions later, filling the head with NaN.
func shift(values []float64, k, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i-k >= 0 && i-k < len(values) {
			out[i] = values[i-k]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
