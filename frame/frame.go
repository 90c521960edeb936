package frame

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Frame is a matrix of results with one index label per row.
type Frame[K any] struct {
	Index []K
	Data  *mat.Dense // nil when the frame has no rows
	Shape Shape
}

// Len returns the number of rows.
func (f *Frame[K]) Len() int { return len(f.Index) }

// Cols returns the number of columns.
func (f *Frame[K]) Cols() int {
	if f.Data == nil {
		return 0
	}
	_, c := f.Data.Dims()
	return c
}

func (f *Frame[K]) At(i, j int) float64 { return f.Data.At(i, j) }

// Row returns a copy of row i.
func (f *Frame[K]) Row(i int) []float64 {
	if f.Data == nil {
		return nil
	}
	return mat.Row(nil, i, f.Data)
}

// Col returns a copy of column j. A scalar frame has a single column.
func (f *Frame[K]) Col(j int) []float64 {
	if f.Data == nil {
		return nil
	}
	return mat.Col(nil, j, f.Data)
}

// assemble stacks values vertically. labels[i] is repeated for every row of values[i].
func assemble[K any](labels []K, values []Value, shape Shape) *Frame[K] {
	rows, cols := 0, 0
	for _, v := range values {
		r, c := v.Dims()
		rows += r
		cols = max(cols, c)
	}

	f := &Frame[K]{Index: make([]K, 0, rows), Shape: shape}
	if rows == 0 || cols == 0 {
		return f
	}

	f.Data = mat.NewDense(rows, cols, nil)
	at := 0
	for i, v := range values {
		r, _ := v.Dims()
		if r == 0 {
			continue
		}
		f.Data.Slice(at, at+r, 0, cols).(*mat.Dense).Copy(v.data)
		for range r {
			f.Index = append(f.Index, labels[i])
		}
		at += r
	}
	return f
}

// blank overwrites every row whose label satisfies skip with NaN.
func (f *Frame[K]) blank(skip func(K) bool) {
	if f.Data == nil {
		return
	}
	for i, k := range f.Index {
		if !skip(k) {
			continue
		}
		for j := range f.Cols() {
			f.Data.Set(i, j, math.NaN())
		}
	}
}
