package frame

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrShapeMismatch = errors.New("result shape mismatch")
)

// Shape is the class of a result value.
type Shape int

const (
	// ShapeUnknown lets the first result decide.
	ShapeUnknown Shape = iota
	ShapeScalar
	ShapeRow
	ShapeTable
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeRow:
		return "row"
	case ShapeTable:
		return "table"
	default:
		return "unknown"
	}
}

// Value is one result of an applied function: a scalar, a row of columns or a table
// of rows.
type Value struct {
	shape Shape
	data  *mat.Dense
}

// Scalar wraps a single number.
func Scalar(f float64) Value {
	return Value{shape: ShapeScalar, data: mat.NewDense(1, 1, []float64{f})}
}

// Row wraps one row of columns. Row() with no columns is an empty row.
func Row(cols ...float64) Value {
	if len(cols) == 0 {
		return Value{shape: ShapeRow}
	}
	return Value{shape: ShapeRow, data: mat.NewDense(1, len(cols), append([]float64(nil), cols...))}
}

// Table wraps a matrix. The matrix is copied.
func Table(m mat.Matrix) Value {
	if m == nil {
		return Value{shape: ShapeTable}
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return Value{shape: ShapeTable}
	}
	return Value{shape: ShapeTable, data: mat.DenseCopyOf(m)}
}

func (v Value) Shape() Shape { return v.shape }

// IsMissing reports whether v is the zero Value.
func (v Value) IsMissing() bool { return v.shape == ShapeUnknown }

// Dims returns the rows and columns the value contributes to a Frame.
func (v Value) Dims() (rows, cols int) {
	if v.data == nil {
		return 0, 0
	}
	return v.data.Dims()
}

// Float returns the value of a scalar, or the first cell of any other shape.
func (v Value) Float() float64 {
	if v.data == nil {
		return 0
	}
	return v.data.At(0, 0)
}

// shapeCheck enforces one shape class and column count across results.
type shapeCheck struct {
	shape Shape
	cols  int
	seen  bool
}

func newShapeCheck(declared Shape) *shapeCheck {
	return &shapeCheck{shape: declared}
}

// check validates v. The zero Value, which is what a timed-out task reports, is
// accepted as a missing result.
func (s *shapeCheck) check(at string, v Value) error {
	if v.IsMissing() {
		return nil
	}
	if s.shape == ShapeUnknown {
		s.shape = v.shape
	}
	if v.shape != s.shape {
		return fmt.Errorf("%w: %s: got %s, want %s", ErrShapeMismatch, at, v.shape, s.shape)
	}

	rows, cols := v.Dims()
	if rows == 0 {
		return nil
	}
	if !s.seen {
		s.cols, s.seen = cols, true
		return nil
	}
	if cols != s.cols {
		return fmt.Errorf("%w: %s: got %d columns, want %d", ErrShapeMismatch, at, cols, s.cols)
	}
	return nil
}
