package matrix

import (
	"fmt"
	"io"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// DType is the element type of a decoded matrix.
type DType int

const (
	Float32 DType = iota
	Float64
)

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// dtypeFromDescr maps a NumPy descr string ("<f4", "<f8", ...) to a DType.
// Endianness is left to the reader; only the element kind matters here.
func dtypeFromDescr(descr string) (DType, error) {
	switch {
	case strings.HasSuffix(descr, "f4"):
		return Float32, nil
	case strings.HasSuffix(descr, "f8"):
		return Float64, nil
	default:
		return 0, fmt.Errorf("unsupported element type %q (want float32 or float64)", descr)
	}
}

// Shape is a 2-D matrix extent.
type Shape struct {
	Rows, Cols int
}

func (s Shape) Equal(o Shape) bool {
	return s.Rows == o.Rows && s.Cols == o.Cols
}

// Elements returns the number of cells the shape spans.
func (s Shape) Elements() int {
	return s.Rows * s.Cols
}

// String renders the shape the way NumPy prints it, e.g. "(100, 100)".
// Mismatch error messages rely on this rendering.
func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
}

// Matrix is a dense row-major 2-D array decoded from an upload. Name is the
// archive entry or upload filename and is informational only.
type Matrix struct {
	Name  string
	Rows  int
	Cols  int
	DType DType
	Data  []float64
}

func (m *Matrix) Shape() Shape {
	return Shape{Rows: m.Rows, Cols: m.Cols}
}

// Dense returns a gonum view of the matrix, or nil when it has no elements.
func (m *Matrix) Dense() *mat.Dense {
	if m.Shape().Elements() == 0 {
		return nil
	}
	return mat.NewDense(m.Rows, m.Cols, m.Data)
}

// WriteNPY serializes the matrix as a float64 .npy stream.
func (m *Matrix) WriteNPY(w io.Writer) error {
	d := m.Dense()
	if d == nil {
		return fmt.Errorf("cannot serialize an empty matrix")
	}
	return npyio.Write(w, d)
}

// Validate reports whether the pair can be added element-wise. It returns a
// *ShapeMismatchError or *DTypeMismatchError describing the first violation.
func Validate(a, b *Matrix) error {
	if !a.Shape().Equal(b.Shape()) {
		return &ShapeMismatchError{A: a.Shape(), B: b.Shape()}
	}
	if a.DType != b.DType {
		return &DTypeMismatchError{A: a.DType, B: b.DType}
	}
	return nil
}
