package matrix

import "fmt"

// DecodeError wraps any failure to turn an upload into a Matrix. Field names
// the multipart form field the payload arrived in.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode upload %q: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ShapeMismatchError reports two matrices whose shapes differ. The message
// contains both shapes.
type ShapeMismatchError struct {
	A, B Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("matrix shape mismatch: %s vs %s", e.A, e.B)
}

// DTypeMismatchError reports two matrices whose element types differ.
type DTypeMismatchError struct {
	A, B DType
}

func (e *DTypeMismatchError) Error() string {
	return fmt.Sprintf("matrix element type mismatch: %s vs %s", e.A, e.B)
}
