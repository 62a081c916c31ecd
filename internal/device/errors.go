package device

import (
	"errors"
	"fmt"
)

// ErrNoDevice reports that no compute backend is available to run on.
var ErrNoDevice = errors.New("no compute device available")

// ComputeError wraps a backend failure that happened after request
// validation, i.e. during transfer or kernel execution.
type ComputeError struct {
	Backend string
	Op      string
	Err     error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("%s failed on %s backend: %v", e.Op, e.Backend, e.Err)
}

func (e *ComputeError) Unwrap() error {
	return e.Err
}
