package kernel

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned by adapters for operations their geometry
	// model cannot express (e.g. BRep topology on a distance field).
	ErrUnsupported = errors.New("kernel: operation not supported")

	// ErrInvalidShape is returned when a handle has the wrong kind or
	// degenerate geometry for the requested operation.
	ErrInvalidShape = errors.New("kernel: invalid shape")
)

// Unsupported returns an error wrapping ErrUnsupported naming the backend
// and the operation.
func Unsupported(backend, op string) error {
	return fmt.Errorf("%s: %s: %w", backend, op, ErrUnsupported)
}

// IOError reports a failed STEP or STL exchange. The caller receives no
// usable value alongside it.
type IOError struct {
	Op   string // "read-step", "write-step", "write-stl"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
