package csg

import (
	"errors"
	"fmt"

	"github.com/chazu/csgstep/pkg/kernel"
)

var (
	// ErrEmpty is returned when an operation other than union, compound or
	// a transform is given an empty value.
	ErrEmpty = errors.New("csg: empty value")

	// ErrKernelMismatch is returned when operands were built by different
	// kernels.
	ErrKernelMismatch = errors.New("csg: operands belong to different kernels")
)

// wrap adds the operation name to a kernel failure.
func wrap(op string, err error) error {
	return fmt.Errorf("csg: %s: %w", op, err)
}

// empty reports an operation attempted on an empty value.
func empty(op string) error {
	return fmt.Errorf("csg: %s: %w", op, ErrEmpty)
}

// sameKernel returns the kernel shared by every non-nil entry of ks.
func sameKernel(op string, ks ...kernel.Kernel) (kernel.Kernel, error) {
	var k kernel.Kernel
	for _, c := range ks {
		if c == nil {
			continue
		}
		if k == nil {
			k = c
			continue
		}
		if c != k {
			return nil, fmt.Errorf("csg: %s: %w", op, ErrKernelMismatch)
		}
	}
	return k, nil
}

// ioFailure returns err as a *kernel.IOError, keeping one the kernel
// already produced.
func ioFailure(op, path string, err error) error {
	var ioe *kernel.IOError
	if errors.As(err, &ioe) {
		return err
	}
	return &kernel.IOError{Op: op, Path: path, Err: err}
}
