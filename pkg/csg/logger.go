package csg

import (
	"log/slog"

	"github.com/chazu/csgstep/pkg/kernel"
)

// SetLogger configures logging for the csg layer and the kernel adapters
// underneath it. Pass nil to silence them again.
func SetLogger(l *slog.Logger) { kernel.SetLogger(l) }

// Logger returns the current logger.
func Logger() *slog.Logger { return kernel.Logger() }
