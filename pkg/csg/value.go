package csg

import "github.com/chazu/csgstep/pkg/kernel"

// Solid is a 3-D volume or a compound of volumes.
type Solid struct {
	k kernel.Kernel
	h kernel.Shape
}

// Profile is a planar face, the input of the extrusions.
type Profile struct {
	k kernel.Kernel
	h kernel.Shape
}

// Wire is an open or closed chain of connected edges.
type Wire struct {
	k kernel.Kernel
	h kernel.Shape
}

// Wrap returns the Solid holding h. A nil handle gives the empty Solid.
func Wrap(k kernel.Kernel, h kernel.Shape) Solid {
	if h == nil {
		return Solid{}
	}
	return Solid{k: k, h: h}
}

// IsEmpty reports whether s holds no geometry.
func (s Solid) IsEmpty() bool { return s.h == nil }

// Kernel returns the kernel that built s, or nil when s is empty.
func (s Solid) Kernel() kernel.Kernel { return s.k }

// Handle returns the kernel shape, or nil when s is empty.
func (s Solid) Handle() kernel.Shape { return s.h }

// BoundingBox returns the axis-aligned bounds. An empty Solid has zero bounds.
func (s Solid) BoundingBox() (min, max [3]float64) {
	if s.h == nil {
		return min, max
	}
	return s.h.BoundingBox()
}

// IsEmpty reports whether p holds no geometry.
func (p Profile) IsEmpty() bool { return p.h == nil }

// Kernel returns the kernel that built p, or nil when p is empty.
func (p Profile) Kernel() kernel.Kernel { return p.k }

// Handle returns the kernel shape, or nil when p is empty.
func (p Profile) Handle() kernel.Shape { return p.h }

// BoundingBox returns the axis-aligned bounds.
func (p Profile) BoundingBox() (min, max [3]float64) {
	if p.h == nil {
		return min, max
	}
	return p.h.BoundingBox()
}

// IsEmpty reports whether w holds no geometry.
func (w Wire) IsEmpty() bool { return w.h == nil }

// Kernel returns the kernel that built w, or nil when w is empty.
func (w Wire) Kernel() kernel.Kernel { return w.k }

// Handle returns the kernel shape, or nil when w is empty.
func (w Wire) Handle() kernel.Shape { return w.h }

// BoundingBox returns the axis-aligned bounds.
func (w Wire) BoundingBox() (min, max [3]float64) {
	if w.h == nil {
		return min, max
	}
	return w.h.BoundingBox()
}
