package csg

import (
	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/samber/lo"
)

// UnionAll merges solids with one volume reconstruction call. Empty
// operands are skipped; a single remaining operand is returned as is.
// Use it for pieces sharing coincident faces, such as mirrored halves,
// where a plain fuse can misclassify the shared boundary.
func UnionAll(solids ...Solid) (Solid, error) {
	parts := lo.Filter(solids, func(s Solid, _ int) bool { return !s.IsEmpty() })
	switch len(parts) {
	case 0:
		return Solid{}, nil
	case 1:
		return parts[0], nil
	}
	k, err := sameKernel("union", lo.Map(parts, func(s Solid, _ int) kernel.Kernel { return s.k })...)
	if err != nil {
		return Solid{}, err
	}
	h, err := k.VolumeUnion(lo.Map(parts, func(s Solid, _ int) kernel.Shape { return s.h }))
	if err != nil {
		return Solid{}, wrap("union", err)
	}
	return Wrap(k, h), nil
}

// Union merges s with others by volume reconstruction. See UnionAll.
func (s Solid) Union(others ...Solid) (Solid, error) {
	return UnionAll(append([]Solid{s}, others...)...)
}

// binary runs a two-operand boolean. Both operands must be non-empty and
// share a kernel.
func binary(name string, a, b Solid, op func(k kernel.Kernel, a, b kernel.Shape) (kernel.Shape, error)) (Solid, error) {
	if a.IsEmpty() || b.IsEmpty() {
		return Solid{}, empty(name)
	}
	k, err := sameKernel(name, a.k, b.k)
	if err != nil {
		return Solid{}, err
	}
	h, err := op(k, a.h, b.h)
	if err != nil {
		return Solid{}, wrap(name, err)
	}
	return Wrap(k, h), nil
}

// Fuse is the direct boolean union of s and o.
func (s Solid) Fuse(o Solid) (Solid, error) {
	return binary("fuse", s, o, kernel.Kernel.Fuse)
}

// Intersection keeps the volume common to s and o.
func (s Solid) Intersection(o Solid) (Solid, error) {
	return binary("intersection", s, o, kernel.Kernel.Common)
}

// Difference removes o from s.
func (s Solid) Difference(o Solid) (Solid, error) {
	return binary("difference", s, o, kernel.Kernel.Cut)
}

// Compound groups s with others into one container without any boolean
// computation. Empty operands are skipped.
func (s Solid) Compound(others ...Solid) (Solid, error) {
	parts := lo.Filter(append([]Solid{s}, others...), func(s Solid, _ int) bool { return !s.IsEmpty() })
	if len(parts) == 0 {
		return Solid{}, nil
	}
	k, err := sameKernel("compound", lo.Map(parts, func(s Solid, _ int) kernel.Kernel { return s.k })...)
	if err != nil {
		return Solid{}, err
	}
	h, err := k.Compound(lo.Map(parts, func(s Solid, _ int) kernel.Shape { return s.h }))
	if err != nil {
		return Solid{}, wrap("compound", err)
	}
	return Wrap(k, h), nil
}

// ---------------------------------------------------------------------------
// Profile booleans
// ---------------------------------------------------------------------------

func binary2(name string, a, b Profile, op func(k kernel.Kernel, a, b kernel.Shape) (kernel.Shape, error)) (Profile, error) {
	if a.IsEmpty() || b.IsEmpty() {
		return Profile{}, empty(name)
	}
	k, err := sameKernel(name, a.k, b.k)
	if err != nil {
		return Profile{}, err
	}
	h, err := op(k, a.h, b.h)
	if err != nil {
		return Profile{}, wrap(name, err)
	}
	return Profile{k: k, h: h}, nil
}

// Union fuses two coplanar profiles. An empty operand is the identity.
func (p Profile) Union(o Profile) (Profile, error) {
	switch {
	case o.IsEmpty():
		return p, nil
	case p.IsEmpty():
		return o, nil
	}
	return binary2("profile union", p, o, kernel.Kernel.Fuse)
}

// Intersection keeps the region common to p and o.
func (p Profile) Intersection(o Profile) (Profile, error) {
	return binary2("profile intersection", p, o, kernel.Kernel.Common)
}

// Difference removes o from p.
func (p Profile) Difference(o Profile) (Profile, error) {
	return binary2("profile difference", p, o, kernel.Kernel.Cut)
}
