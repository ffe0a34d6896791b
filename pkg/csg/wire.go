package csg

import (
	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/samber/lo"
)

// Add chains o onto the end of w. The kernel may reverse o to connect it.
// An empty operand is the identity.
func (w Wire) Add(o Wire) (Wire, error) {
	return JoinWires(w, o)
}

// JoinWires chains wires in order into one wire. Empty wires are skipped
// and a single remaining wire is returned as is.
func JoinWires(wires ...Wire) (Wire, error) {
	parts := lo.Filter(wires, func(w Wire, _ int) bool { return !w.IsEmpty() })
	switch len(parts) {
	case 0:
		return Wire{}, nil
	case 1:
		return parts[0], nil
	}
	k, err := sameKernel("wire", lo.Map(parts, func(w Wire, _ int) kernel.Kernel { return w.k })...)
	if err != nil {
		return Wire{}, err
	}
	h, err := k.Wire(lo.Map(parts, func(w Wire, _ int) kernel.Shape { return w.h })...)
	if err != nil {
		return Wire{}, wrap("wire", err)
	}
	return Wire{k: k, h: h}, nil
}

// Face caps a closed planar wire into a profile.
func (w Wire) Face() (Profile, error) {
	if w.IsEmpty() {
		return Profile{}, empty("face")
	}
	h, err := w.k.Face(w.h)
	if err != nil {
		return Profile{}, wrap("face", err)
	}
	return Profile{k: w.k, h: h}, nil
}
