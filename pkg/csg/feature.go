package csg

import (
	"math"

	"github.com/chazu/csgstep/pkg/kernel"
)

// draftTolerance bounds |n.z| for a face normal to count as orthogonal to
// the pull direction.
const draftTolerance = 1e-6

// Fillet rounds every edge of s with the same radius.
func (s Solid) Fillet(radius float64) (Solid, error) {
	if s.IsEmpty() {
		return Solid{}, empty("fillet")
	}
	edges, err := s.k.Edges(s.h)
	if err != nil {
		return Solid{}, wrap("fillet", err)
	}
	b, err := s.k.NewFillet(s.h)
	if err != nil {
		return Solid{}, wrap("fillet", err)
	}
	for _, e := range edges {
		b.Add(radius, e)
	}
	h, err := b.Build()
	if err != nil {
		return Solid{}, wrap("fillet", err)
	}
	return Wrap(s.k, h), nil
}

// Chamfer bevels every edge of s by the same distance.
func (s Solid) Chamfer(distance float64) (Solid, error) {
	if s.IsEmpty() {
		return Solid{}, empty("chamfer")
	}
	edges, err := s.k.Edges(s.h)
	if err != nil {
		return Solid{}, wrap("chamfer", err)
	}
	b, err := s.k.NewChamfer(s.h)
	if err != nil {
		return Solid{}, wrap("chamfer", err)
	}
	for _, e := range edges {
		b.Add(distance, e)
	}
	h, err := b.Build()
	if err != nil {
		return Solid{}, wrap("chamfer", err)
	}
	return Wrap(s.k, h), nil
}

// Draft tapers the vertical faces of s by angle radians.
//
// The pull direction is always +Z and the neutral plane is always the XY
// plane through the origin, whatever the orientation of s. Only planar
// faces whose outward normal is orthogonal to Z are drafted; every other
// face is left as it is.
func (s Solid) Draft(angle float64) (Solid, error) {
	if s.IsEmpty() {
		return Solid{}, empty("draft")
	}
	faces, err := s.k.Faces(s.h)
	if err != nil {
		return Solid{}, wrap("draft", err)
	}
	b, err := s.k.NewDraft(s.h)
	if err != nil {
		return Solid{}, wrap("draft", err)
	}
	log := Logger()
	selected := 0
	for i, f := range faces {
		if !f.Planar() {
			log.Debug("draft: skip curved face", "face", i)
			continue
		}
		n, err := f.Normal()
		if err != nil {
			return Solid{}, wrap("draft", err)
		}
		if math.Abs(n.Dot(UZ)) >= draftTolerance {
			log.Debug("draft: skip face not parallel to pull", "face", i, "normal", n)
			continue
		}
		b.Add(f, UZ, angle, kernel.PlaneXY)
		selected++
	}
	log.Debug("draft", "faces", len(faces), "selected", selected, "angle", angle)
	h, err := b.Build()
	if err != nil {
		return Solid{}, wrap("draft", err)
	}
	return Wrap(s.k, h), nil
}
