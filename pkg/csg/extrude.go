package csg

import (
	"math"

	"github.com/chazu/csgstep/pkg/kernel"
)

// LinearExtrude sweeps p along +Z by distance.
func (p Profile) LinearExtrude(distance float64) (Solid, error) {
	if p.IsEmpty() {
		return Solid{}, empty("linear-extrude")
	}
	h, err := p.k.Prism(p.h, UZ.Scale(distance))
	if err != nil {
		return Solid{}, wrap("linear-extrude", err)
	}
	return Wrap(p.k, h), nil
}

// RotateExtrude sweeps p one full turn about the Z axis. See
// RotateExtrudeAngle.
func (p Profile) RotateExtrude() (Solid, error) {
	return p.RotateExtrudeAngle(Tau)
}

// RotateExtrudeAngle turns p a quarter turn about X, so the XY plane
// becomes the XZ meridian plane and +Y becomes +Z, then sweeps it by angle
// radians about the Z axis. Angles of Tau or more are a full revolution.
func (p Profile) RotateExtrudeAngle(angle float64) (Solid, error) {
	if p.IsEmpty() {
		return Solid{}, empty("rotate-extrude")
	}
	m, err := p.RotateX(math.Pi / 2)
	if err != nil {
		return Solid{}, err
	}
	h, err := p.k.Revolve(m.h, kernel.AxisZ, angle)
	if err != nil {
		return Solid{}, wrap("rotate-extrude", err)
	}
	return Wrap(p.k, h), nil
}

// SplineExtrude sweeps p along the cubic spline interpolating points.
// The profile is carried as placed; it is not moved to the first point.
func (p Profile) SplineExtrude(points []Vec3) (Solid, error) {
	if p.IsEmpty() {
		return Solid{}, empty("spline-extrude")
	}
	edge, err := p.k.Spline(points)
	if err != nil {
		return Solid{}, wrap("spline-extrude", err)
	}
	path, err := p.k.Wire(edge)
	if err != nil {
		return Solid{}, wrap("spline-extrude", err)
	}
	return p.sweep("spline-extrude", path)
}

// Sweep carries p along path.
func (p Profile) Sweep(path Wire) (Solid, error) {
	if p.IsEmpty() || path.IsEmpty() {
		return Solid{}, empty("sweep")
	}
	if _, err := sameKernel("sweep", p.k, path.k); err != nil {
		return Solid{}, err
	}
	return p.sweep("sweep", path.h)
}

func (p Profile) sweep(op string, path kernel.Shape) (Solid, error) {
	h, err := p.k.Pipe(path, p.h)
	if err != nil {
		return Solid{}, wrap(op, err)
	}
	return Wrap(p.k, h), nil
}
