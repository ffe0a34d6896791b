package csg

import (
	"fmt"

	"github.com/chazu/csgstep/pkg/kernel"
)

// Modeler builds primitive values on one kernel.
type Modeler struct {
	k kernel.Kernel
}

// New returns a Modeler over k.
func New(k kernel.Kernel) *Modeler {
	return &Modeler{k: k}
}

// Kernel returns the underlying kernel.
func (m *Modeler) Kernel() kernel.Kernel { return m.k }

func (m *Modeler) solid(op string, h kernel.Shape, err error) (Solid, error) {
	if err != nil {
		return Solid{}, wrap(op, err)
	}
	return Wrap(m.k, h), nil
}

func (m *Modeler) profile(op string, h kernel.Shape, err error) (Profile, error) {
	if err != nil {
		return Profile{}, wrap(op, err)
	}
	return Profile{k: m.k, h: h}, nil
}

func (m *Modeler) wire(op string, h kernel.Shape, err error) (Wire, error) {
	if err != nil {
		return Wire{}, wrap(op, err)
	}
	return Wire{k: m.k, h: h}, nil
}

// ---------------------------------------------------------------------------
// Solids
// ---------------------------------------------------------------------------

// Sphere returns a sphere of radius r centered on the origin.
func (m *Modeler) Sphere(r float64) (Solid, error) {
	h, err := m.k.Sphere(r)
	return m.solid("sphere", h, err)
}

// Cube returns a box of the given size. With center the box is centered
// on the origin, otherwise its minimum corner is at the origin.
func (m *Modeler) Cube(size Vec3, center bool) (Solid, error) {
	var origin Vec3
	if center {
		origin = size.Scale(-0.5)
	}
	h, err := m.k.Box(size, origin)
	return m.solid("cube", h, err)
}

// zAxis is the +Z axis, started at -h/2 when center is set.
func zAxis(h float64, center bool) kernel.Axis {
	ax := kernel.AxisZ
	if center {
		ax.Origin = Vec3{Z: -h / 2}
	}
	return ax
}

// Cylinder returns a cylinder along +Z with its base at the origin, or
// centered on it.
func (m *Modeler) Cylinder(r, h float64, center bool) (Solid, error) {
	s, err := m.k.Cylinder(zAxis(h, center), r, h)
	return m.solid("cylinder", s, err)
}

// Cone returns a truncated cone along +Z with base radius r1 and top
// radius r2.
func (m *Modeler) Cone(r1, r2, h float64, center bool) (Solid, error) {
	s, err := m.k.Cone(zAxis(h, center), r1, r2, h)
	return m.solid("cone", s, err)
}

// WedgeParams describes a wedge: a box of DX x DY x DZ whose face at
// y = DY is shrunk to the rectangle [XMin, XMax] x [ZMin, ZMax].
type WedgeParams struct {
	DX, DY, DZ float64
	XMin, ZMin float64
	XMax, ZMax float64
}

// Ramp returns the wedge rising along Y whose top face collapses to the
// edge x in [0, ltx].
func Ramp(dx, dy, dz, ltx float64) WedgeParams {
	return WedgeParams{DX: dx, DY: dy, DZ: dz, XMax: ltx, ZMax: dz}
}

// Wedge returns the wedge described by p.
func (m *Modeler) Wedge(p WedgeParams) (Solid, error) {
	h, err := m.k.Wedge(p.DX, p.DY, p.DZ, p.XMin, p.ZMin, p.XMax, p.ZMax)
	return m.solid("wedge", h, err)
}

// LoadSTEP reads the first root shape of a STEP file. Failures are
// reported as *kernel.IOError.
func (m *Modeler) LoadSTEP(path string) (Solid, error) {
	h, err := m.k.ReadSTEP(path)
	if err != nil {
		return Solid{}, ioFailure("read-step", path, err)
	}
	if h == nil {
		return Solid{}, &kernel.IOError{Op: "read-step", Path: path, Err: ErrEmpty}
	}
	Logger().Info("read step", "path", path, "kind", h.Kind())
	return Wrap(m.k, h), nil
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

// Circle returns the disc of radius r centered on the origin in the XY plane.
func (m *Modeler) Circle(r float64) (Profile, error) {
	h, err := m.k.Circle(r)
	return m.profile("circle", h, err)
}

// Ellipse returns the ellipse with semi-axes major along X and minor
// along Y.
func (m *Modeler) Ellipse(major, minor float64) (Profile, error) {
	h, err := m.k.Ellipse(major, minor)
	return m.profile("ellipse", h, err)
}

// Polygon returns the closed polygon through points in the XY plane.
func (m *Modeler) Polygon(points []Vec2) (Profile, error) {
	h, err := m.k.Polygon(points)
	return m.profile("polygon", h, err)
}

// Square returns a rectangle in the XY plane with its minimum corner at
// the origin, or centered on it.
func (m *Modeler) Square(size Vec2, center bool) (Profile, error) {
	var o Vec2
	if center {
		o = Vec2{X: size.X / 2, Y: size.Y / 2}
	}
	pts := []Vec2{
		{X: -o.X, Y: -o.Y},
		{X: size.X - o.X, Y: -o.Y},
		{X: size.X - o.X, Y: size.Y - o.Y},
		{X: -o.X, Y: size.Y - o.Y},
	}
	h, err := m.k.Polygon(pts)
	return m.profile("square", h, err)
}

// ---------------------------------------------------------------------------
// Wires
// ---------------------------------------------------------------------------

// Segment returns the straight edge from p1 to p2.
func (m *Modeler) Segment(p1, p2 Vec3) (Wire, error) {
	h, err := m.k.Segment(p1, p2)
	return m.wire("segment", h, err)
}

// Arc returns the circular arc from p1 through p2 to p3.
func (m *Modeler) Arc(p1, p2, p3 Vec3) (Wire, error) {
	h, err := m.k.Arc(p1, p2, p3)
	return m.wire("arc", h, err)
}

// Spline returns the cubic interpolating curve through points.
func (m *Modeler) Spline(points []Vec3) (Wire, error) {
	h, err := m.k.Spline(points)
	return m.wire("spline", h, err)
}

// Path returns the open polyline through points.
func (m *Modeler) Path(points []Vec3) (Wire, error) {
	if len(points) < 2 {
		return Wire{}, wrap("path", fmt.Errorf("%w: %d points, need at least 2", kernel.ErrInvalidShape, len(points)))
	}
	edges := make([]kernel.Shape, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		e, err := m.k.Segment(points[i-1], points[i])
		if err != nil {
			return Wire{}, wrap("path", err)
		}
		edges = append(edges, e)
	}
	h, err := m.k.Wire(edges...)
	return m.wire("path", h, err)
}
