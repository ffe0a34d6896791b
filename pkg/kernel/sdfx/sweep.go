package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// placed2: a 2-D field seen from another face's frame
// ---------------------------------------------------------------------------

// placed2 evaluates s after mapping points through m. Both frames must share
// a plane, so the mapped z is zero.
type placed2 struct {
	s   sdf.SDF2
	m   sdf.M44 // this frame to the frame of s
	inv sdf.M44 // frame of s to this frame
}

func (p *placed2) Evaluate(q v2.Vec) float64 {
	r := p.m.MulPosition(v3.Vec{X: q.X, Y: q.Y})
	return p.s.Evaluate(v2.Vec{X: r.X, Y: r.Y})
}

func (p *placed2) BoundingBox() sdf.Box2 {
	bb := p.inv.MulBox(flatBox(p.s.BoundingBox()))
	return sdf.Box2{
		Min: v2.Vec{X: bb.Min.X, Y: bb.Min.Y},
		Max: v2.Vec{X: bb.Max.X, Y: bb.Max.Y},
	}
}

// ---------------------------------------------------------------------------
// prism: oblique extrusion
// ---------------------------------------------------------------------------

// prism is a 2-D field swept along d from z=0 to z=d.Z. d.Z is never zero.
type prism struct {
	s sdf.SDF2
	d v3.Vec
}

func newPrism(s sdf.SDF2, d v3.Vec) *prism {
	return &prism{s: s, d: d}
}

func prismDistance(s sdf.SDF2, d, q v3.Vec) float64 {
	t := q.Z / d.Z
	d2 := s.Evaluate(v2.Vec{X: q.X - t*d.X, Y: q.Y - t*d.Y})
	dz := (math.Abs(t-0.5) - 0.5) * math.Abs(d.Z)
	return math.Max(d2, dz)
}

func (p *prism) Evaluate(q v3.Vec) float64 {
	return prismDistance(p.s, p.d, q)
}

func (p *prism) BoundingBox() sdf.Box3 {
	return prismBox(p.s, p.d)
}

func prismBox(s sdf.SDF2, d v3.Vec) sdf.Box3 {
	base := flatBox(s.BoundingBox())
	top := sdf.Box3{Min: base.Min.Add(d), Max: base.Max.Add(d)}
	return unionBox3(base, top)
}

// ---------------------------------------------------------------------------
// meridian: a placed face as the half-plane section of a revolution
// ---------------------------------------------------------------------------

// meridian evaluates a face on the XZ half-plane x >= 0 of the spun axis
// frame, with 2-D x as radius and 2-D y as height.
type meridian struct {
	s  sdf.SDF2
	m  sdf.M44 // spun axis frame to face local
	bb sdf.Box2
}

func (m *meridian) Evaluate(p v2.Vec) float64 {
	q := m.m.MulPosition(v3.Vec{X: p.X, Z: p.Y})
	return m.s.Evaluate(v2.Vec{X: q.X, Y: q.Y})
}

func (m *meridian) BoundingBox() sdf.Box2 { return m.bb }

// newMeridian builds the meridian of face f about the Z axis of frame. It
// returns the rotation about Z that brings the face's half-plane onto +X.
func newMeridian(f *shape, frame sdf.M44) (sdf.SDF2, sdf.M44, error) {
	toAxis := frame.Inverse().Mul(f.place)
	n := direction(toAxis, v3.Vec{Z: 1}).Normalize()
	o := toAxis.MulPosition(v3.Vec{})
	if math.Abs(n.Z) > 1e-6 || math.Abs(n.Dot(o)) > 1e-6 {
		return nil, sdf.M44{}, invalid("Revolve", "face plane does not contain the axis")
	}

	radial := n.Cross(v3.Vec{Z: 1}).Normalize()
	fb := toAxis.MulBox(flatBox(f.s2.BoundingBox()))
	if fb.Center().Dot(radial) < 0 {
		radial = radial.MulScalar(-1)
	}
	spin := sdf.RotateZ(math.Atan2(radial.Y, radial.X))

	bb := spin.Inverse().Mul(toAxis).MulBox(flatBox(f.s2.BoundingBox()))
	if bb.Min.X < -1e-6*math.Max(1, bb.Max.X) {
		return nil, sdf.M44{}, invalid("Revolve", "face crosses the axis")
	}
	m := &meridian{
		s: f.s2,
		m: f.place.Inverse().Mul(frame).Mul(spin),
		bb: sdf.Box2{
			Min: v2.Vec{X: math.Max(0, bb.Min.X), Y: bb.Min.Z},
			Max: v2.Vec{X: bb.Max.X, Y: bb.Max.Z},
		},
	}
	return m, spin, nil
}

// ---------------------------------------------------------------------------
// sweep: a face carried along a polyline
// ---------------------------------------------------------------------------

// sweepSegment is one straight run of a sweep, held in the local frame of
// the face as moved to the start of the run.
type sweepSegment struct {
	inv sdf.M44 // world to moved face local
	d   v3.Vec  // run direction in face local coordinates
	bb  sdf.Box3
}

// sweep is the union of the per-segment prisms. The face is carried between
// segments by the minimal rotation of the tangent so it does not twist.
type sweep struct {
	s    sdf.SDF2
	segs []sweepSegment
	bb   sdf.Box3
}

func newSweep(f *shape, path []v3.Vec) (*sweep, error) {
	pts := make([]v3.Vec, 0, len(path))
	for _, p := range path {
		if len(pts) == 0 || !near(p, pts[len(pts)-1]) {
			pts = append(pts, p)
		}
	}
	if len(pts) < 2 {
		return nil, invalid("Pipe", "path has no length")
	}

	sw := &sweep{s: f.s2}
	rot := sdf.Identity3d()
	var prev v3.Vec
	back := sdf.Translate3d(pts[0].MulScalar(-1))
	for i := 0; i+1 < len(pts); i++ {
		run := pts[i+1].Sub(pts[i])
		t := run.Normalize()
		if i > 0 {
			rot = rotateOnto(prev, t).Mul(rot)
		}
		prev = t

		place := sdf.Translate3d(pts[i]).Mul(rot).Mul(back).Mul(f.place)
		inv := place.Inverse()
		d := direction(inv, run)
		if math.Abs(d.Z) < 1e-9 {
			return nil, invalid("Pipe", "path is tangent to the profile plane")
		}
		seg := sweepSegment{inv: inv, d: d, bb: place.MulBox(prismBox(f.s2, d))}
		if i == 0 {
			sw.bb = seg.bb
		} else {
			sw.bb = unionBox3(sw.bb, seg.bb)
		}
		sw.segs = append(sw.segs, seg)
	}
	return sw, nil
}

func (s *sweep) Evaluate(q v3.Vec) float64 {
	best := math.Inf(1)
	for i := range s.segs {
		seg := &s.segs[i]
		if boxDistance(seg.bb, q) >= best {
			continue
		}
		if d := prismDistance(s.s, seg.d, seg.inv.MulPosition(q)); d < best {
			best = d
		}
	}
	return best
}

func (s *sweep) BoundingBox() sdf.Box3 { return s.bb }

// ---------------------------------------------------------------------------
// wedge: convex polyhedron from six planes
// ---------------------------------------------------------------------------

type halfSpace struct {
	n v3.Vec // outward unit normal
	d float64
}

type wedge struct {
	planes []halfSpace
	bb     sdf.Box3
}

func newWedge(dx, dy, dz, xmin, zmin, xmax, zmax float64) (*wedge, error) {
	if dx <= 0 || dy <= 0 || dz <= 0 || xmax < xmin || zmax < zmin {
		return nil, invalid("Wedge", "dims %g %g %g top [%g,%g]x[%g,%g]", dx, dy, dz, xmin, xmax, zmin, zmax)
	}
	plane := func(n, through v3.Vec) halfSpace {
		n = n.Normalize()
		return halfSpace{n: n, d: n.Dot(through)}
	}
	w := &wedge{
		planes: []halfSpace{
			plane(v3.Vec{Y: -1}, v3.Vec{}),
			plane(v3.Vec{Y: 1}, v3.Vec{Y: dy}),
			plane(v3.Vec{X: -dy, Y: xmin}, v3.Vec{}),
			plane(v3.Vec{X: dy, Y: -(xmax - dx)}, v3.Vec{X: dx}),
			plane(v3.Vec{Y: zmin, Z: -dy}, v3.Vec{}),
			plane(v3.Vec{Y: -(zmax - dz), Z: dy}, v3.Vec{Z: dz}),
		},
		bb: sdf.Box3{
			Min: v3.Vec{X: math.Min(0, xmin), Z: math.Min(0, zmin)},
			Max: v3.Vec{X: math.Max(dx, xmax), Y: dy, Z: math.Max(dz, zmax)},
		},
	}
	return w, nil
}

func (w *wedge) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for _, h := range w.planes {
		d = math.Max(d, h.n.Dot(p)-h.d)
	}
	return d
}

func (w *wedge) BoundingBox() sdf.Box3 { return w.bb }
