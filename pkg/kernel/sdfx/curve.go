package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/interp"
)

// Curves are held as polylines. These control how finely they are sampled.
const (
	arcStep          = kernel.Tau / 90 // max angle per arc sample
	splineSpanPoints = 16              // samples per spline span
)

// Segment creates a straight edge.
func (k *SdfxKernel) Segment(p1, p2 kernel.Vec3) (kernel.Shape, error) {
	a, b := vec(p1), vec(p2)
	if near(a, b) {
		return nil, invalid("Segment", "coincident end points")
	}
	return curve(kernel.KindEdge, []v3.Vec{a, b}), nil
}

// Arc creates the circular arc from p1 through p2 to p3.
func (k *SdfxKernel) Arc(p1, p2, p3 kernel.Vec3) (kernel.Shape, error) {
	pts, err := arcPoints(vec(p1), vec(p2), vec(p3))
	if err != nil {
		return nil, err
	}
	return curve(kernel.KindEdge, pts), nil
}

// arcPoints samples the circle through three points, starting at p1 and
// turning in the sense that reaches p2 before p3.
func arcPoints(p1, p2, p3 v3.Vec) ([]v3.Vec, error) {
	a, b := p1.Sub(p3), p2.Sub(p3)
	axb := a.Cross(b)
	den := 2 * axb.Dot(axb)
	if den < 1e-18 {
		return nil, invalid("Arc", "collinear points")
	}
	c := p3.Add(b.MulScalar(a.Dot(a)).Sub(a.MulScalar(b.Dot(b))).Cross(axb).MulScalar(1 / den))

	n := p2.Sub(p1).Cross(p3.Sub(p1)).Normalize()
	u := p1.Sub(c)
	r := u.Length()
	u = u.MulScalar(1 / r)
	v := n.Cross(u)

	end := math.Atan2(p3.Sub(c).Dot(v), p3.Sub(c).Dot(u))
	if end <= 0 {
		end += kernel.Tau
	}
	steps := int(math.Ceil(end / arcStep))
	if steps < 8 {
		steps = 8
	}
	pts := make([]v3.Vec, 0, steps+1)
	for i := 0; i < steps; i++ {
		t := end * float64(i) / float64(steps)
		pts = append(pts, c.Add(u.MulScalar(r*math.Cos(t))).Add(v.MulScalar(r*math.Sin(t))))
	}
	// Exact end point so wires chain without drift.
	pts = append(pts, p3)
	return pts, nil
}

// Spline creates a natural cubic spline through points, parameterised by
// chord length and sampled into a polyline.
func (k *SdfxKernel) Spline(points []kernel.Vec3) (kernel.Shape, error) {
	if len(points) < 2 {
		return nil, invalid("Spline", "%d points, need at least 2", len(points))
	}
	pts := make([]v3.Vec, len(points))
	for i, p := range points {
		pts[i] = vec(p)
	}
	t := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		step := pts[i].Sub(pts[i-1]).Length()
		if step == 0 {
			return nil, invalid("Spline", "points %d and %d coincide", i-1, i)
		}
		t[i] = t[i-1] + step
	}

	var fx, fy, fz interp.NaturalCubic
	for _, axis := range []struct {
		fit *interp.NaturalCubic
		get func(v3.Vec) float64
	}{
		{&fx, func(v v3.Vec) float64 { return v.X }},
		{&fy, func(v v3.Vec) float64 { return v.Y }},
		{&fz, func(v v3.Vec) float64 { return v.Z }},
	} {
		ys := make([]float64, len(pts))
		for i, p := range pts {
			ys[i] = axis.get(p)
		}
		if err := axis.fit.Fit(t, ys); err != nil {
			return nil, invalid("Spline", "fit: %v", err)
		}
	}

	out := make([]v3.Vec, 0, (len(pts)-1)*splineSpanPoints+1)
	for i := 0; i+1 < len(pts); i++ {
		for j := 0; j < splineSpanPoints; j++ {
			s := t[i] + (t[i+1]-t[i])*float64(j)/splineSpanPoints
			out = append(out, v3.Vec{X: fx.Predict(s), Y: fy.Predict(s), Z: fz.Predict(s)})
		}
	}
	out = append(out, pts[len(pts)-1])
	return curve(kernel.KindEdge, out), nil
}

// Wire chains edges and wires end to end. A part may be reversed to
// connect; a part that touches neither end of the chain is rejected.
func (k *SdfxKernel) Wire(parts ...kernel.Shape) (kernel.Shape, error) {
	var chain []v3.Vec
	for i, p := range parts {
		if p == nil {
			continue
		}
		sh, err := unwrapKind(p, "Wire", kernel.KindEdge, kernel.KindWire)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		pts := sh.pts
		switch {
		case len(chain) == 0:
			chain = append(chain, pts...)
		case near(chain[len(chain)-1], pts[0]):
			chain = append(chain, pts[1:]...)
		case near(chain[len(chain)-1], pts[len(pts)-1]):
			for j := len(pts) - 2; j >= 0; j-- {
				chain = append(chain, pts[j])
			}
		default:
			return nil, invalid("Wire", "part %d is not connected to the chain", i)
		}
	}
	if len(chain) == 0 {
		return nil, invalid("Wire", "no edges")
	}
	return curve(kernel.KindWire, chain), nil
}

// Face caps a closed planar wire. The face frame is centered on the
// polyline's centroid with local +Z along the Newell normal.
func (k *SdfxKernel) Face(wire kernel.Shape) (kernel.Shape, error) {
	w, err := unwrapKind(wire, "Face", kernel.KindWire, kernel.KindEdge)
	if err != nil {
		return nil, err
	}
	pts := w.pts
	if len(pts) < 4 || !near(pts[0], pts[len(pts)-1]) {
		return nil, invalid("Face", "wire is not closed")
	}
	pts = pts[:len(pts)-1]

	var n, c v3.Vec
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
		c = c.Add(a)
	}
	if n.Length() == 0 {
		return nil, invalid("Face", "degenerate boundary")
	}
	c = c.MulScalar(1 / float64(len(pts)))

	place := sdf.Translate3d(c).Mul(alignZ(n))
	inv := place.Inverse()
	bb := pointsBox(pts)
	tol := 1e-6 * math.Max(1, bb.Max.Sub(bb.Min).Length())
	vs := make([]v2.Vec, len(pts))
	for i, p := range pts {
		if math.Abs(inv.MulPosition(p).Z) > tol {
			return nil, invalid("Face", "wire is not planar")
		}
		vs[i] = toLocal2(inv, p)
	}
	s, err := sdf.Polygon2D(vs)
	if err != nil {
		return nil, fmt.Errorf("sdfx: Polygon2D: %w", err)
	}
	return face(s, place), nil
}
