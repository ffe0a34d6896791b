// Package kerneltest provides an in-memory geometry kernel for testing code
// built on package kernel. It models the topology a BRep kernel would report
// (faces with normals, edge counts, curve polylines) closely enough to test
// face selection, sweep orchestration and exchange round trips, and records
// every call so tests can assert how operations were composed. It computes
// bounding boxes, not exact geometry.
package kerneltest

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/chazu/csgstep/pkg/kernel"
)

// ErrInjected is returned by operations listed in Kernel.FailOn.
var ErrInjected = errors.New("kerneltest: injected failure")

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Kernel implements kernel.Kernel in memory. It is safe for concurrent use.
type Kernel struct {
	mu      sync.Mutex
	next    int
	calls   []string
	applied []kernel.Affine
	failOn  map[string]bool
}

// New returns an empty Kernel.
func New() *Kernel {
	return &Kernel{failOn: make(map[string]bool)}
}

// FailOn makes every later call of the named operation (e.g. "Pipe")
// fail with ErrInjected.
func (k *Kernel) FailOn(op string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.failOn[op] = true
}

// Calls returns the operations invoked so far, in order.
func (k *Kernel) Calls() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.calls...)
}

// Count returns how many times op was invoked.
func (k *Kernel) Count(op string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for _, c := range k.calls {
		if c == op {
			n++
		}
	}
	return n
}

// Applied returns every affine operation passed to Apply, in order.
func (k *Kernel) Applied() []kernel.Affine {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]kernel.Affine(nil), k.applied...)
}

// Reset forgets recorded calls.
func (k *Kernel) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.calls = nil
	k.applied = nil
}

// record logs op and returns the injected failure, if any.
func (k *Kernel) record(op string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.calls = append(k.calls, op)
	if k.failOn[op] {
		return fmt.Errorf("kerneltest: %s: %w", op, ErrInjected)
	}
	return nil
}

// newShape allocates a shape with a fresh ID.
func (k *Kernel) newShape(kind kernel.ShapeKind, op string) *Shape {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.next++
	return &Shape{ID: k.next, Type: kind, Op: op}
}

// derive clones s under a fresh ID.
func (k *Kernel) derive(s *Shape, op string) *Shape {
	c := s.clone()
	k.mu.Lock()
	k.next++
	c.ID = k.next
	k.mu.Unlock()
	c.Op = op
	return c
}

// unwrap extracts the in-memory shape.
func unwrap(s kernel.Shape, op string) (*Shape, error) {
	if s == nil {
		return nil, fmt.Errorf("kerneltest: %s: %w: empty shape", op, kernel.ErrInvalidShape)
	}
	sh, ok := s.(*Shape)
	if !ok {
		return nil, fmt.Errorf("kerneltest: %s: %w: foreign handle %T", op, kernel.ErrInvalidShape, s)
	}
	return sh, nil
}

func invalid(op, format string, args ...any) error {
	return fmt.Errorf("kerneltest: %s: %w: %s", op, kernel.ErrInvalidShape, fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// Sphere creates a sphere centered at the origin with one curved face.
func (k *Kernel) Sphere(r float64) (kernel.Shape, error) {
	if err := k.record("Sphere"); err != nil {
		return nil, err
	}
	if r <= 0 {
		return nil, invalid("Sphere", "radius %g", r)
	}
	s := k.newShape(kernel.KindSolid, "Sphere")
	s.Min, s.Max = [3]float64{-r, -r, -r}, [3]float64{r, r, r}
	s.FaceList = []*Face{curvedFace(s.Min, s.Max)}
	s.EdgeCount = 1
	return s, nil
}

// Box creates an axis-aligned box with its minimum corner at origin.
func (k *Kernel) Box(size, origin kernel.Vec3) (kernel.Shape, error) {
	if err := k.record("Box"); err != nil {
		return nil, err
	}
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, invalid("Box", "size %v", size)
	}
	s := k.newShape(kernel.KindSolid, "Box")
	max := origin.Add(size)
	s.Min = [3]float64{origin.X, origin.Y, origin.Z}
	s.Max = [3]float64{max.X, max.Y, max.Z}
	s.FaceList = boxFaces(s.Min, s.Max)
	s.EdgeCount = 12
	return s, nil
}

// boxFaces returns the six faces of a box in -X, +X, -Y, +Y, -Z, +Z order.
func boxFaces(min, max [3]float64) []*Face {
	faces := make([]*Face, 0, 6)
	axes := [3]kernel.Vec3{kernel.UnitX, kernel.UnitY, kernel.UnitZ}
	for j := 0; j < 3; j++ {
		lo, hi := min, max
		hi[j] = min[j]
		faces = append(faces, planarFace(axes[j].Scale(-1), lo, hi))
		lo, hi = min, max
		lo[j] = max[j]
		faces = append(faces, planarFace(axes[j], lo, hi))
	}
	return faces
}

// Cylinder creates a cylinder on ax with a curved side and two planar caps.
func (k *Kernel) Cylinder(ax kernel.Axis, r, h float64) (kernel.Shape, error) {
	if err := k.record("Cylinder"); err != nil {
		return nil, err
	}
	if r <= 0 || h <= 0 || ax.Dir.IsZero() {
		return nil, invalid("Cylinder", "r=%g h=%g dir=%v", r, h, ax.Dir)
	}
	return k.revolvedSolid("Cylinder", ax, r, r, h), nil
}

// Cone creates a truncated cone on ax. A zero radius end has no cap face.
func (k *Kernel) Cone(ax kernel.Axis, r1, r2, h float64) (kernel.Shape, error) {
	if err := k.record("Cone"); err != nil {
		return nil, err
	}
	if r1 < 0 || r2 < 0 || (r1 == 0 && r2 == 0) || h <= 0 || ax.Dir.IsZero() {
		return nil, invalid("Cone", "r1=%g r2=%g h=%g", r1, r2, h)
	}
	return k.revolvedSolid("Cone", ax, r1, r2, h), nil
}

func (k *Kernel) revolvedSolid(op string, ax kernel.Axis, r1, r2, h float64) *Shape {
	d := ax.Dir.Unit()
	c0 := ax.Origin
	c1 := ax.Origin.Add(d.Scale(h))
	min0, max0 := discBox(c0, d, r1)
	min1, max1 := discBox(c1, d, r2)

	s := k.newShape(kernel.KindSolid, op)
	s.Min, s.Max = unionBox(min0, max0, min1, max1)
	s.FaceList = []*Face{curvedFace(s.Min, s.Max)}
	s.EdgeCount = 1
	if r1 > 0 {
		s.FaceList = append(s.FaceList, planarFace(d.Scale(-1), min0, max0))
		s.EdgeCount++
	}
	if r2 > 0 {
		s.FaceList = append(s.FaceList, planarFace(d, min1, max1))
		s.EdgeCount++
	}
	return s
}

// discBox returns the bounding box of a disc of radius r centred at c with
// normal d.
func discBox(c, d kernel.Vec3, r float64) (min, max [3]float64) {
	e := [3]float64{
		r * math.Sqrt(math.Max(0, 1-d.X*d.X)),
		r * math.Sqrt(math.Max(0, 1-d.Y*d.Y)),
		r * math.Sqrt(math.Max(0, 1-d.Z*d.Z)),
	}
	cc := [3]float64{c.X, c.Y, c.Z}
	for j := 0; j < 3; j++ {
		min[j], max[j] = cc[j]-e[j], cc[j]+e[j]
	}
	return min, max
}

// Wedge creates a box whose +Y face is shrunk to [xmin,xmax] x [zmin,zmax].
func (k *Kernel) Wedge(dx, dy, dz, xmin, zmin, xmax, zmax float64) (kernel.Shape, error) {
	if err := k.record("Wedge"); err != nil {
		return nil, err
	}
	if dx <= 0 || dy <= 0 || dz <= 0 || xmax < xmin || zmax < zmin {
		return nil, invalid("Wedge", "dims %g %g %g top [%g,%g]x[%g,%g]", dx, dy, dz, xmin, xmax, zmin, zmax)
	}
	s := k.newShape(kernel.KindSolid, "Wedge")
	s.Min = [3]float64{math.Min(0, xmin), 0, math.Min(0, zmin)}
	s.Max = [3]float64{math.Max(dx, xmax), dy, math.Max(dz, zmax)}
	s.FaceList = []*Face{
		planarFace(kernel.Vec3{Y: -1}, s.Min, s.Max),
		planarFace(kernel.UnitY, s.Min, s.Max),
		planarFace(kernel.Vec3{X: -dy, Y: xmin}, s.Min, s.Max),
		planarFace(kernel.Vec3{X: dy, Y: -(xmax - dx)}, s.Min, s.Max),
		planarFace(kernel.Vec3{Y: zmin, Z: -dy}, s.Min, s.Max),
		planarFace(kernel.Vec3{Y: -(zmax - dz), Z: dy}, s.Min, s.Max),
	}
	s.EdgeCount = 12
	return s, nil
}

// Polygon creates a planar face in the XY plane with +Z normal.
func (k *Kernel) Polygon(points []kernel.Vec2) (kernel.Shape, error) {
	if err := k.record("Polygon"); err != nil {
		return nil, err
	}
	if len(points) < 3 {
		return nil, invalid("Polygon", "%d points", len(points))
	}
	pts := make([]kernel.Vec3, 0, len(points)+1)
	for _, p := range points {
		pts = append(pts, kernel.Vec3{X: p.X, Y: p.Y})
	}
	pts = append(pts, pts[0])
	return k.planarRegion("Polygon", pts, false)
}

// Circle creates a disc in the XY plane.
func (k *Kernel) Circle(r float64) (kernel.Shape, error) {
	if err := k.record("Circle"); err != nil {
		return nil, err
	}
	if r <= 0 {
		return nil, invalid("Circle", "radius %g", r)
	}
	return k.disc("Circle", r, r), nil
}

// Ellipse creates an elliptical disc in the XY plane, major axis along X.
func (k *Kernel) Ellipse(major, minor float64) (kernel.Shape, error) {
	if err := k.record("Ellipse"); err != nil {
		return nil, err
	}
	if minor <= 0 || major < minor {
		return nil, invalid("Ellipse", "major=%g minor=%g", major, minor)
	}
	return k.disc("Ellipse", major, minor), nil
}

func (k *Kernel) disc(op string, rx, ry float64) *Shape {
	s := k.newShape(kernel.KindFace, op)
	s.Min, s.Max = [3]float64{-rx, -ry, 0}, [3]float64{rx, ry, 0}
	s.FaceList = []*Face{planarFace(kernel.UnitZ, s.Min, s.Max)}
	s.EdgeCount = 1
	s.Curved = true
	return s
}

// planarRegion builds a face bounded by the closed polyline pts.
func (k *Kernel) planarRegion(op string, pts []kernel.Vec3, curved bool) (*Shape, error) {
	n := newell(pts)
	if n.Length() == 0 {
		return nil, invalid(op, "degenerate boundary")
	}
	n = n.Unit()
	for _, p := range pts {
		if math.Abs(p.Sub(pts[0]).Dot(n)) > 1e-6 {
			return nil, invalid(op, "boundary is not planar")
		}
	}
	s := k.newShape(kernel.KindFace, op)
	s.Points = pts
	s.Curved = curved
	s.Min, s.Max = boundsOf(pts)
	s.FaceList = []*Face{planarFace(n, s.Min, s.Max)}
	s.EdgeCount = len(pts) - 1
	return s, nil
}

// newell returns the area-weighted normal of a closed polyline.
func newell(pts []kernel.Vec3) kernel.Vec3 {
	var n kernel.Vec3
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// ---------------------------------------------------------------------------
// Curves and wires
// ---------------------------------------------------------------------------

// Segment creates a straight edge.
func (k *Kernel) Segment(p1, p2 kernel.Vec3) (kernel.Shape, error) {
	if err := k.record("Segment"); err != nil {
		return nil, err
	}
	if nearlyEqual(p1, p2) {
		return nil, invalid("Segment", "coincident end points")
	}
	return k.curve("Segment", []kernel.Vec3{p1, p2}, false), nil
}

// Arc creates a circular arc through three points.
func (k *Kernel) Arc(p1, p2, p3 kernel.Vec3) (kernel.Shape, error) {
	if err := k.record("Arc"); err != nil {
		return nil, err
	}
	if p2.Sub(p1).Cross(p3.Sub(p1)).Length() < 1e-12 {
		return nil, invalid("Arc", "collinear points")
	}
	return k.curve("Arc", []kernel.Vec3{p1, p2, p3}, true), nil
}

// Spline creates an interpolating curve through points. The polyline of
// the points stands in for the fitted curve.
func (k *Kernel) Spline(points []kernel.Vec3) (kernel.Shape, error) {
	if err := k.record("Spline"); err != nil {
		return nil, err
	}
	if len(points) < 2 {
		return nil, invalid("Spline", "%d points, need at least 2", len(points))
	}
	return k.curve("Spline", append([]kernel.Vec3(nil), points...), true), nil
}

func (k *Kernel) curve(op string, pts []kernel.Vec3, curved bool) *Shape {
	s := k.newShape(kernel.KindEdge, op)
	s.Points = pts
	s.Curved = curved
	s.Min, s.Max = boundsOf(pts)
	s.EdgeCount = 1
	return s
}

// Wire chains edges and wires end to end. A part may be reversed to
// connect; parts that touch neither end of the chain are rejected.
func (k *Kernel) Wire(parts ...kernel.Shape) (kernel.Shape, error) {
	if err := k.record("Wire"); err != nil {
		return nil, err
	}
	var chain []kernel.Vec3
	edges := 0
	curved := false
	for i, p := range parts {
		if p == nil {
			continue
		}
		sh, err := unwrap(p, "Wire")
		if err != nil {
			return nil, err
		}
		if sh.Type != kernel.KindEdge && sh.Type != kernel.KindWire {
			return nil, invalid("Wire", "part %d is a %s", i, sh.Type)
		}
		pts := sh.Points
		switch {
		case len(chain) == 0:
			chain = append(chain, pts...)
		case nearlyEqual(chain[len(chain)-1], pts[0]):
			chain = append(chain, pts[1:]...)
		case nearlyEqual(chain[len(chain)-1], pts[len(pts)-1]):
			for j := len(pts) - 2; j >= 0; j-- {
				chain = append(chain, pts[j])
			}
		default:
			return nil, invalid("Wire", "part %d is not connected to the chain", i)
		}
		edges += sh.EdgeCount
		curved = curved || sh.Curved
	}
	if len(chain) == 0 {
		return nil, invalid("Wire", "no edges")
	}
	s := k.newShape(kernel.KindWire, "Wire")
	s.Points = chain
	s.Curved = curved
	s.Min, s.Max = boundsOf(chain)
	s.EdgeCount = edges
	return s, nil
}

// Face caps a closed planar wire.
func (k *Kernel) Face(wire kernel.Shape) (kernel.Shape, error) {
	if err := k.record("Face"); err != nil {
		return nil, err
	}
	w, err := unwrap(wire, "Face")
	if err != nil {
		return nil, err
	}
	if w.Type != kernel.KindWire && w.Type != kernel.KindEdge {
		return nil, invalid("Face", "expected wire, got %s", w.Type)
	}
	pts := w.Points
	if len(pts) < 3 || !nearlyEqual(pts[0], pts[len(pts)-1]) {
		return nil, invalid("Face", "wire is not closed")
	}
	return k.planarRegion("Face", append([]kernel.Vec3(nil), pts...), w.Curved)
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

func (k *Kernel) boolean(op string, a, b kernel.Shape) (*Shape, *Shape, error) {
	if err := k.record(op); err != nil {
		return nil, nil, err
	}
	sa, err := unwrap(a, op)
	if err != nil {
		return nil, nil, err
	}
	sb, err := unwrap(b, op)
	if err != nil {
		return nil, nil, err
	}
	if sa.isVolume() != sb.isVolume() {
		return nil, nil, invalid(op, "cannot combine %s with %s", sa.Type, sb.Type)
	}
	if !sa.isVolume() && (sa.Type != kernel.KindFace || sb.Type != kernel.KindFace) {
		return nil, nil, invalid(op, "cannot combine %s with %s", sa.Type, sb.Type)
	}
	return sa, sb, nil
}

func (k *Kernel) merged(op string, sa, sb *Shape) *Shape {
	kind := kernel.KindSolid
	if sa.Type == kernel.KindFace {
		kind = kernel.KindFace
	}
	s := k.newShape(kind, op)
	for _, f := range sa.clone().FaceList {
		s.FaceList = append(s.FaceList, f)
	}
	for _, f := range sb.clone().FaceList {
		s.FaceList = append(s.FaceList, f)
	}
	s.EdgeCount = sa.EdgeCount + sb.EdgeCount
	return s
}

// Fuse returns the boolean union of two shapes.
func (k *Kernel) Fuse(a, b kernel.Shape) (kernel.Shape, error) {
	sa, sb, err := k.boolean("Fuse", a, b)
	if err != nil {
		return nil, err
	}
	s := k.merged("Fuse", sa, sb)
	s.Min, s.Max = unionBox(sa.Min, sa.Max, sb.Min, sb.Max)
	return s, nil
}

// Common returns the boolean intersection of two shapes.
func (k *Kernel) Common(a, b kernel.Shape) (kernel.Shape, error) {
	sa, sb, err := k.boolean("Common", a, b)
	if err != nil {
		return nil, err
	}
	s := k.merged("Common", sa, sb)
	s.Min, s.Max = intersectBox(sa.Min, sa.Max, sb.Min, sb.Max)
	return s, nil
}

// Cut returns a minus b. Faces of b bound the cavity, so their normals flip.
func (k *Kernel) Cut(a, b kernel.Shape) (kernel.Shape, error) {
	sa, sb, err := k.boolean("Cut", a, b)
	if err != nil {
		return nil, err
	}
	s := k.merged("Cut", sa, sb)
	for _, f := range s.FaceList[len(sa.FaceList):] {
		f.N = f.N.Scale(-1)
	}
	s.Min, s.Max = sa.Min, sa.Max
	return s, nil
}

// VolumeUnion merges every shape into one solid.
func (k *Kernel) VolumeUnion(shapes []kernel.Shape) (kernel.Shape, error) {
	if err := k.record("VolumeUnion"); err != nil {
		return nil, err
	}
	if len(shapes) == 0 {
		return nil, invalid("VolumeUnion", "no arguments")
	}
	s := k.newShape(kernel.KindSolid, "VolumeUnion")
	for i, in := range shapes {
		sh, err := unwrap(in, "VolumeUnion")
		if err != nil {
			return nil, err
		}
		if !sh.isVolume() {
			return nil, invalid("VolumeUnion", "argument %d is a %s", i, sh.Type)
		}
		if i == 0 {
			s.Min, s.Max = sh.Min, sh.Max
		} else {
			s.Min, s.Max = unionBox(s.Min, s.Max, sh.Min, sh.Max)
		}
		s.FaceList = append(s.FaceList, sh.clone().FaceList...)
		s.EdgeCount += sh.EdgeCount
	}
	return s, nil
}

// Compound groups shapes without any boolean computation.
func (k *Kernel) Compound(shapes []kernel.Shape) (kernel.Shape, error) {
	if err := k.record("Compound"); err != nil {
		return nil, err
	}
	if len(shapes) == 0 {
		return nil, invalid("Compound", "no arguments")
	}
	s := k.newShape(kernel.KindCompound, "Compound")
	for i, in := range shapes {
		sh, err := unwrap(in, "Compound")
		if err != nil {
			return nil, err
		}
		if i == 0 {
			s.Min, s.Max = sh.Min, sh.Max
		} else {
			s.Min, s.Max = unionBox(s.Min, s.Max, sh.Min, sh.Max)
		}
		s.Children = append(s.Children, sh)
		s.FaceList = append(s.FaceList, sh.clone().FaceList...)
		s.EdgeCount += sh.EdgeCount
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Transforms
// ---------------------------------------------------------------------------

// Apply maps the shape through op.
func (k *Kernel) Apply(in kernel.Shape, op kernel.Affine) (kernel.Shape, error) {
	if err := k.record("Apply"); err != nil {
		return nil, err
	}
	k.mu.Lock()
	k.applied = append(k.applied, op)
	k.mu.Unlock()
	if err := op.Validate(); err != nil {
		return nil, fmt.Errorf("kerneltest: Apply: %w", err)
	}
	sh, err := unwrap(in, "Apply")
	if err != nil {
		return nil, err
	}
	return k.transformed(sh, op), nil
}

func (k *Kernel) transformed(sh *Shape, op kernel.Affine) *Shape {
	s := k.derive(sh, sh.Op)
	s.Min, s.Max = op.BoundingBox(sh.Min, sh.Max)
	for _, f := range s.FaceList {
		f.N = op.Normal(f.N)
		f.Min, f.Max = op.BoundingBox(f.Min, f.Max)
	}
	for i, p := range s.Points {
		s.Points[i] = op.Point(p)
	}
	for i, d := range s.Drafted {
		s.Drafted[i] = op.Normal(d)
	}
	if len(sh.Children) > 0 {
		s.Children = make([]*Shape, len(sh.Children))
		for i, c := range sh.Children {
			s.Children[i] = k.transformed(c, op)
		}
	}
	return s
}

// ---------------------------------------------------------------------------
// Sweeps
// ---------------------------------------------------------------------------

// Prism sweeps a face along v. Polygonal faces get one planar side face
// per boundary edge; faces bounded by smooth curves get one curved side.
func (k *Kernel) Prism(in kernel.Shape, v kernel.Vec3) (kernel.Shape, error) {
	if err := k.record("Prism"); err != nil {
		return nil, err
	}
	f, err := unwrap(in, "Prism")
	if err != nil {
		return nil, err
	}
	if f.Type != kernel.KindFace {
		return nil, invalid("Prism", "expected face, got %s", f.Type)
	}
	if v.IsZero() {
		return nil, invalid("Prism", "zero extrusion vector")
	}
	n := f.FaceList[0].N
	if math.Abs(n.Dot(v.Unit())) < 1e-9 {
		return nil, invalid("Prism", "extrusion vector lies in the face plane")
	}

	s := k.newShape(kernel.KindSolid, "Prism")
	tmin, tmax := kernel.Translation(v).BoundingBox(f.Min, f.Max)
	s.Min, s.Max = unionBox(f.Min, f.Max, tmin, tmax)

	bottom, top := n.Scale(-1), n
	if n.Dot(v) < 0 {
		bottom, top = n, n.Scale(-1)
	}
	s.FaceList = []*Face{
		planarFace(bottom, f.Min, f.Max),
		planarFace(top, tmin, tmax),
	}
	if f.Curved || len(f.Points) < 4 {
		s.FaceList = append(s.FaceList, curvedFace(s.Min, s.Max))
		s.EdgeCount = 3 * f.EdgeCount
		return s, nil
	}

	var centroid kernel.Vec3
	m := len(f.Points) - 1
	for _, p := range f.Points[:m] {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1 / float64(m))
	for i := 0; i < m; i++ {
		a, b := f.Points[i], f.Points[i+1]
		side := b.Sub(a).Cross(v).Unit()
		if a.Add(b).Scale(0.5).Sub(centroid).Dot(side) < 0 {
			side = side.Scale(-1)
		}
		smin, smax := boundsOf([]kernel.Vec3{a, b, a.Add(v), b.Add(v)})
		s.FaceList = append(s.FaceList, planarFace(side, smin, smax))
	}
	s.EdgeCount = 3 * m
	return s, nil
}

// Revolve sweeps a face about ax. A partial sweep has two planar end caps;
// a full turn has none because the start and end coincide.
func (k *Kernel) Revolve(in kernel.Shape, ax kernel.Axis, angle float64) (kernel.Shape, error) {
	if err := k.record("Revolve"); err != nil {
		return nil, err
	}
	f, err := unwrap(in, "Revolve")
	if err != nil {
		return nil, err
	}
	if f.Type != kernel.KindFace {
		return nil, invalid("Revolve", "expected face, got %s", f.Type)
	}
	if ax.Dir.IsZero() || angle <= 0 {
		return nil, invalid("Revolve", "axis %v angle %g", ax.Dir, angle)
	}
	full := angle >= kernel.Tau-1e-9
	d := ax.Dir.Unit()

	// Sweep radius and height range along the axis from the profile box.
	var rmax float64
	hmin, hmax := math.Inf(1), math.Inf(-1)
	for _, c := range corners(f.Min, f.Max) {
		rel := c.Sub(ax.Origin)
		h := rel.Dot(d)
		rmax = math.Max(rmax, rel.Sub(d.Scale(h)).Length())
		hmin, hmax = math.Min(hmin, h), math.Max(hmax, h)
	}
	bmin0, bmax0 := discBox(ax.Origin.Add(d.Scale(hmin)), d, rmax)
	bmin1, bmax1 := discBox(ax.Origin.Add(d.Scale(hmax)), d, rmax)

	s := k.newShape(kernel.KindSolid, "Revolve")
	s.Min, s.Max = unionBox(bmin0, bmax0, bmin1, bmax1)
	s.SweepAngle = math.Min(angle, kernel.Tau)
	s.FaceList = []*Face{curvedFace(s.Min, s.Max)}
	s.EdgeCount = 2 * f.EdgeCount
	if full {
		return s, nil
	}

	center := kernel.Vec3{
		X: (f.Min[0] + f.Max[0]) / 2,
		Y: (f.Min[1] + f.Max[1]) / 2,
		Z: (f.Min[2] + f.Max[2]) / 2,
	}
	rel := center.Sub(ax.Origin)
	radial := rel.Sub(d.Scale(rel.Dot(d))).Unit()
	tangent := d.Cross(radial)
	end := kernel.Rotation(angle, d)
	s.FaceList = append(s.FaceList,
		planarFace(tangent.Scale(-1), f.Min, f.Max),
		planarFace(end.Normal(tangent), f.Min, f.Max),
	)
	s.EdgeCount += f.EdgeCount
	return s, nil
}

// Pipe sweeps profile along path, carrying the profile's offset from the
// start of the path.
func (k *Kernel) Pipe(pathIn, profileIn kernel.Shape) (kernel.Shape, error) {
	if err := k.record("Pipe"); err != nil {
		return nil, err
	}
	path, err := unwrap(pathIn, "Pipe")
	if err != nil {
		return nil, err
	}
	profile, err := unwrap(profileIn, "Pipe")
	if err != nil {
		return nil, err
	}
	if path.Type != kernel.KindWire && path.Type != kernel.KindEdge {
		return nil, invalid("Pipe", "path is a %s", path.Type)
	}
	if len(path.Points) < 2 {
		return nil, invalid("Pipe", "path has %d points", len(path.Points))
	}
	kind := kernel.KindSolid
	switch profile.Type {
	case kernel.KindFace:
	case kernel.KindWire, kernel.KindEdge:
		kind = kernel.KindFace
	default:
		return nil, invalid("Pipe", "profile is a %s", profile.Type)
	}

	start := path.Points[0]
	r := profile.radius(start)
	s := k.newShape(kind, "Pipe")
	s.Min, s.Max = boundsOf(path.Points)
	for j := 0; j < 3; j++ {
		s.Min[j] -= r
		s.Max[j] += r
	}
	pts := path.Points
	t0 := pts[1].Sub(pts[0]).Unit()
	t1 := pts[len(pts)-1].Sub(pts[len(pts)-2]).Unit()
	s.FaceList = []*Face{
		curvedFace(s.Min, s.Max),
		planarFace(t0.Scale(-1), s.Min, s.Max),
		planarFace(t1, s.Min, s.Max),
	}
	s.EdgeCount = 3 * profile.EdgeCount
	return s, nil
}

func corners(min, max [3]float64) [8]kernel.Vec3 {
	var out [8]kernel.Vec3
	for i := range out {
		p := kernel.Vec3{X: min[0], Y: min[1], Z: min[2]}
		if i&1 != 0 {
			p.X = max[0]
		}
		if i&2 != 0 {
			p.Y = max[1]
		}
		if i&4 != 0 {
			p.Z = max[2]
		}
		out[i] = p
	}
	return out
}

// ---------------------------------------------------------------------------
// Topology
// ---------------------------------------------------------------------------

// Edges returns one handle per edge of s.
func (k *Kernel) Edges(in kernel.Shape) ([]kernel.Shape, error) {
	if err := k.record("Edges"); err != nil {
		return nil, err
	}
	sh, err := unwrap(in, "Edges")
	if err != nil {
		return nil, err
	}
	edges := make([]kernel.Shape, 0, sh.EdgeCount)
	for i := 0; i < sh.EdgeCount; i++ {
		e := k.newShape(kernel.KindEdge, fmt.Sprintf("edge/%d", i))
		e.Min, e.Max = sh.Min, sh.Max
		edges = append(edges, e)
	}
	return edges, nil
}

// Faces returns the faces of s.
func (k *Kernel) Faces(in kernel.Shape) ([]kernel.Face, error) {
	if err := k.record("Faces"); err != nil {
		return nil, err
	}
	sh, err := unwrap(in, "Faces")
	if err != nil {
		return nil, err
	}
	faces := make([]kernel.Face, len(sh.FaceList))
	for i, f := range sh.FaceList {
		faces[i] = f
	}
	return faces, nil
}
