package kerneltest

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/chazu/csgstep/pkg/kernel"
)

func mustShape(s kernel.Shape, err error) func(*testing.T) *Shape {
	return func(t *testing.T) *Shape {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return s.(*Shape)
	}
}

func TestPrimitiveKinds(t *testing.T) {
	k := New()
	tests := []struct {
		name  string
		build func() (kernel.Shape, error)
		kind  kernel.ShapeKind
		faces int
	}{
		{"sphere", func() (kernel.Shape, error) { return k.Sphere(1) }, kernel.KindSolid, 1},
		{"box", func() (kernel.Shape, error) { return k.Box(kernel.Vec3{X: 1, Y: 2, Z: 3}, kernel.Vec3{}) }, kernel.KindSolid, 6},
		{"cylinder", func() (kernel.Shape, error) { return k.Cylinder(kernel.AxisZ, 1, 2) }, kernel.KindSolid, 3},
		{"cone", func() (kernel.Shape, error) { return k.Cone(kernel.AxisZ, 1, 0, 2) }, kernel.KindSolid, 2},
		{"wedge", func() (kernel.Shape, error) { return k.Wedge(1, 1, 1, 0, 0, 1, 0.5) }, kernel.KindSolid, 6},
		{"polygon", func() (kernel.Shape, error) {
			return k.Polygon([]kernel.Vec2{{}, {X: 1}, {Y: 1}})
		}, kernel.KindFace, 1},
		{"circle", func() (kernel.Shape, error) { return k.Circle(1) }, kernel.KindFace, 1},
		{"segment", func() (kernel.Shape, error) {
			return k.Segment(kernel.Vec3{}, kernel.UnitX)
		}, kernel.KindEdge, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustShape(tt.build())(t)
			if s.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", s.Kind(), tt.kind)
			}
			if len(s.FaceList) != tt.faces {
				t.Errorf("faces = %d, want %d", len(s.FaceList), tt.faces)
			}
		})
	}
}

func TestInvalidPrimitives(t *testing.T) {
	k := New()
	if _, err := k.Sphere(0); !errors.Is(err, kernel.ErrInvalidShape) {
		t.Errorf("Sphere(0) err = %v", err)
	}
	if _, err := k.Spline([]kernel.Vec3{{}}); !errors.Is(err, kernel.ErrInvalidShape) {
		t.Errorf("Spline(1 point) err = %v", err)
	}
	if _, err := k.Arc(kernel.Vec3{}, kernel.UnitX, kernel.UnitX.Scale(2)); err == nil {
		t.Error("collinear arc should fail")
	}
}

func TestWireAndFace(t *testing.T) {
	k := New()
	a, _ := k.Segment(kernel.Vec3{}, kernel.Vec3{X: 1})
	b, _ := k.Segment(kernel.Vec3{X: 1, Y: 1}, kernel.Vec3{X: 1}) // reversed
	c, _ := k.Segment(kernel.Vec3{X: 1, Y: 1}, kernel.Vec3{})
	w := mustShape(k.Wire(a, b, c))(t)
	if w.EdgeCount != 3 || len(w.Points) != 4 {
		t.Fatalf("wire edges=%d points=%d, want 3 and 4", w.EdgeCount, len(w.Points))
	}
	f := mustShape(k.Face(w))(t)
	n, _ := f.FaceList[0].Normal()
	if math.Abs(n.Z-1) > 1e-9 {
		t.Errorf("face normal = %v, want +Z", n)
	}

	open := mustShape(k.Wire(a, b))(t)
	if _, err := k.Face(open); !errors.Is(err, kernel.ErrInvalidShape) {
		t.Errorf("Face(open wire) err = %v", err)
	}
	far, _ := k.Segment(kernel.Vec3{X: 5}, kernel.Vec3{X: 6})
	if _, err := k.Wire(a, far); err == nil {
		t.Error("disconnected wire should fail")
	}
}

func TestBooleansAndApply(t *testing.T) {
	k := New()
	a, _ := k.Box(kernel.Vec3{X: 2, Y: 2, Z: 2}, kernel.Vec3{})
	b, _ := k.Box(kernel.Vec3{X: 2, Y: 2, Z: 2}, kernel.Vec3{X: 1, Y: 1, Z: 1})

	u := mustShape(k.Fuse(a, b))(t)
	if u.Max != [3]float64{3, 3, 3} || len(u.FaceList) != 12 {
		t.Errorf("fuse box = %v..%v faces %d", u.Min, u.Max, len(u.FaceList))
	}
	i := mustShape(k.Common(a, b))(t)
	if i.Min != [3]float64{1, 1, 1} || i.Max != [3]float64{2, 2, 2} {
		t.Errorf("common box = %v..%v", i.Min, i.Max)
	}
	d := mustShape(k.Cut(a, b))(t)
	if d.Max != [3]float64{2, 2, 2} {
		t.Errorf("cut box = %v..%v", d.Min, d.Max)
	}

	moved := mustShape(k.Apply(a, kernel.Translation(kernel.Vec3{Z: 10})))(t)
	if moved.Min[2] != 10 {
		t.Errorf("translated min z = %v, want 10", moved.Min[2])
	}
	if a.(*Shape).Min[2] != 0 {
		t.Error("Apply mutated its input")
	}
	if got := k.Applied(); len(got) != 1 || got[0].Kind != kernel.AffineTranslate {
		t.Errorf("Applied() = %v", got)
	}

	c, _ := k.Circle(1)
	if _, err := k.Fuse(a, c); !errors.Is(err, kernel.ErrInvalidShape) {
		t.Errorf("solid+face err = %v", err)
	}
}

func TestPrismSides(t *testing.T) {
	k := New()
	sq, _ := k.Polygon([]kernel.Vec2{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}})
	p := mustShape(k.Prism(sq, kernel.Vec3{Z: 2}))(t)
	if len(p.FaceList) != 6 {
		t.Fatalf("prism faces = %d, want 6", len(p.FaceList))
	}
	vertical := 0
	for _, f := range p.FaceList {
		if math.Abs(f.N.Z) < 1e-9 {
			vertical++
		}
	}
	if vertical != 4 {
		t.Errorf("vertical faces = %d, want 4", vertical)
	}
	if p.Max[2] != 2 {
		t.Errorf("prism height = %v, want 2", p.Max[2])
	}
}

func TestRevolveCaps(t *testing.T) {
	k := New()
	sq, _ := k.Polygon([]kernel.Vec2{{X: 1}, {X: 2}, {X: 2, Y: 1}, {X: 1, Y: 1}})
	xz, _ := k.Apply(sq, kernel.Rotation(math.Pi/2, kernel.UnitX))

	full := mustShape(k.Revolve(xz, kernel.AxisZ, kernel.Tau))(t)
	if len(full.FaceList) != 1 {
		t.Errorf("full revolve faces = %d, want 1", len(full.FaceList))
	}
	half := mustShape(k.Revolve(xz, kernel.AxisZ, math.Pi))(t)
	if len(half.FaceList) != 3 {
		t.Errorf("half revolve faces = %d, want 3", len(half.FaceList))
	}
	if math.Abs(full.Max[0]-2) > 1e-9 {
		t.Errorf("revolve radius = %v, want 2", full.Max[0])
	}
}

func TestFeatureBuilders(t *testing.T) {
	k := New()
	box, _ := k.Box(kernel.Vec3{X: 1, Y: 1, Z: 1}, kernel.Vec3{})
	edges, err := k.Edges(box)
	if err != nil || len(edges) != 12 {
		t.Fatalf("Edges = %d, %v", len(edges), err)
	}

	fb, _ := k.NewFillet(box)
	for _, e := range edges {
		fb.Add(0.1, e)
	}
	f := mustShape(fb.Build())(t)
	if f.Filleted != 12 {
		t.Errorf("Filleted = %d, want 12", f.Filleted)
	}

	big, _ := k.NewFillet(box)
	big.Add(0.6, edges[0])
	if _, err := big.Build(); !errors.Is(err, kernel.ErrInvalidShape) {
		t.Errorf("oversized fillet err = %v", err)
	}
	empty, _ := k.NewChamfer(box)
	if _, err := empty.Build(); err == nil {
		t.Error("chamfer with no edges should fail")
	}

	faces, _ := k.Faces(box)
	db, _ := k.NewDraft(box)
	db.Add(faces[0], kernel.UnitZ, 0.1, kernel.PlaneXY)
	d := mustShape(db.Build())(t)
	if len(d.Drafted) != 1 || d.Drafted[0] != (kernel.Vec3{X: -1}) {
		t.Errorf("Drafted = %v", d.Drafted)
	}
	if d.FaceList[0].N.Z <= 0 {
		t.Errorf("drafted normal %v should lean towards +Z", d.FaceList[0].N)
	}
}

func TestSTEPRoundTrip(t *testing.T) {
	k := New()
	box, _ := k.Box(kernel.Vec3{X: 1, Y: 2, Z: 3}, kernel.Vec3{})
	path := filepath.Join(t.TempDir(), "box.step")
	if err := k.WriteSTEP(box, path, kernel.STEPOptions{Schema: "AP214"}); err != nil {
		t.Fatal(err)
	}
	back := mustShape(k.ReadSTEP(path))(t)
	if back.Max != [3]float64{1, 2, 3} || len(back.FaceList) != 6 {
		t.Errorf("round trip = %v faces %d", back.Max, len(back.FaceList))
	}

	var ioErr *kernel.IOError
	if _, err := k.ReadSTEP(filepath.Join(t.TempDir(), "missing.step")); !errors.As(err, &ioErr) {
		t.Errorf("missing file err = %v, want IOError", err)
	}
	if err := k.WriteSTEP(box, path, kernel.STEPOptions{Schema: "AP999"}); !errors.As(err, &ioErr) {
		t.Errorf("bad schema err = %v, want IOError", err)
	}
}

func TestMeshAndRecording(t *testing.T) {
	k := New()
	box, _ := k.Box(kernel.Vec3{X: 1, Y: 1, Z: 1}, kernel.Vec3{})
	m, err := k.Mesh(box, kernel.MeshOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", m.TriangleCount())
	}
	if k.Count("Box") != 1 || k.Count("Mesh") != 1 {
		t.Errorf("Calls() = %v", k.Calls())
	}

	k.FailOn("Sphere")
	if _, err := k.Sphere(1); !errors.Is(err, ErrInjected) {
		t.Errorf("injected err = %v", err)
	}
	k.Reset()
	if len(k.Calls()) != 0 {
		t.Error("Reset did not clear calls")
	}
}
