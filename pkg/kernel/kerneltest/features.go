package kerneltest

import (
	"math"

	"github.com/chazu/csgstep/pkg/kernel"
)

// minExtent returns the smallest side of the shape's bounding box.
func (s *Shape) minExtent() float64 {
	e := math.Inf(1)
	for j := 0; j < 3; j++ {
		e = math.Min(e, s.Max[j]-s.Min[j])
	}
	return e
}

// edgeRound is shared by the fillet and chamfer builders: both replace each
// selected edge with a new curved or planar face.
type edgeRound struct {
	k      *Kernel
	op     string
	src    *Shape
	sizes  []float64
	edges  []kernel.Shape
	curved bool
}

func (b *edgeRound) add(size float64, edge kernel.Shape) {
	b.sizes = append(b.sizes, size)
	b.edges = append(b.edges, edge)
}

func (b *edgeRound) build() (*Shape, error) {
	if err := b.k.record(b.op); err != nil {
		return nil, err
	}
	if len(b.edges) == 0 {
		return nil, invalid(b.op, "no edges selected")
	}
	limit := b.src.minExtent()
	for i, e := range b.edges {
		sh, err := unwrap(e, b.op)
		if err != nil {
			return nil, err
		}
		if sh.Type != kernel.KindEdge {
			return nil, invalid(b.op, "item %d is a %s, not an edge", i, sh.Type)
		}
		if r := b.sizes[i]; r <= 0 || 2*r >= limit {
			return nil, invalid(b.op, "size %g does not fit a body of extent %g", r, limit)
		}
	}
	s := b.k.derive(b.src, b.op)
	for range b.edges {
		if b.curved {
			s.FaceList = append(s.FaceList, curvedFace(s.Min, s.Max))
		} else {
			s.FaceList = append(s.FaceList, planarFace(kernel.UnitZ, s.Min, s.Max))
		}
	}
	s.EdgeCount += 2 * len(b.edges)
	return s, nil
}

type filletBuilder struct{ edgeRound }

func (b *filletBuilder) Add(radius float64, edge kernel.Shape) { b.add(radius, edge) }

func (b *filletBuilder) Build() (kernel.Shape, error) {
	s, err := b.build()
	if err != nil {
		return nil, err
	}
	s.Filleted += len(b.edges)
	return s, nil
}

type chamferBuilder struct{ edgeRound }

func (b *chamferBuilder) Add(distance float64, edge kernel.Shape) { b.add(distance, edge) }

func (b *chamferBuilder) Build() (kernel.Shape, error) {
	s, err := b.build()
	if err != nil {
		return nil, err
	}
	s.Chamfered += len(b.edges)
	return s, nil
}

func (k *Kernel) volumeFor(op string, in kernel.Shape) (*Shape, error) {
	if err := k.record(op); err != nil {
		return nil, err
	}
	sh, err := unwrap(in, op)
	if err != nil {
		return nil, err
	}
	if !sh.isVolume() {
		return nil, invalid(op, "expected solid, got %s", sh.Type)
	}
	return sh, nil
}

// NewFillet starts a fillet on a solid.
func (k *Kernel) NewFillet(in kernel.Shape) (kernel.FilletBuilder, error) {
	sh, err := k.volumeFor("NewFillet", in)
	if err != nil {
		return nil, err
	}
	return &filletBuilder{edgeRound{k: k, op: "Fillet", src: sh, curved: true}}, nil
}

// NewChamfer starts a chamfer on a solid.
func (k *Kernel) NewChamfer(in kernel.Shape) (kernel.ChamferBuilder, error) {
	sh, err := k.volumeFor("NewChamfer", in)
	if err != nil {
		return nil, err
	}
	return &chamferBuilder{edgeRound{k: k, op: "Chamfer", src: sh}}, nil
}

type draftItem struct {
	face  kernel.Face
	dir   kernel.Vec3
	angle float64
}

type draftBuilder struct {
	k     *Kernel
	src   *Shape
	items []draftItem
}

// NewDraft starts a draft on a solid.
func (k *Kernel) NewDraft(in kernel.Shape) (kernel.DraftBuilder, error) {
	sh, err := k.volumeFor("NewDraft", in)
	if err != nil {
		return nil, err
	}
	return &draftBuilder{k: k, src: sh}, nil
}

func (b *draftBuilder) Add(face kernel.Face, direction kernel.Vec3, angle float64, _ kernel.Plane) {
	b.items = append(b.items, draftItem{face: face, dir: direction, angle: angle})
}

// Build tilts every added face by its angle towards the pull direction.
// Faces are matched by identity against the source shape.
func (b *draftBuilder) Build() (kernel.Shape, error) {
	if err := b.k.record("Draft"); err != nil {
		return nil, err
	}
	s := b.k.derive(b.src, "Draft")
	for _, it := range b.items {
		if math.Abs(it.angle) >= math.Pi/2 {
			return nil, invalid("Draft", "angle %g out of range", it.angle)
		}
		if it.dir.IsZero() {
			return nil, invalid("Draft", "zero pull direction")
		}
		idx := -1
		for i, f := range b.src.FaceList {
			if kernel.Face(f) == it.face {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, invalid("Draft", "face does not belong to the shape")
		}
		f := s.FaceList[idx]
		s.Drafted = append(s.Drafted, f.N)
		d := it.dir.Unit()
		f.N = f.N.Scale(math.Cos(it.angle)).Add(d.Scale(math.Sin(it.angle))).Unit()
	}
	return s, nil
}
