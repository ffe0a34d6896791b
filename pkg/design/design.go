package design

import (
	"errors"
	"fmt"

	"github.com/chazu/csgstep/pkg/csg"
	"github.com/chazu/csgstep/pkg/kernel"
)

// DefaultPartName is the name given to the result of a script that never
// declared a part.
const DefaultPartName = "main"

// ErrDuplicatePart is returned by Add when the name is already taken.
var ErrDuplicatePart = errors.New("design: duplicate part name")

// Part is one named solid of a design.
type Part struct {
	Name  string    `json:"name"`
	Index int       `json:"index"` // declaration order
	Solid csg.Solid `json:"-"`
}

// Kind returns the topological kind of the part's handle. Empty parts
// report KindCompound, the kind of an empty container.
func (p *Part) Kind() kernel.ShapeKind {
	if p.Solid.IsEmpty() {
		return kernel.KindCompound
	}
	return p.Solid.Handle().Kind()
}

// Design is an ordered collection of named parts.
type Design struct {
	Units   string `json:"units"`   // "mm", the only unit for now
	Version uint64 `json:"version"` // evaluation generation that built it

	parts []*Part
	index map[string]int
}

// New creates an empty Design.
func New() *Design {
	return &Design{
		Units: "mm",
		index: make(map[string]int),
	}
}

// Add appends a part. Names must be non-empty and unique.
func (d *Design) Add(name string, s csg.Solid) (*Part, error) {
	if name == "" {
		return nil, fmt.Errorf("design: part name must not be empty")
	}
	if _, exists := d.index[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicatePart, name)
	}
	p := &Part{Name: name, Index: len(d.parts), Solid: s}
	d.index[name] = p.Index
	d.parts = append(d.parts, p)
	return p, nil
}

// Lookup returns the part with the given name, or nil.
func (d *Design) Lookup(name string) *Part {
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	return d.parts[i]
}

// MustLookup returns the part with the given name, or panics.
func (d *Design) MustLookup(name string) *Part {
	p := d.Lookup(name)
	if p == nil {
		panic(fmt.Sprintf("design: no part named %q", name))
	}
	return p
}

// Parts returns the parts in declaration order. The slice is a copy.
func (d *Design) Parts() []*Part {
	out := make([]*Part, len(d.parts))
	copy(out, d.parts)
	return out
}

// Names returns the part names in declaration order.
func (d *Design) Names() []string {
	names := make([]string, len(d.parts))
	for i, p := range d.parts {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of parts.
func (d *Design) Len() int {
	return len(d.parts)
}

// Assembly unions every non-empty part into one solid.
func (d *Design) Assembly() (csg.Solid, error) {
	solids := make([]csg.Solid, len(d.parts))
	for i, p := range d.parts {
		solids[i] = p.Solid
	}
	return csg.UnionAll(solids...)
}
