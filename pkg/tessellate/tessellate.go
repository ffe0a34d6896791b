// Package tessellate produces triangle meshes for the parts of a design.
// One mesh is produced per non-empty part.
package tessellate

import (
	"context"
	"fmt"

	"github.com/chazu/csgstep/pkg/csg"
	"github.com/chazu/csgstep/pkg/design"
	"github.com/chazu/csgstep/pkg/kernel"
)

// Tessellate meshes every non-empty part of d, in declaration order, with
// PartName set. Parts are meshed concurrently; the first failure cancels
// the rest. The tessellator is read-only and never mutates the design.
func Tessellate(ctx context.Context, d *design.Design, opts kernel.MeshOptions) ([]*kernel.Mesh, error) {
	if d == nil {
		return nil, nil
	}
	opts = opts.WithDefaults()

	var parts []*design.Part
	for _, p := range d.Parts() {
		if p.Solid.IsEmpty() {
			csg.Logger().Debug("tessellate: skipping empty part", "part", p.Name)
			continue
		}
		parts = append(parts, p)
	}

	meshes, err := csg.Parallel(ctx, len(parts), func(ctx context.Context, i int) (*kernel.Mesh, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := parts[i]
		m, err := p.Solid.Mesh(opts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: part %q: %w", p.Name, err)
		}
		m.PartName = p.Name
		csg.Logger().Debug("tessellated part", "part", p.Name, "triangles", m.TriangleCount())
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return meshes, nil
}

// Bounds returns the combined bounds of meshes. Empty input gives zero
// bounds.
func Bounds(meshes []*kernel.Mesh) (min, max [3]float64) {
	first := true
	for _, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		lo, hi := m.Bounds()
		if first {
			min, max, first = lo, hi, false
			continue
		}
		for j := 0; j < 3; j++ {
			if lo[j] < min[j] {
				min[j] = lo[j]
			}
			if hi[j] > max[j] {
				max[j] = hi[j]
			}
		}
	}
	return min, max
}
