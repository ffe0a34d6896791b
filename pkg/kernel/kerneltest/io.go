package kerneltest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/chazu/csgstep/pkg/kernel/stl"
)

// stepFile is the on-disk form of an exchanged shape. It is not ISO 10303;
// it only has to survive a write and a read by this kernel.
type stepFile struct {
	Schema string `json:"schema"`
	Shape  *Shape `json:"shape"`
}

var schemas = map[string]bool{"AP203": true, "AP214": true, "AP242": true}

// Mesh triangulates the bounding box of s. Each face of the box becomes two
// triangles wound outward.
func (k *Kernel) Mesh(in kernel.Shape, opts kernel.MeshOptions) (*kernel.Mesh, error) {
	if err := k.record("Mesh"); err != nil {
		return nil, err
	}
	sh, err := unwrap(in, "Mesh")
	if err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()
	if opts.LinearDeflection <= 0 {
		return nil, invalid("Mesh", "linear deflection %g", opts.LinearDeflection)
	}
	c := corners(sh.Min, sh.Max)
	m := &kernel.Mesh{}
	quads := [6][4]int{
		{0, 4, 6, 2}, // -X
		{1, 3, 7, 5}, // +X
		{0, 1, 5, 4}, // -Y
		{2, 6, 7, 3}, // +Y
		{0, 2, 3, 1}, // -Z
		{4, 5, 7, 6}, // +Z
	}
	for _, q := range quads {
		m.AddTriangle(c[q[0]], c[q[1]], c[q[2]])
		m.AddTriangle(c[q[0]], c[q[2]], c[q[3]])
	}
	return m, nil
}

// WriteSTEP writes s as JSON tagged with the requested schema.
func (k *Kernel) WriteSTEP(in kernel.Shape, path string, opts kernel.STEPOptions) error {
	if err := k.record("WriteSTEP"); err != nil {
		return err
	}
	sh, err := unwrap(in, "WriteSTEP")
	if err != nil {
		return err
	}
	opts = opts.WithDefaults()
	if !schemas[opts.Schema] {
		return &kernel.IOError{Op: "write-step", Path: path, Err: fmt.Errorf("unknown schema %q", opts.Schema)}
	}
	data, err := json.MarshalIndent(stepFile{Schema: opts.Schema, Shape: sh}, "", "  ")
	if err != nil {
		return &kernel.IOError{Op: "write-step", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &kernel.IOError{Op: "write-step", Path: path, Err: err}
	}
	return nil
}

// ReadSTEP reads a file written by WriteSTEP.
func (k *Kernel) ReadSTEP(path string) (kernel.Shape, error) {
	if err := k.record("ReadSTEP"); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &kernel.IOError{Op: "read-step", Path: path, Err: err}
	}
	var f stepFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &kernel.IOError{Op: "read-step", Path: path, Err: err}
	}
	if !schemas[f.Schema] || f.Shape == nil {
		return nil, &kernel.IOError{Op: "read-step", Path: path, Err: fmt.Errorf("not a STEP file")}
	}
	return k.derive(f.Shape, "ReadSTEP"), nil
}

// WriteSTL meshes s and writes it with package stl.
func (k *Kernel) WriteSTL(in kernel.Shape, path string, opts kernel.STLOptions) error {
	opts = opts.WithDefaults()
	m, err := k.Mesh(in, opts.MeshOptions)
	if err != nil {
		return err
	}
	if err := k.record("WriteSTL"); err != nil {
		return err
	}
	return stl.WriteFile(path, m, opts.Mode)
}
