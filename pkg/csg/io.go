package csg

import "github.com/chazu/csgstep/pkg/kernel"

// WriteSTEP writes s to a STEP file. An empty schema selects AP203.
// Failures are reported as *kernel.IOError.
func (s Solid) WriteSTEP(path string, opts kernel.STEPOptions) error {
	if s.IsEmpty() {
		return &kernel.IOError{Op: "write-step", Path: path, Err: ErrEmpty}
	}
	opts = opts.WithDefaults()
	if err := s.k.WriteSTEP(s.h, path, opts); err != nil {
		return ioFailure("write-step", path, err)
	}
	Logger().Info("wrote step", "path", path, "schema", opts.Schema)
	return nil
}

// WriteSTL meshes s and writes it to an STL file. Zero deflections take
// the defaults of 0.5 linear and 0.25 angular. Failures are reported as
// *kernel.IOError.
func (s Solid) WriteSTL(path string, opts kernel.STLOptions) error {
	if s.IsEmpty() {
		return &kernel.IOError{Op: "write-stl", Path: path, Err: ErrEmpty}
	}
	opts = opts.WithDefaults()
	if err := s.k.WriteSTL(s.h, path, opts); err != nil {
		return ioFailure("write-stl", path, err)
	}
	Logger().Info("wrote stl", "path", path, "mode", opts.Mode)
	return nil
}

// Mesh triangulates s.
func (s Solid) Mesh(opts kernel.MeshOptions) (*kernel.Mesh, error) {
	if s.IsEmpty() {
		return nil, empty("mesh")
	}
	m, err := s.k.Mesh(s.h, opts.WithDefaults())
	if err != nil {
		return nil, wrap("mesh", err)
	}
	return m, nil
}
