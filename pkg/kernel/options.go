package kernel

import "fmt"

// Default meshing and exchange parameters.
const (
	DefaultLinearDeflection  = 0.5
	DefaultAngularDeflection = 0.25
	DefaultSTEPSchema        = "AP203"
)

// MeshOptions controls incremental meshing before export.
type MeshOptions struct {
	LinearDeflection  float64 // maximum chord distance from the surface
	AngularDeflection float64 // maximum angle between adjacent facets, radians
}

// DefaultMeshOptions returns the default deflections.
func DefaultMeshOptions() MeshOptions {
	return MeshOptions{
		LinearDeflection:  DefaultLinearDeflection,
		AngularDeflection: DefaultAngularDeflection,
	}
}

// WithDefaults returns o with zero fields replaced by defaults.
func (o MeshOptions) WithDefaults() MeshOptions {
	if o.LinearDeflection <= 0 {
		o.LinearDeflection = DefaultLinearDeflection
	}
	if o.AngularDeflection <= 0 {
		o.AngularDeflection = DefaultAngularDeflection
	}
	return o
}

// STLMode selects the STL encoding.
type STLMode int

const (
	STLASCII STLMode = iota
	STLBinary
)

func (m STLMode) String() string {
	switch m {
	case STLASCII:
		return "ascii"
	case STLBinary:
		return "binary"
	default:
		return fmt.Sprintf("STLMode(%d)", int(m))
	}
}

// ParseSTLMode parses "ascii" or "binary".
func ParseSTLMode(s string) (STLMode, error) {
	switch s {
	case "ascii", "":
		return STLASCII, nil
	case "binary":
		return STLBinary, nil
	}
	return 0, fmt.Errorf("invalid stl mode %q, expected ascii or binary", s)
}

// STLOptions controls STL export. The zero value is ASCII output with
// default deflections.
type STLOptions struct {
	Mode STLMode
	MeshOptions
}

// DefaultSTLOptions returns ASCII mode with default deflections.
func DefaultSTLOptions() STLOptions {
	return STLOptions{Mode: STLASCII, MeshOptions: DefaultMeshOptions()}
}

// WithDefaults returns o with zero deflections replaced by defaults.
func (o STLOptions) WithDefaults() STLOptions {
	o.MeshOptions = o.MeshOptions.WithDefaults()
	return o
}

// STEPOptions controls STEP export.
type STEPOptions struct {
	Schema string // e.g. "AP203", "AP214"; empty means DefaultSTEPSchema
}

// WithDefaults returns o with an empty schema replaced by the default.
func (o STEPOptions) WithDefaults() STEPOptions {
	if o.Schema == "" {
		o.Schema = DefaultSTEPSchema
	}
	return o
}
