package csg

import "github.com/chazu/csgstep/pkg/kernel"

// apply runs one affine operation through the kernel. Empty handles pass
// through without a kernel call.
func apply(k kernel.Kernel, h kernel.Shape, op kernel.Affine) (kernel.Shape, error) {
	if h == nil {
		return nil, nil
	}
	out, err := k.Apply(h, op)
	if err != nil {
		return nil, wrap(op.Kind.String(), err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Solid
// ---------------------------------------------------------------------------

// Transform applies op and returns the result.
func (s Solid) Transform(op kernel.Affine) (Solid, error) {
	h, err := apply(s.k, s.h, op)
	if err != nil {
		return Solid{}, err
	}
	return Wrap(s.k, h), nil
}

// Mirror returns s turned half a revolution about the line through the
// origin along axis.
func (s Solid) Mirror(axis Vec3) (Solid, error) { return s.Transform(kernel.Mirror(axis)) }

// Rotate returns s rotated by angle radians about the line through the
// origin along axis. The angle comes first.
func (s Solid) Rotate(angle float64, axis Vec3) (Solid, error) {
	return s.Transform(kernel.Rotation(angle, axis))
}

// Translate returns s moved by v.
func (s Solid) Translate(v Vec3) (Solid, error) { return s.Transform(kernel.Translation(v)) }

// Scale returns s scaled uniformly by f about the origin.
func (s Solid) Scale(f float64) (Solid, error) { return s.ScaleVec(Uniform(f)) }

// ScaleVec returns s mapped through diag(v). Anisotropic factors are
// passed to the kernel unchecked.
func (s Solid) ScaleVec(v Vec3) (Solid, error) { return s.Transform(kernel.Scaling(v)) }

// MirrorX mirrors s about the X axis.
func (s Solid) MirrorX() (Solid, error) { return s.Mirror(UX) }

// MirrorY mirrors s about the Y axis.
func (s Solid) MirrorY() (Solid, error) { return s.Mirror(UY) }

// MirrorZ mirrors s about the Z axis.
func (s Solid) MirrorZ() (Solid, error) { return s.Mirror(UZ) }

// RotateX rotates s by a radians about the X axis.
func (s Solid) RotateX(a float64) (Solid, error) { return s.Rotate(a, UX) }

// RotateY rotates s by a radians about the Y axis.
func (s Solid) RotateY(a float64) (Solid, error) { return s.Rotate(a, UY) }

// RotateZ rotates s by a radians about the Z axis.
func (s Solid) RotateZ(a float64) (Solid, error) { return s.Rotate(a, UZ) }

// TranslateX moves s by d along X.
func (s Solid) TranslateX(d float64) (Solid, error) { return s.Translate(UX.Scale(d)) }

// TranslateY moves s by d along Y.
func (s Solid) TranslateY(d float64) (Solid, error) { return s.Translate(UY.Scale(d)) }

// TranslateZ moves s by d along Z.
func (s Solid) TranslateZ(d float64) (Solid, error) { return s.Translate(UZ.Scale(d)) }

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

// Transform applies op and returns the result.
func (p Profile) Transform(op kernel.Affine) (Profile, error) {
	h, err := apply(p.k, p.h, op)
	if err != nil || h == nil {
		return Profile{}, err
	}
	return Profile{k: p.k, h: h}, nil
}

// Mirror returns p turned half a revolution about the line through the
// origin along axis.
func (p Profile) Mirror(axis Vec3) (Profile, error) { return p.Transform(kernel.Mirror(axis)) }

// Rotate returns p rotated by angle radians about axis through the origin.
func (p Profile) Rotate(angle float64, axis Vec3) (Profile, error) {
	return p.Transform(kernel.Rotation(angle, axis))
}

// Translate returns p moved by v.
func (p Profile) Translate(v Vec3) (Profile, error) { return p.Transform(kernel.Translation(v)) }

// Scale returns p scaled uniformly by f about the origin.
func (p Profile) Scale(f float64) (Profile, error) { return p.ScaleVec(Uniform(f)) }

// ScaleVec returns p mapped through diag(v).
func (p Profile) ScaleVec(v Vec3) (Profile, error) { return p.Transform(kernel.Scaling(v)) }

// MirrorX mirrors p about the X axis.
func (p Profile) MirrorX() (Profile, error) { return p.Mirror(UX) }

// MirrorY mirrors p about the Y axis.
func (p Profile) MirrorY() (Profile, error) { return p.Mirror(UY) }

// MirrorZ mirrors p about the Z axis.
func (p Profile) MirrorZ() (Profile, error) { return p.Mirror(UZ) }

// RotateX rotates p by a radians about the X axis.
func (p Profile) RotateX(a float64) (Profile, error) { return p.Rotate(a, UX) }

// RotateY rotates p by a radians about the Y axis.
func (p Profile) RotateY(a float64) (Profile, error) { return p.Rotate(a, UY) }

// RotateZ rotates p by a radians about the Z axis.
func (p Profile) RotateZ(a float64) (Profile, error) { return p.Rotate(a, UZ) }

// TranslateX moves p by d along X.
func (p Profile) TranslateX(d float64) (Profile, error) { return p.Translate(UX.Scale(d)) }

// TranslateY moves p by d along Y.
func (p Profile) TranslateY(d float64) (Profile, error) { return p.Translate(UY.Scale(d)) }

// TranslateZ moves p by d along Z.
func (p Profile) TranslateZ(d float64) (Profile, error) { return p.Translate(UZ.Scale(d)) }

// ---------------------------------------------------------------------------
// Wire
// ---------------------------------------------------------------------------

// Transform applies op and returns the result.
func (w Wire) Transform(op kernel.Affine) (Wire, error) {
	h, err := apply(w.k, w.h, op)
	if err != nil || h == nil {
		return Wire{}, err
	}
	return Wire{k: w.k, h: h}, nil
}

// Mirror returns w turned half a revolution about the line through the
// origin along axis.
func (w Wire) Mirror(axis Vec3) (Wire, error) { return w.Transform(kernel.Mirror(axis)) }

// Rotate returns w rotated by angle radians about axis through the origin.
func (w Wire) Rotate(angle float64, axis Vec3) (Wire, error) {
	return w.Transform(kernel.Rotation(angle, axis))
}

// Translate returns w moved by v.
func (w Wire) Translate(v Vec3) (Wire, error) { return w.Transform(kernel.Translation(v)) }

// Scale returns w scaled uniformly by f about the origin.
func (w Wire) Scale(f float64) (Wire, error) { return w.ScaleVec(Uniform(f)) }

// ScaleVec returns w mapped through diag(v).
func (w Wire) ScaleVec(v Vec3) (Wire, error) { return w.Transform(kernel.Scaling(v)) }

// MirrorX mirrors w about the X axis.
func (w Wire) MirrorX() (Wire, error) { return w.Mirror(UX) }

// MirrorY mirrors w about the Y axis.
func (w Wire) MirrorY() (Wire, error) { return w.Mirror(UY) }

// MirrorZ mirrors w about the Z axis.
func (w Wire) MirrorZ() (Wire, error) { return w.Mirror(UZ) }

// RotateX rotates w by a radians about the X axis.
func (w Wire) RotateX(a float64) (Wire, error) { return w.Rotate(a, UX) }

// RotateY rotates w by a radians about the Y axis.
func (w Wire) RotateY(a float64) (Wire, error) { return w.Rotate(a, UY) }

// RotateZ rotates w by a radians about the Z axis.
func (w Wire) RotateZ(a float64) (Wire, error) { return w.Rotate(a, UZ) }

// TranslateX moves w by d along X.
func (w Wire) TranslateX(d float64) (Wire, error) { return w.Translate(UX.Scale(d)) }

// TranslateY moves w by d along Y.
func (w Wire) TranslateY(d float64) (Wire, error) { return w.Translate(UY.Scale(d)) }

// TranslateZ moves w by d along Z.
func (w Wire) TranslateZ(d float64) (Wire, error) { return w.Translate(UZ.Scale(d)) }
