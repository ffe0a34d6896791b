package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/csgstep/pkg/csg"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Sexp wrappers for geometric values
// ---------------------------------------------------------------------------

// sexpSolid carries a csg.Solid between builtins.
type sexpSolid struct {
	val csg.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid %s)", boundsString(s.val.BoundingBox()))
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpProfile carries a csg.Profile.
type sexpProfile struct {
	val csg.Profile
}

func (p *sexpProfile) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(profile %s)", boundsString(p.val.BoundingBox()))
}
func (p *sexpProfile) Type() *zygo.RegisteredType { return nil }

// sexpWire carries a csg.Wire.
type sexpWire struct {
	val csg.Wire
}

func (w *sexpWire) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(wire %s)", boundsString(w.val.BoundingBox()))
}
func (w *sexpWire) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a csg.Vec3.
type sexpVec3 struct {
	vec csg.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpVec2 wraps a csg.Vec2.
type sexpVec2 struct {
	vec csg.Vec2
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

func boundsString(min, max [3]float64) string {
	return fmt.Sprintf("[%g %g %g]..[%g %g %g]", min[0], min[1], min[2], max[0], max[1], max[2])
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a keyword rewritten by preprocessSource and
// returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs is an argument list split into keyword and positional arguments.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs splits args. A trailing keyword without a value maps to
// SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			res.positional = append(res.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			res.kw[name] = args[i+1]
			i++
		} else {
			res.kw[name] = zygo.SexpNull
		}
	}
	return res
}

// float returns keyword name as a number, or def when absent.
func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// bool returns keyword name as a boolean, or false when absent. A bare
// trailing keyword counts as true.
func (a kwArgs) bool(name string) (bool, error) {
	v, ok := a.kw[name]
	if !ok {
		return false, nil
	}
	if v == zygo.SexpNull {
		return true, nil
	}
	b, err := toBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %s", describe(s))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

func toVec3(s zygo.Sexp) (csg.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return csg.Vec3{}, fmt.Errorf("expected vec3, got %s", describe(s))
}

// toVec2 accepts a vec2, or a vec3 with its Z dropped.
func toVec2(s zygo.Sexp) (csg.Vec2, error) {
	switch v := s.(type) {
	case *sexpVec2:
		return v.vec, nil
	case *sexpVec3:
		return csg.Vec2{X: v.vec.X, Y: v.vec.Y}, nil
	}
	return csg.Vec2{}, fmt.Errorf("expected vec2, got %s", describe(s))
}

// toSize accepts a number, meaning a uniform size, or a vec3.
func toSize(s zygo.Sexp) (csg.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	f, err := toFloat64(s)
	if err != nil {
		return csg.Vec3{}, fmt.Errorf("expected number or vec3, got %s", describe(s))
	}
	return csg.Uniform(f), nil
}

func toSolid(s zygo.Sexp) (csg.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.val, nil
	}
	return csg.Solid{}, fmt.Errorf("expected solid, got %s", describe(s))
}

func toProfile(s zygo.Sexp) (csg.Profile, error) {
	if v, ok := s.(*sexpProfile); ok {
		return v.val, nil
	}
	return csg.Profile{}, fmt.Errorf("expected profile, got %s", describe(s))
}

func toWire(s zygo.Sexp) (csg.Wire, error) {
	if v, ok := s.(*sexpWire); ok {
		return v.val, nil
	}
	return csg.Wire{}, fmt.Errorf("expected wire, got %s", describe(s))
}

// sexpListToSlice converts a list or array to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %s", describe(s))
}

// flatten expands list and array arguments in place, so builtins accept
// both (polygon a b c) and (polygon (list a b c)).
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nothing"
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}
