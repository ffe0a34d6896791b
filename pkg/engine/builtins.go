package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/csgstep/pkg/csg"
	"github.com/chazu/csgstep/pkg/design"
	"github.com/chazu/csgstep/pkg/kernel"
	zygo "github.com/glycerine/zygomys/zygo"
)

// session is the state one evaluation's builtins share.
type session struct {
	m       *csg.Modeler
	d       *design.Design
	defined bool // a defpart ran
}

// builtinFunc is the body of a builtin. Errors get the builtin's name
// prepended by add.
type builtinFunc func(args []zygo.Sexp) (zygo.Sexp, error)

// add registers fn under name. Names use underscores, the form
// preprocessSource gives kebab-case identifiers.
func add(env *zygo.Zlisp, name string, fn builtinFunc) {
	display := strings.ReplaceAll(name, "_", "-")
	env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		out, err := fn(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", display, err)
		}
		return out, nil
	})
}

// arity checks the positional argument count.
func arity(args []zygo.Sexp, least, most int) error {
	if len(args) < least || (most >= 0 && len(args) > most) {
		switch {
		case least == most:
			return fmt.Errorf("expected %d arguments, got %d", least, len(args))
		case most < 0:
			return fmt.Errorf("expected at least %d arguments, got %d", least, len(args))
		default:
			return fmt.Errorf("expected %d to %d arguments, got %d", least, most, len(args))
		}
	}
	return nil
}

// floats converts every argument to a number.
func floats(args []zygo.Sexp) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

func points3(args []zygo.Sexp) ([]csg.Vec3, error) {
	items, err := flatten(args)
	if err != nil {
		return nil, err
	}
	out := make([]csg.Vec3, len(items))
	for i, it := range items {
		if out[i], err = toVec3(it); err != nil {
			return nil, fmt.Errorf("point %d: %w", i+1, err)
		}
	}
	return out, nil
}

func points2(args []zygo.Sexp) ([]csg.Vec2, error) {
	items, err := flatten(args)
	if err != nil {
		return nil, err
	}
	out := make([]csg.Vec2, len(items))
	for i, it := range items {
		if out[i], err = toVec2(it); err != nil {
			return nil, fmt.Errorf("point %d: %w", i+1, err)
		}
	}
	return out, nil
}

func solidResult(s csg.Solid, err error) (zygo.Sexp, error) {
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSolid{val: s}, nil
}

func profileResult(p csg.Profile, err error) (zygo.Sexp, error) {
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpProfile{val: p}, nil
}

func wireResult(w csg.Wire, err error) (zygo.Sexp, error) {
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpWire{val: w}, nil
}

// transformValue applies op to a solid, profile or wire.
func transformValue(v zygo.Sexp, op kernel.Affine) (zygo.Sexp, error) {
	switch x := v.(type) {
	case *sexpSolid:
		return solidResult(x.val.Transform(op))
	case *sexpProfile:
		return profileResult(x.val.Transform(op))
	case *sexpWire:
		return wireResult(x.val.Transform(op))
	}
	return zygo.SexpNull, fmt.Errorf("expected solid, profile or wire, got %s", describe(v))
}

// registerBuiltins installs the modelling builtins into env. Source must
// go through preprocessSource first so keywords and kebab-case names
// resolve.
func registerBuiltins(env *zygo.Zlisp, s *session) {
	s.registerValues(env)
	s.registerPrimitives(env)
	s.registerCurves(env)
	s.registerBooleans(env)
	s.registerTransforms(env)
	s.registerSweeps(env)
	s.registerFeatures(env)
	s.registerParts(env)
}

// ---------------------------------------------------------------------------
// (vec3 x y z) (vec2 x y) (deg d)
// ---------------------------------------------------------------------------

func (s *session) registerValues(env *zygo.Zlisp) {
	add(env, "vec3", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 3, 3); err != nil {
			return zygo.SexpNull, err
		}
		f, err := floats(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: csg.Vec3{X: f[0], Y: f[1], Z: f[2]}}, nil
	})
	add(env, "vec2", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2, 2); err != nil {
			return zygo.SexpNull, err
		}
		f, err := floats(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec2{vec: csg.Vec2{X: f[0], Y: f[1]}}, nil
	})
	add(env, "deg", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 1, 1); err != nil {
			return zygo.SexpNull, err
		}
		d, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpFloat{Val: csg.Deg(d)}, nil
	})
}

// ---------------------------------------------------------------------------
// Solid primitives
// ---------------------------------------------------------------------------

func (s *session) registerPrimitives(env *zygo.Zlisp) {
	// (sphere r)
	add(env, "sphere", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 1, 1); err != nil {
			return zygo.SexpNull, err
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return solidResult(s.m.Sphere(r))
	})

	// (cube 10 :center true) or (cube (vec3 1 2 3))
	add(env, "cube", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 1, 1); err != nil {
			return zygo.SexpNull, err
		}
		size, err := toSize(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := pa.bool("center")
		if err != nil {
			return zygo.SexpNull, err
		}
		return solidResult(s.m.Cube(size, center))
	})

	// (cylinder r h :center true)
	add(env, "cylinder", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 2, 2); err != nil {
			return zygo.SexpNull, err
		}
		f, err := floats(pa.positional)
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := pa.bool("center")
		if err != nil {
			return zygo.SexpNull, err
		}
		return solidResult(s.m.Cylinder(f[0], f[1], center))
	})

	// (cone r1 r2 h :center true)
	add(env, "cone", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 3, 3); err != nil {
			return zygo.SexpNull, err
		}
		f, err := floats(pa.positional)
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := pa.bool("center")
		if err != nil {
			return zygo.SexpNull, err
		}
		return solidResult(s.m.Cone(f[0], f[1], f[2], center))
	})

	// (wedge dx dy dz ltx) or (wedge dx dy dz :xmin a :zmin b :xmax c :zmax d)
	add(env, "wedge", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 3, 4); err != nil {
			return zygo.SexpNull, err
		}
		f, err := floats(pa.positional)
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(f) == 4 {
			return solidResult(s.m.Wedge(csg.Ramp(f[0], f[1], f[2], f[3])))
		}
		p := csg.WedgeParams{DX: f[0], DY: f[1], DZ: f[2]}
		for _, kw := range []struct {
			name string
			dst  *float64
			def  float64
		}{
			{"xmin", &p.XMin, 0},
			{"zmin", &p.ZMin, 0},
			{"xmax", &p.XMax, p.DX},
			{"zmax", &p.ZMax, p.DZ},
		} {
			if *kw.dst, err = pa.float(kw.name, kw.def); err != nil {
				return zygo.SexpNull, err
			}
		}
		return solidResult(s.m.Wedge(p))
	})

	// (load-step "part.step")
	add(env, "load_step", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 1, 1); err != nil {
			return zygo.SexpNull, err
		}
		path, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return solidResult(s.m.LoadSTEP(path))
	})
}

// ---------------------------------------------------------------------------
// Profiles and wires
// ---------------------------------------------------------------------------

func (s *session) registerCurves(env *zygo.Zlisp) {
	// (circle r)
	add(env, "circle", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 1, 1); err != nil {
			return zygo.SexpNull, err
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return profileResult(s.m.Circle(r))
	})

	// (ellipse major minor)
	add(env, "ellipse", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2, 2); err != nil {
			return zygo.SexpNull, err
		}
		f, err := floats(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return profileResult(s.m.Ellipse(f[0], f[1]))
	})

	// (square 10 :center true) or (square (vec2 4 2))
	add(env, "square", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 1, 1); err != nil {
			return zygo.SexpNull, err
		}
		var size csg.Vec2
		if f, err := toFloat64(pa.positional[0]); err == nil {
			size = csg.Uniform2(f)
		} else if size, err = toVec2(pa.positional[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("expected number or vec2, got %s", describe(pa.positional[0]))
		}
		center, err := pa.bool("center")
		if err != nil {
			return zygo.SexpNull, err
		}
		return profileResult(s.m.Square(size, center))
	})

	// (polygon (vec2 0 0) (vec2 1 0) (vec2 0 1))
	add(env, "polygon", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := points2(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return profileResult(s.m.Polygon(pts))
	})

	// (segment p1 p2)
	add(env, "segment", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2, 2); err != nil {
			return zygo.SexpNull, err
		}
		pts, err := points3(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return wireResult(s.m.Segment(pts[0], pts[1]))
	})

	// (arc start middle end)
	add(env, "arc", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 3, 3); err != nil {
			return zygo.SexpNull, err
		}
		pts, err := points3(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return wireResult(s.m.Arc(pts[0], pts[1], pts[2]))
	})

	// (spline p1 p2 ...)
	add(env, "spline", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := points3(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return wireResult(s.m.Spline(pts))
	})

	// (path p1 p2 ...): a polyline
	add(env, "path", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := points3(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return wireResult(s.m.Path(pts))
	})

	// (wire w1 w2 ...)
	add(env, "wire", func(args []zygo.Sexp) (zygo.Sexp, error) {
		items, err := flatten(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		ws := make([]csg.Wire, len(items))
		for i, it := range items {
			if ws[i], err = toWire(it); err != nil {
				return zygo.SexpNull, fmt.Errorf("argument %d: %w", i+1, err)
			}
		}
		return wireResult(csg.JoinWires(ws...))
	})

	// (face w)
	add(env, "face", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 1, 1); err != nil {
			return zygo.SexpNull, err
		}
		w, err := toWire(args[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return profileResult(w.Face())
	})
}

// ---------------------------------------------------------------------------
// Booleans
// ---------------------------------------------------------------------------

func (s *session) registerBooleans(env *zygo.Zlisp) {
	// (union a b ...) over solids, or over profiles.
	add(env, "union", func(args []zygo.Sexp) (zygo.Sexp, error) {
		items, err := flatten(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(items) > 0 {
			if _, ok := items[0].(*sexpProfile); ok {
				var acc csg.Profile
				for i, it := range items {
					p, err := toProfile(it)
					if err != nil {
						return zygo.SexpNull, fmt.Errorf("argument %d: %w", i+1, err)
					}
					if acc, err = acc.Union(p); err != nil {
						return zygo.SexpNull, err
					}
				}
				return &sexpProfile{val: acc}, nil
			}
		}
		solids := make([]csg.Solid, len(items))
		for i, it := range items {
			if solids[i], err = toSolid(it); err != nil {
				return zygo.SexpNull, fmt.Errorf("argument %d: %w", i+1, err)
			}
		}
		return solidResult(csg.UnionAll(solids...))
	})

	binaryOp := func(name string, sf func(a, b csg.Solid) (csg.Solid, error), pf func(a, b csg.Profile) (csg.Profile, error)) {
		add(env, name, func(args []zygo.Sexp) (zygo.Sexp, error) {
			if err := arity(args, 2, 2); err != nil {
				return zygo.SexpNull, err
			}
			if a, ok := args[0].(*sexpProfile); ok && pf != nil {
				b, err := toProfile(args[1])
				if err != nil {
					return zygo.SexpNull, err
				}
				return profileResult(pf(a.val, b))
			}
			a, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, err
			}
			b, err := toSolid(args[1])
			if err != nil {
				return zygo.SexpNull, err
			}
			return solidResult(sf(a, b))
		})
	}
	binaryOp("fuse", csg.Solid.Fuse, csg.Profile.Union)
	binaryOp("intersection", csg.Solid.Intersection, csg.Profile.Intersection)
	binaryOp("difference", csg.Solid.Difference, csg.Profile.Difference)

	// (compound a b ...)
	add(env, "compound", func(args []zygo.Sexp) (zygo.Sexp, error) {
		items, err := flatten(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := arity(items, 1, -1); err != nil {
			return zygo.SexpNull, err
		}
		solids := make([]csg.Solid, len(items))
		for i, it := range items {
			if solids[i], err = toSolid(it); err != nil {
				return zygo.SexpNull, fmt.Errorf("argument %d: %w", i+1, err)
			}
		}
		return solidResult(solids[0].Compound(solids[1:]...))
	})
}

// ---------------------------------------------------------------------------
// Transforms: the transformed value comes first.
// ---------------------------------------------------------------------------

func (s *session) registerTransforms(env *zygo.Zlisp) {
	// (translate x (vec3 1 2 3))
	add(env, "translate", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2, 2); err != nil {
			return zygo.SexpNull, err
		}
		v, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return transformValue(args[0], kernel.Translation(v))
	})

	// (rotate x angle (vec3 0 0 1)), angle in radians
	add(env, "rotate", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 3, 3); err != nil {
			return zygo.SexpNull, err
		}
		angle, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		axis, err := toVec3(args[2])
		if err != nil {
			return zygo.SexpNull, err
		}
		return transformValue(args[0], kernel.Rotation(angle, axis))
	})

	// (mirror x (vec3 1 0 0))
	add(env, "mirror", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2, 2); err != nil {
			return zygo.SexpNull, err
		}
		axis, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return transformValue(args[0], kernel.Mirror(axis))
	})

	// (scale x 2) or (scale x (vec3 1 1 2))
	add(env, "scale", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2, 2); err != nil {
			return zygo.SexpNull, err
		}
		v, err := toSize(args[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return transformValue(args[0], kernel.Scaling(v))
	})

	axes := []struct {
		suffix string
		unit   csg.Vec3
	}{{"x", csg.UX}, {"y", csg.UY}, {"z", csg.UZ}}
	for _, ax := range axes {
		unit := ax.unit
		add(env, "translate_"+ax.suffix, func(args []zygo.Sexp) (zygo.Sexp, error) {
			if err := arity(args, 2, 2); err != nil {
				return zygo.SexpNull, err
			}
			d, err := toFloat64(args[1])
			if err != nil {
				return zygo.SexpNull, err
			}
			return transformValue(args[0], kernel.Translation(unit.Scale(d)))
		})
		add(env, "rotate_"+ax.suffix, func(args []zygo.Sexp) (zygo.Sexp, error) {
			if err := arity(args, 2, 2); err != nil {
				return zygo.SexpNull, err
			}
			a, err := toFloat64(args[1])
			if err != nil {
				return zygo.SexpNull, err
			}
			return transformValue(args[0], kernel.Rotation(a, unit))
		})
		add(env, "mirror_"+ax.suffix, func(args []zygo.Sexp) (zygo.Sexp, error) {
			if err := arity(args, 1, 1); err != nil {
				return zygo.SexpNull, err
			}
			return transformValue(args[0], kernel.Mirror(unit))
		})
	}
}

// ---------------------------------------------------------------------------
// Sweeps: the profile comes first.
// ---------------------------------------------------------------------------

func (s *session) registerSweeps(env *zygo.Zlisp) {
	// (linear-extrude p 10)
	add(env, "linear_extrude", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2, 2); err != nil {
			return zygo.SexpNull, err
		}
		p, err := toProfile(args[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		d, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return solidResult(p.LinearExtrude(d))
	})

	// (rotate-extrude p) or (rotate-extrude p :angle (deg 90))
	add(env, "rotate_extrude", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 1, 1); err != nil {
			return zygo.SexpNull, err
		}
		p, err := toProfile(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		angle, err := pa.float("angle", csg.Tau)
		if err != nil {
			return zygo.SexpNull, err
		}
		return solidResult(p.RotateExtrudeAngle(angle))
	})

	// (spline-extrude p pt1 pt2 ...)
	add(env, "spline_extrude", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2, -1); err != nil {
			return zygo.SexpNull, err
		}
		p, err := toProfile(args[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		pts, err := points3(args[1:])
		if err != nil {
			return zygo.SexpNull, err
		}
		return solidResult(p.SplineExtrude(pts))
	})

	// (sweep p w)
	add(env, "sweep", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2, 2); err != nil {
			return zygo.SexpNull, err
		}
		p, err := toProfile(args[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		w, err := toWire(args[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return solidResult(p.Sweep(w))
	})

	// (helix-extrude p :radius 8 :height 5.1 :pitch 1 :center true)
	add(env, "helix_extrude", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 1, 1); err != nil {
			return zygo.SexpNull, err
		}
		p, err := toProfile(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		var hp csg.HelixParams
		for _, kw := range []struct {
			name string
			dst  *float64
		}{{"radius", &hp.Radius}, {"height", &hp.Height}, {"pitch", &hp.Pitch}} {
			if _, ok := pa.kw[kw.name]; !ok {
				return zygo.SexpNull, fmt.Errorf("missing :%s", kw.name)
			}
			if *kw.dst, err = pa.float(kw.name, 0); err != nil {
				return zygo.SexpNull, err
			}
		}
		if hp.Center, err = pa.bool("center"); err != nil {
			return zygo.SexpNull, err
		}
		return solidResult(p.HelixExtrude(hp))
	})
}

// ---------------------------------------------------------------------------
// Features
// ---------------------------------------------------------------------------

func (s *session) registerFeatures(env *zygo.Zlisp) {
	feature := func(name string, op func(csg.Solid, float64) (csg.Solid, error)) {
		add(env, name, func(args []zygo.Sexp) (zygo.Sexp, error) {
			if err := arity(args, 2, 2); err != nil {
				return zygo.SexpNull, err
			}
			sol, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, err
			}
			f, err := toFloat64(args[1])
			if err != nil {
				return zygo.SexpNull, err
			}
			return solidResult(op(sol, f))
		})
	}
	feature("fillet", csg.Solid.Fillet)   // (fillet s radius)
	feature("chamfer", csg.Solid.Chamfer) // (chamfer s distance)
	feature("draft", csg.Solid.Draft)     // (draft s angle)
}

// ---------------------------------------------------------------------------
// Parts
// ---------------------------------------------------------------------------

func (s *session) registerParts(env *zygo.Zlisp) {
	// (defpart "name" solid) registers a part and returns its solid.
	add(env, "defpart", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2, 2); err != nil {
			return zygo.SexpNull, fmt.Errorf("requires a name and a body expression: %w", err)
		}
		name, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("name: %w", err)
		}
		sol, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		if _, err := s.d.Add(name, sol); err != nil {
			return zygo.SexpNull, err
		}
		s.defined = true
		csg.Logger().Debug("defpart", "name", name)
		return args[1], nil
	})

	// (part "name")
	add(env, "part", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 1, 1); err != nil {
			return zygo.SexpNull, err
		}
		name, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("name: %w", err)
		}
		p := s.d.Lookup(name)
		if p == nil {
			return zygo.SexpNull, fmt.Errorf("no part named %q", name)
		}
		return &sexpSolid{val: p.Solid}, nil
	})
}
