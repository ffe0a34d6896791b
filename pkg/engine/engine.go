// Package engine evaluates CSG scripts. It wraps zygomys in a sandboxed
// environment with modelling builtins and produces a design.Design from
// user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/csgstep/pkg/csg"
	"github.com/chazu/csgstep/pkg/design"
	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/chazu/csgstep/pkg/kernel/sdfx"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a non-fatal finding about the evaluated design.
type EvalWarning struct {
	Part    string
	Message string
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Design   *design.Design
	Errors   []EvalError
	Warnings []EvalWarning
}

// Config configures an Engine.
type Config struct {
	Kernel  kernel.Kernel // nil selects the sdfx kernel
	Timeout time.Duration // zero selects EvalTimeout
}

func (c Config) withDefaults() Config {
	if c.Kernel == nil {
		c.Kernel = sdfx.New()
	}
	if c.Timeout <= 0 {
		c.Timeout = EvalTimeout
	}
	return c
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment, and only
// the most recent call gets a result.
type Engine struct {
	cfg        Config
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine building geometry on cfg.Kernel.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Kernel returns the kernel scripts are evaluated on.
func (e *Engine) Kernel() kernel.Kernel {
	return e.cfg.Kernel
}

// Evaluate takes script source and produces a new Design.
//
// Return semantics:
//   - On success: returns design + nil errors + nil error
//   - On parse/eval failure: returns nil design + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*design.Design, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		d, evalErrs, err := e.evaluate(source, gen)
		ch <- evalResult{design: d, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, e.cfg.Timeout, &e.mu, &e.generation)
}

// Run evaluates source and validates the resulting design. Validation
// errors are reported as evaluation errors; warnings are kept separate.
func (e *Engine) Run(source string) (EvalResult, error) {
	d, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return EvalResult{}, err
	}
	if len(evalErrs) > 0 {
		return EvalResult{Errors: evalErrs}, nil
	}
	res := EvalResult{Design: d}
	v := design.Validate(d)
	for _, f := range v.Errors {
		res.Errors = append(res.Errors, EvalError{Message: f.Error()})
	}
	for _, w := range v.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Part: w.Part, Message: w.Message})
	}
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, gen uint64) (*design.Design, []EvalError, error) {
	d := design.New()
	d.Version = gen

	// Empty source is a valid program that produces an empty design.
	if strings.TrimSpace(source) == "" {
		return d, nil, nil
	}

	start := time.Now()

	// Sandbox mode keeps user code away from the filesystem and syscalls;
	// only the builtins touch the outside world.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	s := &session{m: csg.New(e.cfg.Kernel), d: d}
	registerBuiltins(env, s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	// A script that never declared a part yields its final solid.
	if !s.defined {
		if sol, ok := last.(*sexpSolid); ok && !sol.val.IsEmpty() {
			if _, err := d.Add(design.DefaultPartName, sol.val); err != nil {
				return nil, nil, err
			}
		}
	}

	csg.Logger().Info("evaluated script",
		"generation", gen,
		"parts", d.Len(),
		"elapsed", time.Since(start))
	return d, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
