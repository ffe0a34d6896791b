package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/csgstep/pkg/kernel/kerneltest"
	"github.com/chazu/csgstep/pkg/kernel/sdfx"
)

func newTestEngine() (*Engine, *kerneltest.Kernel) {
	k := kerneltest.New()
	return NewEngine(Config{Kernel: k}), k
}

func TestEvaluateEmptyString(t *testing.T) {
	eng, _ := newTestEngine()

	for _, src := range []string{"", "   \n\t  \n  "} {
		d, evalErrs, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if d == nil {
			t.Fatal("expected non-nil design")
		}
		if d.Len() != 0 {
			t.Errorf("expected empty design, got %d parts", d.Len())
		}
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	eng, k := newTestEngine()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	// A non-solid final value registers nothing.
	if d.Len() != 0 {
		t.Errorf("expected empty design, got parts %v", d.Names())
	}
	if len(k.Calls()) != 0 {
		t.Errorf("plain arithmetic reached the kernel: %v", k.Calls())
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng, _ := newTestEngine()

	// Unmatched paren is a parse error.
	d, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil design on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng, _ := newTestEngine()

	d, evalErrs, err := eng.Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil design on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	eng, _ := newTestEngine()

	_, evalErrs, err := eng.Evaluate("(sphere 1)\n(sphere 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	e := evalErrs[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	// Line info depends on the zygomys message format.
	if e.Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", e.Line, e.Message)
	} else {
		t.Logf("no line info extracted (line=0), message=%q", e.Message)
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if s2 := e2.Error(); strings.Contains(s2, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s2)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng, _ := newTestEngine()

	var last uint64
	for i := 0; i < 5; i++ {
		d, evalErrs, err := eng.Evaluate(`(defpart "box" (cube 10))`)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if d.Len() != 1 || d.Lookup("box") == nil {
			t.Fatalf("iteration %d: parts = %v, want [box]", i, d.Names())
		}
		if _, max := d.MustLookup("box").Solid.BoundingBox(); max != [3]float64{10, 10, 10} {
			t.Errorf("iteration %d: max = %v", i, max)
		}
		if d.Version <= last {
			t.Errorf("iteration %d: version %d not after %d", i, d.Version, last)
		}
		last = d.Version
	}
}

func TestEvaluateRecoversBetweenScripts(t *testing.T) {
	eng, _ := newTestEngine()

	sources := []struct {
		src string
		ok  bool
	}{
		{`(defpart "ok" (cube 1))`, true},
		{`(defpart "broken"`, false},
		{``, true},
		{`(part "missing")`, false},
		{`(defpart "also-ok" (sphere 2))`, true},
		{`;; just a comment`, true},
		{`(undefined-func 1 2 3)`, false},
		{`(defpart "last" (cylinder 1 4))`, true},
	}
	for i, s := range sources {
		_, evalErrs, err := eng.Evaluate(s.src)
		if err != nil {
			t.Fatalf("source %d: unexpected fatal error: %v", i, err)
		}
		if got := len(evalErrs) == 0; got != s.ok {
			t.Errorf("source %d %q: ok = %v, want %v (%v)", i, s.src, got, s.ok, evalErrs)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	eng := NewEngine(Config{})
	if _, ok := eng.Kernel().(*sdfx.SdfxKernel); !ok {
		t.Errorf("default kernel = %T, want *sdfx.SdfxKernel", eng.Kernel())
	}
	if eng.cfg.Timeout != EvalTimeout {
		t.Errorf("default timeout = %s, want %s", eng.cfg.Timeout, EvalTimeout)
	}
}

func TestEvaluateTimeout(t *testing.T) {
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult) // never sends

	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, _, resultErr = waitWithTimeout(ch, 1, 20*time.Millisecond, &mu, &gen)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", resultErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // current generation is 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	// Generation 1 is stale.
	_, _, err := waitWithTimeout(ch, 1, time.Second, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestRunValidates(t *testing.T) {
	eng, _ := newTestEngine()

	res, err := eng.Run(`(defpart "disc" (circle 2))`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	// defpart only accepts solids, so this fails before validation.
	if len(res.Errors) == 0 || !strings.Contains(res.Errors[0].Message, "expected solid") {
		t.Errorf("errors = %v, want expected solid", res.Errors)
	}

	res, err = eng.Run(`(+ 1 2)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0].Message, "no parts") {
		t.Errorf("errors = %v, want design has no parts", res.Errors)
	}

	res, err = eng.Run(`(cube (vec3 2 2 2))`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) != 0 || len(res.Warnings) != 0 {
		t.Errorf("valid cube: errors %v warnings %v", res.Errors, res.Warnings)
	}
	if res.Design.Lookup("main") == nil {
		t.Error("expected implicit main part")
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: cube: expected 1 arguments, got 0",
			wantLine: 3,
			wantMsg:  "cube: expected 1 arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
