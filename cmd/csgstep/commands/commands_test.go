package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const twoParts = `
; a plate with a post
(defpart "plate" (cube (vec3 10 10 2)))
(defpart "post" (translate-z (cylinder 1 8) 2))
`

// run executes the command line with args on the in-memory kernel and
// returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--kernel", "memory"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.csg")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEval(t *testing.T) {
	out, _, err := run(t, "eval", writeScript(t, twoParts))
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("output:\n%s\nwant a header and two parts", out)
	}
	if !strings.HasPrefix(lines[1], "plate") || !strings.HasPrefix(lines[2], "post") {
		t.Errorf("parts out of order:\n%s", out)
	}
	if !strings.Contains(lines[2], "(1, 1, 10)") {
		t.Errorf("post bounds missing from %q", lines[2])
	}
}

func TestEvalReportsErrors(t *testing.T) {
	_, _, err := run(t, "eval", writeScript(t, `(cube)`))
	if err == nil || !strings.Contains(err.Error(), "expected 1 arguments") {
		t.Errorf("err = %v, want arity error", err)
	}

	_, _, err = run(t, "eval", filepath.Join(t.TempDir(), "missing.csg"))
	if err == nil || !strings.Contains(err.Error(), "read script") {
		t.Errorf("err = %v, want read error", err)
	}
}

func TestUnknownKernel(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--kernel", "opencascade", "eval", "x"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "unknown kernel") {
		t.Errorf("err = %v, want unknown kernel", err)
	}
}

func TestSTLExport(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, "stl", writeScript(t, twoParts), "-o", dir, "--binary")
	if err != nil {
		t.Fatalf("stl: %v", err)
	}
	for _, name := range []string{"plate", "post"} {
		path := filepath.Join(dir, name+".stl")
		if !strings.Contains(out, path) {
			t.Errorf("output does not list %s:\n%s", path, out)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		// 84 byte header and count, 50 bytes per triangle, 12 triangles.
		if info.Size() != 84+50*12 {
			t.Errorf("%s is %d bytes, want %d", path, info.Size(), 84+50*12)
		}
	}
}

func TestSTEPExport(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := run(t, "step", writeScript(t, twoParts), "-o", dir, "--schema", "AP214"); err != nil {
		t.Fatalf("step: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "plate.step"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("AP214")) {
		t.Errorf("plate.step does not carry the schema:\n%s", data)
	}

	_, _, err = run(t, "step", writeScript(t, twoParts), "-o", dir, "--schema", "AP999")
	if err == nil || !strings.Contains(err.Error(), "unknown schema") {
		t.Errorf("err = %v, want unknown schema", err)
	}
}

func TestMeshJSON(t *testing.T) {
	out, _, err := run(t, "mesh", writeScript(t, twoParts))
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	var res MeshResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("errors: %v", res.Errors)
	}
	if len(res.Meshes) != 2 {
		t.Fatalf("meshes = %d, want 2", len(res.Meshes))
	}
	for i, m := range res.Meshes {
		if m.Color != colorPalette[i] {
			t.Errorf("mesh %d color = %s, want %s", i, m.Color, colorPalette[i])
		}
		if len(m.Indices) != 36 {
			t.Errorf("mesh %d has %d indices, want 36", i, len(m.Indices))
		}
	}
	if res.Meshes[0].PartName != "plate" || res.Meshes[1].PartName != "post" {
		t.Errorf("part names = %s, %s", res.Meshes[0].PartName, res.Meshes[1].PartName)
	}
}

func TestMeshJSONCarriesEvalErrors(t *testing.T) {
	out, _, err := run(t, "mesh", writeScript(t, `(sphere "big")`))
	if err != nil {
		t.Fatalf("mesh should report errors in the document, got %v", err)
	}
	var res MeshResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Errors) == 0 || len(res.Meshes) != 0 {
		t.Errorf("result = %+v, want errors and no meshes", res)
	}
}

func TestReadStdin(t *testing.T) {
	root := newRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(`(sphere 1)`))
	root.SetArgs([]string{"--kernel", "memory", "eval", "-"})
	if err := root.Execute(); err != nil {
		t.Fatalf("eval -: %v", err)
	}
	if !strings.Contains(stdout.String(), "main") {
		t.Errorf("output = %q, want the implicit main part", stdout.String())
	}
}

func TestMeshColorPaletteWraps(t *testing.T) {
	var src strings.Builder
	for i := 0; i < len(colorPalette)+1; i++ {
		src.WriteString("(defpart \"p" + string(rune('a'+i)) + "\" (cube 1))\n")
	}
	out, _, err := run(t, "mesh", writeScript(t, src.String()))
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	var res MeshResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Meshes) != len(colorPalette)+1 {
		t.Fatalf("meshes = %d, want %d", len(res.Meshes), len(colorPalette)+1)
	}
	if last := res.Meshes[len(colorPalette)]; last.Color != colorPalette[0] {
		t.Errorf("part %s color = %s, want the palette to wrap to %s", last.PartName, last.Color, colorPalette[0])
	}
}
