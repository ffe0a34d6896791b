package commands

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/chazu/csgstep/pkg/tessellate"
)

// colorPalette assigns distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData is the JSON mesh format consumed by viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable evaluation error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// MeshResult is the document written by the mesh command.
type MeshResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

func meshCmd() *cobra.Command {
	var (
		linear float64
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "mesh FILE",
		Short: "Print part meshes as JSON",
		Long: "Evaluate a script and print one colored mesh per part as JSON. " +
			"Evaluation errors are reported inside the document, not as a failure.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			res := buildMeshResult(cmd.Context(), src, kernel.MeshOptions{LinearDeflection: linear})

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(res)
		},
	}
	cmd.Flags().Float64Var(&linear, "linear-deflection", kernel.DefaultLinearDeflection, "maximum chordal deviation")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

// buildMeshResult evaluates src and tessellates every part. It never
// fails; problems are reported in the result.
func buildMeshResult(ctx context.Context, src string, opts kernel.MeshOptions) MeshResult {
	result := MeshResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := eng.Run(src)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: "part " + w.Part + ": " + w.Message})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	meshes, err := tessellate.Tessellate(ctx, res.Design, opts)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}
