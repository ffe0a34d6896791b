package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chazu/csgstep/pkg/kernel"
)

func stlCmd() *cobra.Command {
	var (
		outDir  string
		binary  bool
		linear  float64
		angular float64
	)
	cmd := &cobra.Command{
		Use:   "stl FILE",
		Short: "Write one STL file per part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := evaluate(cmd, args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			opts := kernel.STLOptions{
				Mode:        kernel.STLASCII,
				MeshOptions: kernel.MeshOptions{LinearDeflection: linear, AngularDeflection: angular},
			}
			if binary {
				opts.Mode = kernel.STLBinary
			}
			for _, p := range d.Parts() {
				path := filepath.Join(outDir, p.Name+".stl")
				if err := p.Solid.WriteSTL(path, opts); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&binary, "binary", false, "write binary STL")
	cmd.Flags().Float64Var(&linear, "linear-deflection", kernel.DefaultLinearDeflection, "maximum chordal deviation")
	cmd.Flags().Float64Var(&angular, "angular-deflection", kernel.DefaultAngularDeflection, "maximum angle between adjacent facets, radians")
	return cmd
}

func stepCmd() *cobra.Command {
	var (
		outDir string
		schema string
	)
	cmd := &cobra.Command{
		Use:   "step FILE",
		Short: "Write one STEP file per part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := evaluate(cmd, args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for _, p := range d.Parts() {
				path := filepath.Join(outDir, p.Name+".step")
				if err := p.Solid.WriteSTEP(path, kernel.STEPOptions{Schema: schema}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&schema, "schema", kernel.DefaultSTEPSchema, "STEP application protocol")
	return cmd
}
