package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazu/csgstep/pkg/csg"
	"github.com/chazu/csgstep/pkg/design"
	"github.com/chazu/csgstep/pkg/engine"
	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/chazu/csgstep/pkg/kernel/kerneltest"
	"github.com/chazu/csgstep/pkg/kernel/manifold"
	"github.com/chazu/csgstep/pkg/kernel/sdfx"
)

var (
	kernelName string
	verbose    bool
	timeout    time.Duration

	eng *engine.Engine
)

// Execute runs the csgstep command line.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "csgstep",
		Short:        "Evaluate CSG scripts and export STL and STEP",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			csg.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

			k, err := openKernel(kernelName)
			if err != nil {
				return err
			}
			eng = engine.NewEngine(engine.Config{Kernel: k, Timeout: timeout})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&kernelName, "kernel", "sdfx", "geometry kernel: sdfx, manifold or memory")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().DurationVar(&timeout, "timeout", engine.EvalTimeout, "evaluation time limit")

	root.AddCommand(evalCmd(), stlCmd(), stepCmd(), meshCmd())
	return root
}

// openKernel returns the kernel named by the --kernel flag.
func openKernel(name string) (kernel.Kernel, error) {
	switch name {
	case "sdfx":
		return sdfx.New(), nil
	case "manifold":
		return manifold.New()
	case "memory":
		return kerneltest.New(), nil
	}
	return nil, fmt.Errorf("unknown kernel %q, expected sdfx, manifold or memory", name)
}

// readSource reads a script from path, or from stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}

// evaluate runs the script at path and returns a validated design.
// Warnings are printed to stderr.
func evaluate(cmd *cobra.Command, path string) (*design.Design, error) {
	src, err := readSource(cmd, path)
	if err != nil {
		return nil, err
	}
	res, err := eng.Run(src)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: part %s: %s\n", w.Part, w.Message)
	}
	if len(res.Errors) > 0 {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	return res.Design, nil
}
