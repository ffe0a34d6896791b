package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func evalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a script and list its parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := evaluate(cmd, args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PART\tKIND\tMIN\tMAX")
			for _, p := range d.Parts() {
				min, max := p.Solid.BoundingBox()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Kind(), point(min), point(max))
			}
			return w.Flush()
		},
	}
	return cmd
}

func point(p [3]float64) string {
	return fmt.Sprintf("(%.3g, %.3g, %.3g)", p[0], p[1], p[2])
}
