package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/highlight"
)

// highlightCommand creates the highlight command.
func (c *CLI) highlightCommand() *cobra.Command {
	var (
		focus  string
		output string
		lf     layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "highlight [snapshot.json]",
		Short: "Print the visual state for a hovered node",
		Long: `Print the visual state for a hovered node.

Every node and edge on the replication path through --focus (its ancestors
and descendants) stays at full opacity and every other one is dimmed. Without
--focus the base state is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if focus != "" {
				if err := errors.ValidateNodeID(focus); err != nil {
					return err
				}
			}
			res, err := c.buildLayout(cmd, args, &lf)
			if err != nil {
				return err
			}

			st := highlight.Base(res)
			if focus != "" {
				if st, err = highlight.Compute(topology.NodeID(focus), res); err != nil {
					return err
				}
			}

			w, closeFn, err := c.createOutput(output)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(st); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}

	cmd.Flags().StringVar(&focus, "focus", "", "id of the hovered node")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	lf.register(cmd)

	return cmd
}
