package cli

import (
	"github.com/spf13/cobra"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		quiet  bool
		lf     layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [snapshot.json]",
		Short: "Position a replication snapshot and print the layout as JSON",
		Long: `Position a replication snapshot and print the layout as JSON.

The snapshot is read from the given file, or from the configured source
(file, redis or cache-dir) when no file is given. The output carries every
node with its position, depth and parent, every edge with its visual style,
the root nodes and any diagnostics raised while building the layout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.buildLayout(cmd, args, &lf)
			if err != nil {
				return err
			}

			w, closeFn, err := c.createOutput(output)
			if err != nil {
				return err
			}
			if err := res.WriteJSON(w); err != nil {
				closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}

			if !quiet && output != "" && output != "-" {
				printSuccess("Layout written")
				printStats(res)
				printFile(output)
				printNextStep("Render it", "topograph render -o topology.svg")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress status output")
	lf.register(cmd)

	return cmd
}
