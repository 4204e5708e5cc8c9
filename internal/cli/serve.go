package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topograph/internal/server"
	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/source"
	"github.com/matzehuels/topograph/pkg/view"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		interval time.Duration
		lf       layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Watch the configured source and serve the topology API",
		Long: `Watch the configured source and serve the topology API.

The source is polled on the refresh interval. Every changed snapshot is laid
out and replaces the previous one, and every open viewer returns to its idle
state. Viewers open a session with POST /api/viewers and report hovers with
PUT /api/viewers/{id}/hover.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			lf.apply(cmd, &cfg.Layout)
			if cmd.Flags().Changed("addr") {
				if err := errors.ValidateListenAddr(addr); err != nil {
					return err
				}
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("interval") {
				cfg.Source.RefreshInterval.Duration = interval
			}

			src, closeFn, err := openSource(ctx, cfg.Source)
			if err != nil {
				return err
			}
			defer closeFn()

			ctrl := view.NewController(
				view.WithLogger(c.Logger),
				view.WithLayoutOptions(cfg.Layout.Options()...),
			)
			watcher := source.NewWatcher(src, ctrl.Apply,
				source.WithInterval(cfg.Source.RefreshInterval.Duration),
				source.WithLogger(c.Logger),
			)
			srv := server.New(server.Config{
				Addr:       cfg.Server.Addr,
				Controller: ctrl,
				Logger:     c.Logger,
				Runners:    []server.Runner{watcher},
			})

			printInfo("Serving topology from %s", src.Name())
			printKeyValue("Address", cfg.Server.Addr)
			printKeyValue("Refresh", cfg.Source.RefreshInterval.String())
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&interval, "interval", source.DefaultInterval, "source polling interval")
	lf.register(cmd)

	return cmd
}
