package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topograph/internal/config"
	"github.com/matzehuels/topograph/pkg/cache"
	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/source"
	"github.com/matzehuels/topograph/pkg/topology"
)

// snapshotCommand creates the snapshot command group.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Move snapshots between files and the cache",
	}

	cmd.AddCommand(c.snapshotPushCommand())
	cmd.AddCommand(c.snapshotPullCommand())
	cmd.AddCommand(c.snapshotCaptureCommand())

	return cmd
}

// snapshotPushCommand creates the "snapshot push" subcommand.
func (c *CLI) snapshotPushCommand() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "push <snapshot.json>",
		Short: "Write a snapshot into the configured cache",
		Long: `Write a snapshot into the configured cache.

The nodes and edges are stored under the same keys the capture job uses, so
a running 'topograph serve' picks them up on its next refresh. The source
kind must be redis or cache-dir.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Source.Kind == config.SourceFile {
				return errors.New(errors.ErrCodeUnsupported, "snapshot push needs a redis or cache-dir source, got %q", cfg.Source.Kind)
			}

			snap, err := source.NewFileSource(args[0]).Load(ctx)
			if err != nil {
				return err
			}

			cc, err := openCache(ctx, cfg.Source)
			if err != nil {
				return err
			}
			defer cc.Close()

			prog := newProgress(c.Logger)
			keys := cache.NewKeys(cfg.Source.KeyPrefix)
			if err := source.NewCacheSource(cc, keys).Store(ctx, snap, ttl); err != nil {
				return err
			}
			prog.debug("Stored snapshot")

			printSuccess("Pushed %d nodes, %d edges", snap.NodeCount(), snap.EdgeCount())
			for _, k := range keys.All() {
				printDetail("%s", k)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "expiry of the stored documents (0 keeps them)")

	return cmd
}

// snapshotPullCommand creates the "snapshot pull" subcommand.
func (c *CLI) snapshotPullCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Read the current snapshot from the configured source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			snap, err := c.loadSnapshot(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			return c.writeSnapshot(snap, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

// snapshotCaptureCommand creates the "snapshot capture" subcommand.
func (c *CLI) snapshotCaptureCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "capture <catalog.json>",
		Short: "Build a snapshot from a database catalog",
		Long: `Build a snapshot from a database catalog.

The catalog is a JSON array of database records with host, shortName,
isPrimary, source and replicationRunning fields. Replica lists are derived
from the source links, one node is created per short name and one edge per
replication link.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "read catalog")
			}
			var dbs []topology.Database
			if err := json.Unmarshal(data, &dbs); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode catalog %s", args[0])
			}

			ptrs := make([]*topology.Database, len(dbs))
			for i := range dbs {
				ptrs[i] = &dbs[i]
			}
			topology.SetReplicas(ptrs)

			snap := topology.FromCatalog(dbs)
			c.Logger.Debug("catalog captured", "databases", len(dbs), "nodes", snap.NodeCount(), "edges", snap.EdgeCount())
			return c.writeSnapshot(snap, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) writeSnapshot(snap topology.Snapshot, output string) error {
	w, closeFn, err := c.createOutput(output)
	if err != nil {
		return err
	}
	if err := topology.WriteSnapshot(snap, w); err != nil {
		closeFn()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := closeFn(); err != nil {
		return err
	}
	if output != "" && output != "-" {
		printSuccess("Snapshot written: %d nodes, %d edges", snap.NodeCount(), snap.EdgeCount())
		printFile(output)
	}
	return nil
}
