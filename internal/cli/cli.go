package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topograph/internal/config"
	"github.com/matzehuels/topograph/pkg/buildinfo"
	"github.com/matzehuels/topograph/pkg/cache"
	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/source"
	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/layout"
	"github.com/matzehuels/topograph/pkg/view"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output (JSON, DOT, status lines).
	Out io.Writer

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Topograph lays out and explores replication topologies",
		Long: `Topograph turns a snapshot of database replication links into a
positioned tree diagram and lets viewers trace the replication path of any
node by hovering it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			registerLogHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/topograph/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.highlightCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration & Sources
// =============================================================================

// loadConfig reads the configuration file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "source", cfg.Source.Kind, "path", c.configPath)
	return cfg, nil
}

// openCache opens the cache backing a cache-backed source kind.
func openCache(ctx context.Context, cfg config.SourceConfig) (cache.Cache, error) {
	switch cfg.Kind {
	case config.SourceRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSource, err, "connect to redis at %s", cfg.RedisAddr)
		}
		return cache.Instrumented(rc), nil
	case config.SourceCacheDir:
		fc, err := cache.NewFileCache(cfg.Path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSource, err, "open cache directory %s", cfg.Path)
		}
		return cache.Instrumented(fc), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "source kind %q is not cache-backed", cfg.Kind)
	}
}

// openSource builds the configured snapshot source. The returned close
// function releases any cache connection.
func openSource(ctx context.Context, cfg config.SourceConfig) (source.Source, func() error, error) {
	if cfg.Kind == config.SourceFile {
		return source.NewFileSource(cfg.Path), func() error { return nil }, nil
	}
	c, err := openCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	name := fmt.Sprintf("%s:%s", cfg.Kind, cfg.Path)
	if cfg.Kind == config.SourceRedis {
		name = fmt.Sprintf("%s:%s", cfg.Kind, cfg.RedisAddr)
	}
	src := source.NewCacheSource(c, cache.NewKeys(cfg.KeyPrefix), source.WithName(name))
	return src, c.Close, nil
}

// loadSnapshot reads the snapshot named on the command line, or the
// configured source when no file is given.
func (c *CLI) loadSnapshot(ctx context.Context, cfg config.Config, args []string) (topology.Snapshot, error) {
	if len(args) > 0 {
		return source.NewFileSource(args[0]).Load(ctx)
	}
	src, closeFn, err := openSource(ctx, cfg.Source)
	if err != nil {
		return topology.Snapshot{}, err
	}
	defer closeFn()
	c.Logger.Debug("loading snapshot", "source", src.Name())
	return src.Load(ctx)
}

// =============================================================================
// Output
// =============================================================================

// createOutput opens path for writing, or returns c.Out when path is empty
// or "-".
func (c *CLI) createOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return c.Out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}

// Execute runs the CLI with the given arguments.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// =============================================================================
// Shared Flags
// =============================================================================

// layoutFlags are the layout overrides shared by every command that builds
// a layout.
type layoutFlags struct {
	nodeWidth  float64
	nodeHeight float64
	strict     bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.nodeWidth, "node-width", layout.DefaultNodeWidth, "node width in layout units")
	cmd.Flags().Float64Var(&f.nodeHeight, "node-height", layout.DefaultNodeHeight, "node height (depth spacing) in layout units")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail when the graph has more than one root")
}

// apply overlays flags the user set onto the configured layout.
func (f *layoutFlags) apply(cmd *cobra.Command, cfg *config.LayoutConfig) {
	if cmd.Flags().Changed("node-width") {
		cfg.NodeWidth = f.nodeWidth
	}
	if cmd.Flags().Changed("node-height") {
		cfg.NodeHeight = f.nodeHeight
	}
	if cmd.Flags().Changed("strict") {
		cfg.StrictSingleRoot = f.strict
	}
}

// buildLayout loads config and snapshot and lays the snapshot out.
func (c *CLI) buildLayout(cmd *cobra.Command, args []string, lf *layoutFlags) (*layout.Result, error) {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	lf.apply(cmd, &cfg.Layout)

	prog := newProgress(c.Logger)
	snap, err := c.loadSnapshot(ctx, cfg, args)
	if err != nil {
		return nil, err
	}
	res, err := view.Layout(ctx, snap, c.Logger, cfg.Layout.Options()...)
	if err != nil {
		return nil, err
	}
	prog.debug(fmt.Sprintf("Laid out %d nodes, %d edges", len(res.Nodes), len(res.Edges)))
	return res, nil
}
