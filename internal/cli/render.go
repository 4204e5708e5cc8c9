package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topograph/internal/config"
	"github.com/matzehuels/topograph/pkg/cache"
	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/render"
	"github.com/matzehuels/topograph/pkg/render/nodelink"
	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/highlight"
	"github.com/matzehuels/topograph/pkg/topology/layout"
)

// Output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

var validFormats = map[string]bool{formatDOT: true, formatSVG: true, formatPDF: true, formatPNG: true}

// renderCacheTTL bounds how long a rendered diagram is reused.
const renderCacheTTL = 7 * 24 * time.Hour

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string
	format      string
	focus       string
	detailed    bool
	transparent bool
	scale       float64 // points per layout unit
	pngScale    float64 // rasterisation scale for png
	noCache     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts = renderOpts{scale: nodelink.DefaultScale, pngScale: 2}
		lf   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "render [snapshot.json]",
		Short: "Draw the topology as DOT, SVG, PDF or PNG",
		Long: `Draw the topology as DOT, SVG, PDF or PNG.

Nodes are pinned at their layout positions and coloured by role (primary
source, replication source, replica). With --focus the diagram shows the
hover state for that node. PDF and PNG output requires rsvg-convert.
Rendered SVG, PDF and PNG output is cached under $XDG_CACHE_HOME/topograph
and reused while the diagram source is unchanged.

The format defaults to the extension of --output, or svg.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			if opts.focus != "" {
				if err := errors.ValidateNodeID(opts.focus); err != nil {
					return err
				}
			}
			res, err := c.buildLayout(cmd, args, &lf)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), res, format, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), dot, pdf, png")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "render the hover state of this node")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add host and replication status to labels")
	cmd.Flags().BoolVar(&opts.transparent, "transparent", false, "omit the background")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "points per layout unit")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", opts.pngScale, "rasterisation scale for png output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	lf.register(cmd)

	return cmd
}

// resolveFormat picks the explicit format, else the output extension, else svg.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if !validFormats[format] {
			format = formatSVG
		}
	}
	if !validFormats[format] {
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'dot', 'svg', 'pdf', or 'png')", format)
	}
	return format, nil
}

func (c *CLI) runRender(ctx context.Context, res *layout.Result, format string, opts *renderOpts) error {
	var st *highlight.State
	if opts.focus != "" {
		s, err := highlight.Compute(topology.NodeID(opts.focus), res)
		if err != nil {
			return err
		}
		st = &s
	}

	rc, err := newRenderCache(opts.noCache)
	if err != nil {
		return err
	}
	defer rc.Close()

	toFile := opts.output != "" && opts.output != "-"
	var spinner *Spinner
	if toFile && format != formatDOT {
		spinner = newSpinner(ctx, fmt.Sprintf("Rendering %s...", format))
		spinner.Start()
	}

	data, err := renderCached(ctx, rc, res, st, format, opts)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Render failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Stop()
	}

	if !toFile {
		_, err := c.Out.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	loggerFromContext(ctx).Debugf("Generated %s: %d bytes", format, len(data))
	printSuccess("Rendered %s", format)
	printStats(res)
	printDiagnostics(res)
	printFile(opts.output)
	return nil
}

// newRenderCache opens the local cache for rendered diagrams.
func newRenderCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NullCache{}, nil
	}
	dir, err := config.CacheDir()
	if err != nil {
		return cache.NullCache{}, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.Instrumented(fc), nil
}

// renderCached returns the bytes for one output format. Anything but DOT is
// looked up by the digest of the DOT source, format and png scale, and
// stored after a miss.
func renderCached(ctx context.Context, rc cache.Cache, res *layout.Result, st *highlight.State, format string, opts *renderOpts) ([]byte, error) {
	dot := nodelink.ToDOT(res, st, nodelink.Options{
		Scale:       opts.scale,
		Detailed:    opts.detailed,
		Transparent: opts.transparent,
	})
	if format == formatDOT {
		return []byte(dot), nil
	}

	logger := loggerFromContext(ctx)
	key := cache.NewKeys("").Render(renderDigest(dot, format, opts.pngScale))
	if data, ok, err := rc.Get(ctx, key); err != nil {
		logger.Warn("read render cache", "err", err)
	} else if ok {
		logger.Debug("render cache hit", "format", format)
		return data, nil
	}

	data, err := renderDOT(ctx, dot, format, opts)
	if err != nil {
		return nil, err
	}
	if err := rc.Set(ctx, key, data, renderCacheTTL); err != nil {
		logger.Warn("write render cache", "err", err)
	}
	return data, nil
}

func renderDigest(dot, format string, pngScale float64) string {
	return cache.HashParts([]byte(dot), []byte(format), []byte(strconv.FormatFloat(pngScale, 'g', -1, 64)))
}

// renderDOT converts DOT source to svg, pdf or png.
func renderDOT(ctx context.Context, dot, format string, opts *renderOpts) ([]byte, error) {
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render svg")
	}

	switch format {
	case formatPDF:
		out, err := render.ToPDF(ctx, svg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "convert to pdf")
		}
		return out, nil
	case formatPNG:
		out, err := render.ToPNG(ctx, svg, opts.pngScale)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "convert to png")
		}
		return out, nil
	default:
		return svg, nil
	}
}
