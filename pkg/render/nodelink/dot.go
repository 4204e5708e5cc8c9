package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/highlight"
	"github.com/matzehuels/topograph/pkg/topology/layout"
)

// Legend colours.
const (
	ColorPrimarySource     = "#b44e4e"
	ColorReplicationSource = "#24a148"
	ColorReplica           = "#ff832b"
	ColorBackground        = "#161616"
)

// DefaultScale converts layout units to points.
const DefaultScale = 0.5

// Options configures diagram generation.
type Options struct {
	// Scale converts layout units to points. Zero means DefaultScale.
	Scale float64

	// Detailed adds host and replication status to node labels.
	Detailed bool

	// Transparent omits the dark background.
	Transparent bool
}

// RoleColor returns the legend fill for a node role.
func RoleColor(r topology.Role) string {
	switch r {
	case topology.RolePrimarySource:
		return ColorPrimarySource
	case topology.RoleReplicationSource:
		return ColorReplicationSource
	default:
		return ColorReplica
	}
}

// ToDOT converts a layout to Graphviz DOT. A nil state renders the base
// styles.
func ToDOT(res *layout.Result, st *highlight.State, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	nodeW := res.NodeWidth * 0.8 * scale / 72
	nodeH := res.NodeHeight * 0.35 * scale / 72

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	if opts.Transparent {
		buf.WriteString("  bgcolor=\"transparent\";\n")
	} else {
		fmt.Fprintf(&buf, "  bgcolor=%q;\n", ColorBackground)
	}
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontcolor=white, fontsize=14, fixedsize=true, width=%s, height=%s];\n",
		ftoa(nodeW), ftoa(nodeH))
	buf.WriteString("  edge [arrowsize=0.8];\n")
	buf.WriteString("\n")

	for _, n := range res.Nodes {
		opacity := highlight.OpacityFull
		if st != nil {
			if v, ok := st.Node(n.Node.ID); ok {
				opacity = v.Opacity
			}
		}
		// Box centre; Graphviz y grows upwards.
		x := (n.Position.X + res.NodeWidth/2) * scale
		y := 0 - (n.Position.Y+res.NodeHeight/2)*scale
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n.Node, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", ftoa(x), ftoa(y)),
			fmt.Sprintf("fillcolor=%q", withAlpha(RoleColor(n.Node.Role()), opacity)),
			fmt.Sprintf("color=%q", withAlpha(RoleColor(n.Node.Role()), opacity)),
			fmt.Sprintf("fontcolor=%q", withAlpha("#ffffff", opacity)),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Node.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range res.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Edge.Source.Node(), e.Edge.Target.Node(), strings.Join(edgeAttrs(e, st), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n topology.GraphNode, detailed bool) string {
	if !detailed {
		return n.Label()
	}
	parts := []string{n.Label()}
	if n.Host != "" {
		parts = append(parts, n.Host)
	}
	if n.Source != "" {
		status := "stopped"
		if n.ReplicationRunning {
			status = "running"
		}
		parts = append(parts, fmt.Sprintf("source: %s (%s)", n.Source, status))
	}
	return strings.Join(parts, "\n")
}

func edgeAttrs(e layout.StyledEdge, st *highlight.State) []string {
	stroke, width, opacity, animated := e.Style.Stroke, e.Style.StrokeWidth, highlight.OpacityFull, e.Style.Animated
	if st != nil {
		if v, ok := st.Edge(e.Key()); ok {
			stroke, width, opacity, animated = v.Stroke, v.StrokeWidth, v.Opacity, v.Animated
		}
	}
	attrs := []string{
		fmt.Sprintf("id=%q", e.Key()),
		fmt.Sprintf("color=%q", withAlpha(stroke, opacity)),
		fmt.Sprintf("penwidth=%s", ftoa(width)),
		fmt.Sprintf("arrowhead=%s", arrow(e.Style.MarkerEnd)),
	}
	if e.Style.MarkerStart != nil {
		attrs = append(attrs, "dir=both", fmt.Sprintf("arrowtail=%s", arrow(e.Style.MarkerStart)))
	}
	if animated {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

func arrow(m *layout.Marker) string {
	switch {
	case m == nil:
		return "none"
	case m.Type == layout.MarkerArrowClosed:
		return "normal"
	default:
		return "vee"
	}
}

// withAlpha appends an alpha channel to a #rrggbb colour. Full opacity and
// colours in other formats are returned unchanged.
func withAlpha(color string, opacity float64) string {
	if opacity >= 1 || len(color) != 7 || color[0] != '#' {
		return color
	}
	a := int(math.Round(math.Max(opacity, 0) * 255))
	return fmt.Sprintf("%s%02x", strings.ToLower(color), a)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT produced by [ToDOT] to SVG using the neato engine,
// which keeps pinned node positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-size svg tag with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
