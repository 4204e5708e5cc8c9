// Package nodelink renders a laid-out replication topology as a node-link
// diagram.
//
// # Usage
//
// Convert a layout (and optionally a hover state) to DOT, then render:
//
//	dot := nodelink.ToDOT(res, &state, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Placement
//
// Nodes are pinned at the positions computed by the layout package and the
// graph is rendered with the neato engine, so Graphviz only routes edges.
// Layout units are scaled by [Options.Scale] to points.
//
// # Styling
//
// Node fill follows the dashboard legend: primary sources, replication
// sources and plain replicas each have their own colour. Edge colour, width
// and arrowheads come from the layout's edge style. When a highlight state
// is given, its opacities become colour alpha and its stroke widths
// override the base widths.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
