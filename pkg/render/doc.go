// Package render turns laid-out topologies into images.
//
// The [nodelink] subpackage produces Graphviz DOT with every node pinned at
// its computed position and renders it to SVG in-process. [ToPDF] and
// [ToPNG] convert that SVG using the external rsvg-convert tool (from
// librsvg).
//
//	dot := nodelink.ToDOT(res, nil, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
package render
