// Package layout positions a replication snapshot as a top-down tree and
// attaches a base style to every edge.
//
// # Overview
//
// [Build] is a pure function of a [topology.Snapshot]. It never mutates its
// input and every call produces a fresh [Result]:
//
//	res, err := layout.Build(snapshot)
//	if err != nil {
//	    return err // only with WithStrictSingleRoot
//	}
//	for _, d := range res.Diagnostics {
//	    logger.Warn("layout", "code", d.Code, "msg", d.Message)
//	}
//
// # Hierarchy
//
// A node's parent is the source of the first edge (in input order) that
// targets it, after composite endpoint ids are reduced to node ids. Nodes
// without a parent edge are roots. Several roots are laid out as a forest of
// independent trees, side by side, unless [WithStrictSingleRoot] is given.
// Parent links that close a cycle are cut at the first affected node, which
// then becomes a root.
//
// # Positions
//
// Sibling subtrees are packed left to right so that the horizontal extent of
// one subtree ends at least one node width before the next begins, and each
// parent is centred over its first and last child. Depth d sits at
// y = d × node height. Reported positions are the top-left corner of the
// node box, i.e. the layout coordinate minus half the box size.
//
// # Edge styles
//
// Edge anchors, colours, widths, animation and markers depend only on the
// edge kind; see [StyleFor].
//
// # Diagnostics
//
// Local faults never abort a layout. Edges with unknown endpoints are
// dropped, duplicate nodes are ignored, unknown edge kinds fall back to the
// unidirectional style, and each case is recorded as a [Diagnostic].
package layout
