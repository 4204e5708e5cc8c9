// Package highlight computes the visual state of a laid-out topology while a
// node is hovered.
//
// Hovering a node keeps the node, all of its ancestors and all of its
// descendants at full opacity and dims everything else. Edges along the
// ancestor and descendant paths are thickened and animated. Leaving the node
// restores the base state of the layout exactly.
//
// [Compute] and [Base] are pure functions of a [layout.Result]. [Highlighter]
// wraps them in a two-state machine (idle or focused) for one viewer:
//
//	h := highlight.New(res)
//	st, err := h.HoverEnter("db-replica-2")
//	if errors.Is(err, errors.ErrCodeStaleFocusNode) {
//	    // the node vanished in a newer snapshot; st is the previous state
//	}
//	st = h.HoverLeave()
//
// A Highlighter is not safe for concurrent use.
package highlight
