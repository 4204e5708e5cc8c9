package highlight

import (
	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/layout"
)

// Base returns the unhighlighted state of a layout: every node at full
// opacity and every edge exactly as styled by the layout.
func Base(res *layout.Result) State {
	st := State{
		Nodes: make(map[topology.NodeID]NodeVisual, len(res.Nodes)),
		Edges: make(map[string]EdgeVisual, len(res.Edges)),
	}
	for _, n := range res.Nodes {
		st.Nodes[n.Node.ID] = NodeVisual{Opacity: OpacityFull, TransitionMs: TransitionMs}
	}
	for _, e := range res.Edges {
		st.Edges[e.Key()] = baseEdge(e.Style)
	}
	return st
}

func baseEdge(s layout.EdgeStyle) EdgeVisual {
	return EdgeVisual{
		Stroke:       s.Stroke,
		StrokeWidth:  s.StrokeWidth,
		Opacity:      OpacityFull,
		Animated:     s.Animated,
		TransitionMs: TransitionMs,
	}
}

// Compute returns the state of a layout with focus hovered. It fails with
// STALE_FOCUS_NODE if focus is not part of the layout.
func Compute(focus topology.NodeID, res *layout.Result) (State, error) {
	return compute(focus, res, IndexResult(res))
}

func compute(focus topology.NodeID, res *layout.Result, idx *Index) (State, error) {
	if !idx.Has(focus) {
		return State{}, errors.New(errors.ErrCodeStaleFocusNode, "node %q is not in the current topology", focus)
	}

	st := Base(res)
	st.Focus = focus
	st.Ancestors = idx.Ancestors(focus)
	st.Descendants = idx.Descendants(focus)

	// An isolated node dims nothing, including itself.
	if len(st.Ancestors) == 0 && len(st.Descendants) == 0 {
		return st, nil
	}

	anc := toSet(st.Ancestors)
	desc := toSet(st.Descendants)
	for id, v := range st.Nodes {
		if id != focus && !anc[id] && !desc[id] {
			v.Opacity = OpacityDimmed
			st.Nodes[id] = v
		}
	}

	for _, e := range res.Edges {
		key := e.Key()
		v := st.Edges[key]
		a, b := e.Edge.Source.Node(), e.Edge.Target.Node()
		incoming := anc[a] && (anc[b] || b == focus)
		outgoing := desc[b] && (desc[a] || a == focus)
		if incoming || outgoing {
			v.StrokeWidth = e.Style.StrokeWidth + 1
			v.Animated = true
		} else {
			v.Opacity = OpacityDimmed
		}
		st.Edges[key] = v
	}
	return st, nil
}

func toSet(ids []topology.NodeID) map[topology.NodeID]bool {
	set := make(map[topology.NodeID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
