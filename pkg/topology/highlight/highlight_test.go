package highlight

import (
	"maps"
	"slices"
	"testing"

	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/layout"
)

func snapshot(nodes []string, edges ...[3]string) topology.Snapshot {
	var s topology.Snapshot
	for _, id := range nodes {
		s.Nodes = append(s.Nodes, topology.GraphNode{ID: topology.NodeID(id)})
	}
	for _, e := range edges {
		s.Edges = append(s.Edges, topology.GraphEdge{
			ID:     e[0] + "-" + e[1],
			Source: topology.EndpointID(e[0]),
			Target: topology.EndpointID(e[1]),
			Kind:   topology.EdgeKind(e[2]),
		})
	}
	return s
}

func build(t *testing.T, s topology.Snapshot) *layout.Result {
	t.Helper()
	res, err := layout.Build(s)
	if err != nil {
		t.Fatalf("layout.Build: %v", err)
	}
	return res
}

const uni = string(topology.EdgeUnidirectional)
const bi = string(topology.EdgeBidirectional)

// abc is A -> B, A -> C.
func abc(t *testing.T) *layout.Result {
	return build(t, snapshot([]string{"A", "B", "C"}, [3]string{"A", "B", uni}, [3]string{"A", "C", uni}))
}

func TestComputeHoverLeaf(t *testing.T) {
	res := abc(t)
	st, err := Compute("B", res)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	wantNodes := map[topology.NodeID]float64{"A": OpacityFull, "B": OpacityFull, "C": OpacityDimmed}
	for id, want := range wantNodes {
		if got := st.Nodes[id].Opacity; got != want {
			t.Errorf("node %s opacity = %v, want %v", id, got, want)
		}
	}

	ab := st.Edges["A-B"]
	if ab.Opacity != OpacityFull || ab.StrokeWidth != 2 || !ab.Animated {
		t.Errorf("A-B = %+v, want on-path (opacity 1, width 2, animated)", ab)
	}
	ac := st.Edges["A-C"]
	if ac.Opacity != OpacityDimmed || ac.StrokeWidth != 1 || ac.Animated {
		t.Errorf("A-C = %+v, want off-path (opacity 0.25, width 1, not animated)", ac)
	}
	if !slices.Equal(st.Ancestors, []topology.NodeID{"A"}) || len(st.Descendants) != 0 {
		t.Errorf("ancestors/descendants = %v/%v, want [A]/[]", st.Ancestors, st.Descendants)
	}
	if ab.TransitionMs != TransitionMs || st.Nodes["C"].TransitionMs != TransitionMs {
		t.Error("derived visuals must carry the transition duration")
	}
}

func TestComputeHoverRoot(t *testing.T) {
	res := abc(t)
	st, err := Compute("A", res)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, id := range []topology.NodeID{"A", "B", "C"} {
		if st.Nodes[id].Opacity != OpacityFull {
			t.Errorf("node %s dimmed", id)
		}
	}
	for key, e := range st.Edges {
		if e.Opacity != OpacityFull || e.StrokeWidth != 2 || !e.Animated {
			t.Errorf("edge %s = %+v, want on-path", key, e)
		}
	}
}

func TestComputeKeepsKindStroke(t *testing.T) {
	res := build(t, snapshot([]string{"A", "B", "C"},
		[3]string{"A", "B", bi},
		[3]string{"A", "C", uni},
	))
	st, err := Compute("B", res)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got := st.Edges["A-B"]; got.Stroke != layout.ColorAccent || got.StrokeWidth != 3 {
		t.Errorf("A-B = %+v, want accent stroke of width 3", got)
	}
	if got := st.Edges["A-C"]; got.Stroke != layout.ColorNeutral {
		t.Errorf("A-C stroke = %s, want %s", got.Stroke, layout.ColorNeutral)
	}
}

func TestComputeIsolatedNodeDimsNothing(t *testing.T) {
	res := build(t, snapshot([]string{"A", "B", "lonely"}, [3]string{"A", "B", uni}))
	st, err := Compute("lonely", res)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	base := Base(res)
	if !maps.Equal(st.Nodes, base.Nodes) || !maps.Equal(st.Edges, base.Edges) {
		t.Errorf("isolated focus changed visuals:\n got %+v\nbase %+v", st, base)
	}
	if st.Focus != "lonely" {
		t.Errorf("Focus = %q, want lonely", st.Focus)
	}
}

func TestComputeCompositeEndpoints(t *testing.T) {
	s := snapshot([]string{"A", "B"})
	s.Edges = []topology.GraphEdge{{
		ID:     "A__ch-B__ch",
		Source: topology.ChannelEndpoint("A", "ch"),
		Target: topology.ChannelEndpoint("B", "ch"),
		Kind:   topology.EdgeUnidirectional,
	}}
	st, err := Compute("B", build(t, s))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if e := st.Edges["A__ch-B__ch"]; e.Opacity != OpacityFull || !e.Animated {
		t.Errorf("composite edge = %+v, want on-path", e)
	}
}

func TestComputeStaleFocus(t *testing.T) {
	_, err := Compute("ghost", abc(t))
	if !errors.Is(err, errors.ErrCodeStaleFocusNode) {
		t.Errorf("Compute(ghost) error = %v, want STALE_FOCUS_NODE", err)
	}
}

func TestComputeCycleTerminates(t *testing.T) {
	res := build(t, snapshot([]string{"A", "B", "C"},
		[3]string{"A", "B", bi},
		[3]string{"B", "A", bi},
		[3]string{"B", "C", uni},
		[3]string{"C", "A", uni},
	))
	st, err := Compute("A", res)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want := []topology.NodeID{"B", "C"}
	if !slices.Equal(st.Ancestors, want) || !slices.Equal(st.Descendants, want) {
		t.Errorf("ancestors/descendants = %v/%v, want %v", st.Ancestors, st.Descendants, want)
	}
}

func TestBaseMatchesLayoutStyle(t *testing.T) {
	res := build(t, snapshot([]string{"A", "B"}, [3]string{"A", "B", bi}))
	st := Base(res)
	style, _ := layout.StyleFor(topology.EdgeBidirectional)
	got := st.Edges["A-B"]
	if got.Stroke != style.Stroke || got.StrokeWidth != style.StrokeWidth || got.Animated != style.Animated || got.Opacity != OpacityFull {
		t.Errorf("base edge = %+v, want %+v at full opacity", got, style)
	}
	if st.Focused() {
		t.Error("base state is focused")
	}
}

func TestHighlighterResetIdempotent(t *testing.T) {
	res := abc(t)
	h := New(res)
	base := h.State()

	if _, err := h.HoverEnter("C"); err != nil {
		t.Fatalf("HoverEnter: %v", err)
	}
	first := h.HoverLeave()
	second := h.HoverLeave()
	if !first.Equal(base) || !second.Equal(base) {
		t.Errorf("HoverLeave did not restore the base state")
	}
	if _, ok := h.Focus(); ok {
		t.Error("Focus() reports a focus after HoverLeave")
	}
}

func TestHighlighterStaleFocusKeepsState(t *testing.T) {
	h := New(abc(t))
	before, err := h.HoverEnter("B")
	if err != nil {
		t.Fatalf("HoverEnter: %v", err)
	}
	got, err := h.HoverEnter("gone")
	if !errors.Is(err, errors.ErrCodeStaleFocusNode) {
		t.Fatalf("HoverEnter(gone) error = %v, want STALE_FOCUS_NODE", err)
	}
	if !got.Equal(before) || !h.State().Equal(before) {
		t.Error("stale hover changed the state")
	}
	if id, ok := h.Focus(); !ok || id != "B" {
		t.Errorf("Focus() = %q, %v, want B, true", id, ok)
	}
}

func TestHighlighterReturnsIndependentStates(t *testing.T) {
	h := New(abc(t))
	st, _ := h.HoverEnter("B")
	st.Nodes["C"] = NodeVisual{Opacity: 0.5}
	st.Edges["A-B"] = EdgeVisual{}
	if got := h.State().Nodes["C"].Opacity; got != OpacityDimmed {
		t.Errorf("internal state shared with caller: C opacity = %v", got)
	}
	leave := h.HoverLeave()
	leave.Nodes["A"] = NodeVisual{}
	if h.State().Nodes["A"].Opacity != OpacityFull {
		t.Error("base state shared with caller")
	}
}

func TestComputeDoesNotMutateLayout(t *testing.T) {
	res := abc(t)
	before := make([]layout.EdgeStyle, len(res.Edges))
	for i, e := range res.Edges {
		before[i] = e.Style
	}
	if _, err := Compute("B", res); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, e := range res.Edges {
		if e.Style.StrokeWidth != before[i].StrokeWidth || e.Style.Animated != before[i].Animated {
			t.Errorf("edge %s style changed", e.Key())
		}
	}
}

func TestComputeParallelKeylessEdges(t *testing.T) {
	res := build(t, topology.Snapshot{
		Nodes: []topology.GraphNode{{ID: "A"}, {ID: "B"}},
		Edges: []topology.GraphEdge{
			{Source: "A", Target: "B", Kind: topology.EdgeUnidirectional},
			{Source: "A", Target: "B", Kind: topology.EdgeBidirectional},
		},
	})

	base := Base(res)
	if len(base.Edges) != 2 {
		t.Fatalf("base edges = %v, want 2 entries", base.Edges)
	}
	if got := base.Edges["A-B#2"].Stroke; got != layout.ColorAccent {
		t.Errorf("bidirectional base stroke = %s, want %s", got, layout.ColorAccent)
	}

	st, err := Compute("A", res)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	tests := []struct {
		key    string
		stroke string
		width  float64
	}{
		{"A-B", layout.ColorNeutral, 2},
		{"A-B#2", layout.ColorAccent, 3},
	}
	for _, tt := range tests {
		v, ok := st.Edge(tt.key)
		if !ok {
			t.Errorf("edge %s missing from state", tt.key)
			continue
		}
		if v.Stroke != tt.stroke || v.StrokeWidth != tt.width || !v.Animated {
			t.Errorf("edge %s = %+v, want stroke %s width %v animated", tt.key, v, tt.stroke, tt.width)
		}
	}
}
