package layout

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/topology"
)

func node(id string) topology.GraphNode {
	return topology.GraphNode{ID: topology.NodeID(id), ShortName: id}
}

func edge(src, dst string, kind topology.EdgeKind) topology.GraphEdge {
	return topology.GraphEdge{
		ID:     src + "-" + dst,
		Source: topology.EndpointID(src),
		Target: topology.EndpointID(dst),
		Kind:   kind,
	}
}

func mustBuild(t *testing.T, s topology.Snapshot, opts ...Option) *Result {
	t.Helper()
	res, err := Build(s, opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res
}

func position(t *testing.T, res *Result, id string) Position {
	t.Helper()
	n, ok := res.Node(topology.NodeID(id))
	if !ok {
		t.Fatalf("node %q missing from layout", id)
	}
	return n.Position
}

func hasDiag(res *Result, code errors.Code) bool {
	for _, d := range res.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestBuildSimpleTree(t *testing.T) {
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("A"), node("B"), node("C")},
		Edges: []topology.GraphEdge{
			edge("A", "B", topology.EdgeUnidirectional),
			edge("A", "C", topology.EdgeUnidirectional),
		},
	}
	res := mustBuild(t, s)

	tests := []struct {
		id   string
		want Position
	}{
		{"A", Position{X: -142.5, Y: -130}},
		{"B", Position{X: -285, Y: 130}},
		{"C", Position{X: 0, Y: 130}},
	}
	for _, tt := range tests {
		if got := position(t, res, tt.id); got != tt.want {
			t.Errorf("position(%s) = %+v, want %+v", tt.id, got, tt.want)
		}
	}
	if len(res.Roots) != 1 || res.Roots[0] != "A" {
		t.Errorf("Roots = %v, want [A]", res.Roots)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %v, want none", res.Diagnostics)
	}
	if b, _ := res.Node("B"); b.Parent != "A" || b.Depth != 1 {
		t.Errorf("B parent/depth = %s/%d, want A/1", b.Parent, b.Depth)
	}
}

func TestBuildEmpty(t *testing.T) {
	res := mustBuild(t, topology.Snapshot{})
	if len(res.Nodes) != 0 || len(res.Edges) != 0 || len(res.Roots) != 0 {
		t.Errorf("empty snapshot produced %d nodes, %d edges, %d roots", len(res.Nodes), len(res.Edges), len(res.Roots))
	}
}

func TestBuildSingleNode(t *testing.T) {
	res := mustBuild(t, topology.Snapshot{Nodes: []topology.GraphNode{node("solo")}})
	if got, want := position(t, res, "solo"), (Position{X: -142.5, Y: -130}); got != want {
		t.Errorf("position = %+v, want %+v", got, want)
	}
}

func TestBuildCompositeEndpoints(t *testing.T) {
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("db1"), node("db2")},
		Edges: []topology.GraphEdge{{
			ID:     "db1-db2__ch1",
			Source: topology.Endpoint("db1"),
			Target: topology.ChannelEndpoint("db2", "ch1"),
			Kind:   topology.EdgeUnidirectional,
		}},
	}
	res := mustBuild(t, s)
	if len(res.Edges) != 1 {
		t.Fatalf("len(Edges) = %d, want 1", len(res.Edges))
	}
	if n, _ := res.Node("db2"); n.Parent != "db1" {
		t.Errorf("db2 parent = %q, want db1", n.Parent)
	}
	if hasDiag(res, errors.ErrCodeDanglingEdge) {
		t.Error("composite endpoint reported as dangling")
	}
}

func TestBuildForest(t *testing.T) {
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("A"), node("B"), node("X"), node("Y")},
		Edges: []topology.GraphEdge{
			edge("A", "B", topology.EdgeUnidirectional),
			edge("X", "Y", topology.EdgeUnidirectional),
		},
	}
	res := mustBuild(t, s)
	if len(res.Roots) != 2 {
		t.Fatalf("Roots = %v, want 2 roots", res.Roots)
	}
	if !hasDiag(res, errors.ErrCodeMultiRootGraph) {
		t.Error("missing MULTI_ROOT_GRAPH diagnostic")
	}
	a, x := position(t, res, "A"), position(t, res, "X")
	if a.X+DefaultNodeWidth > x.X {
		t.Errorf("trees overlap: A.x = %v, X.x = %v", a.X, x.X)
	}
	if a.Y != x.Y {
		t.Errorf("roots at different depths: %v vs %v", a.Y, x.Y)
	}
}

func TestBuildStrictSingleRoot(t *testing.T) {
	s := topology.Snapshot{Nodes: []topology.GraphNode{node("A"), node("B")}}
	_, err := Build(s, WithStrictSingleRoot())
	if !errors.Is(err, errors.ErrCodeMultiRootGraph) {
		t.Errorf("Build() error = %v, want MULTI_ROOT_GRAPH", err)
	}

	one := topology.Snapshot{
		Nodes: []topology.GraphNode{node("A"), node("B")},
		Edges: []topology.GraphEdge{edge("A", "B", topology.EdgeUnidirectional)},
	}
	if _, err := Build(one, WithStrictSingleRoot()); err != nil {
		t.Errorf("Build(single root) error = %v", err)
	}
}

func TestBuildCycle(t *testing.T) {
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("A"), node("B"), node("C")},
		Edges: []topology.GraphEdge{
			edge("A", "B", topology.EdgeBidirectional),
			edge("B", "A", topology.EdgeBidirectional),
			edge("B", "C", topology.EdgeUnidirectional),
		},
	}
	res := mustBuild(t, s)
	if !hasDiag(res, errors.ErrCodeCyclicHierarchy) {
		t.Error("missing CYCLIC_HIERARCHY diagnostic")
	}
	if len(res.Roots) != 1 || res.Roots[0] != "A" {
		t.Errorf("Roots = %v, want [A]", res.Roots)
	}
	if len(res.Nodes) != 3 || len(res.Edges) != 3 {
		t.Errorf("layout has %d nodes and %d edges, want 3 and 3", len(res.Nodes), len(res.Edges))
	}
	if c, _ := res.Node("C"); c.Depth != 2 {
		t.Errorf("C depth = %d, want 2", c.Depth)
	}
}

func TestBuildCycleBelowRoot(t *testing.T) {
	// R is a proper root; X and Y only point at each other.
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("R"), node("Z"), node("X"), node("Y")},
		Edges: []topology.GraphEdge{
			edge("X", "Y", topology.EdgeUnidirectional),
			edge("Y", "X", topology.EdgeUnidirectional),
			edge("Y", "Z", topology.EdgeUnidirectional),
		},
	}
	res := mustBuild(t, s)
	want := []topology.NodeID{"R", "X"}
	if len(res.Roots) != len(want) || res.Roots[0] != want[0] || res.Roots[1] != want[1] {
		t.Errorf("Roots = %v, want %v", res.Roots, want)
	}
	if z, _ := res.Node("Z"); z.Parent != "Y" || z.Depth != 2 {
		t.Errorf("Z parent/depth = %s/%d, want Y/2", z.Parent, z.Depth)
	}
}

func TestBuildDanglingEdge(t *testing.T) {
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("A"), node("B")},
		Edges: []topology.GraphEdge{
			edge("A", "B", topology.EdgeUnidirectional),
			edge("A", "ghost", topology.EdgeUnidirectional),
		},
	}
	res := mustBuild(t, s)
	if len(res.Edges) != 1 {
		t.Errorf("len(Edges) = %d, want 1", len(res.Edges))
	}
	if _, ok := res.Edge("A-ghost"); ok {
		t.Error("dangling edge kept")
	}
	var found bool
	for _, d := range res.Diagnostics {
		if d.Code == errors.ErrCodeDanglingEdge && d.EdgeID == "A-ghost" {
			found = true
		}
	}
	if !found {
		t.Errorf("Diagnostics = %v, want DANGLING_EDGE for A-ghost", res.Diagnostics)
	}
}

func TestBuildParallelKeylessEdges(t *testing.T) {
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("A"), node("B")},
		Edges: []topology.GraphEdge{
			{Source: "A", Target: "B", Kind: topology.EdgeUnidirectional},
			{Source: "A", Target: "B", Kind: topology.EdgeBidirectional},
		},
	}
	res := mustBuild(t, s)
	if len(res.Edges) != 2 {
		t.Fatalf("len(Edges) = %d, want 2", len(res.Edges))
	}
	if k0, k1 := res.Edges[0].Key(), res.Edges[1].Key(); k0 != "A-B" || k1 != "A-B#2" {
		t.Errorf("keys = %q, %q, want A-B, A-B#2", k0, k1)
	}
	if e, ok := res.Edge("A-B#2"); !ok || e.Edge.Kind != topology.EdgeBidirectional {
		t.Errorf("Edge(A-B#2) = %+v, %v, want the bidirectional edge", e.Edge, ok)
	}
	if !hasDiag(res, errors.ErrCodeDuplicateEdge) {
		t.Errorf("Diagnostics = %v, want DUPLICATE_EDGE", res.Diagnostics)
	}
}

func TestBuildEdgeKeyCollision(t *testing.T) {
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("A-B"), node("C"), node("A"), node("B-C")},
		Edges: []topology.GraphEdge{
			{Source: "A-B", Target: "C", Kind: topology.EdgeUnidirectional},
			{Source: "A", Target: "B-C", Kind: topology.EdgeUnidirectional},
		},
	}
	res := mustBuild(t, s)
	seen := make(map[string]bool)
	for _, e := range res.Edges {
		if seen[e.Key()] {
			t.Errorf("key %q used twice", e.Key())
		}
		seen[e.Key()] = true
	}
}

func TestBuildDuplicateNode(t *testing.T) {
	first := node("A")
	first.ShortName = "first"
	second := node("A")
	second.ShortName = "second"
	res := mustBuild(t, topology.Snapshot{Nodes: []topology.GraphNode{first, second}})
	if len(res.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(res.Nodes))
	}
	if got := res.Nodes[0].Node.ShortName; got != "first" {
		t.Errorf("kept %q, want first", got)
	}
	if !hasDiag(res, errors.ErrCodeDuplicateNode) {
		t.Error("missing DUPLICATE_NODE diagnostic")
	}
}

func TestBuildUnknownKind(t *testing.T) {
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("A"), node("B")},
		Edges: []topology.GraphEdge{edge("A", "B", "semi-sync")},
	}
	res := mustBuild(t, s)
	if !hasDiag(res, errors.ErrCodeUnknownEdgeKind) {
		t.Error("missing UNKNOWN_EDGE_KIND diagnostic")
	}
	uni, _ := StyleFor(topology.EdgeUnidirectional)
	got := res.Edges[0].Style
	if got.Stroke != uni.Stroke || got.SourceHandle != uni.SourceHandle || got.Animated != uni.Animated {
		t.Errorf("unknown kind style = %+v, want unidirectional", got)
	}
}

func TestBuildNodeSize(t *testing.T) {
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("A"), node("B"), node("C")},
		Edges: []topology.GraphEdge{
			edge("A", "B", topology.EdgeUnidirectional),
			edge("A", "C", topology.EdgeUnidirectional),
		},
	}
	res := mustBuild(t, s, WithNodeSize(100, 50))
	if got, want := position(t, res, "C"), (Position{X: 0, Y: 25}); got != want {
		t.Errorf("position(C) = %+v, want %+v", got, want)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	s := topology.Snapshot{
		Nodes: []topology.GraphNode{node("A"), node("B"), node("B")},
		Edges: []topology.GraphEdge{
			edge("A", "B", topology.EdgeUnidirectional),
			edge("B", "nowhere", "odd"),
		},
	}
	before := s.Clone()
	mustBuild(t, s)
	if fmt.Sprint(before) != fmt.Sprint(s) {
		t.Errorf("snapshot mutated:\nbefore %v\nafter  %v", before, s)
	}
}

func TestBuildDeterministic(t *testing.T) {
	s := randomTree(rand.New(rand.NewSource(7)), 40, 5)
	a, b := mustBuild(t, s), mustBuild(t, s)
	for i := range a.Nodes {
		if a.Nodes[i].Position != b.Nodes[i].Position {
			t.Fatalf("node %s: %+v != %+v", a.Nodes[i].Node.ID, a.Nodes[i].Position, b.Nodes[i].Position)
		}
	}
}

// randomTree builds a single-root tree in which every node has at most
// maxKids children.
func randomTree(r *rand.Rand, n, maxKids int) topology.Snapshot {
	s := topology.Snapshot{Nodes: []topology.GraphNode{node("n0")}}
	kids := map[int]int{}
	for i := 1; i < n; i++ {
		p := r.Intn(i)
		for kids[p] >= maxKids {
			p = r.Intn(i)
		}
		kids[p]++
		s.Nodes = append(s.Nodes, node(fmt.Sprintf("n%d", i)))
		s.Edges = append(s.Edges, edge(fmt.Sprintf("n%d", p), fmt.Sprintf("n%d", i), topology.EdgeUnidirectional))
	}
	return s
}

func TestBuildSiblingSubtreesDoNotOverlap(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		s := randomTree(rand.New(rand.NewSource(seed)), 30, 5)
		res := mustBuild(t, s)

		children := map[topology.NodeID][]topology.NodeID{}
		for _, n := range res.Nodes {
			if n.Parent != "" {
				children[n.Parent] = append(children[n.Parent], n.Node.ID)
			}
		}
		var span func(id topology.NodeID) (float64, float64)
		span = func(id topology.NodeID) (float64, float64) {
			n, _ := res.Node(id)
			lo, hi := n.Position.X, n.Position.X
			for _, c := range children[id] {
				clo, chi := span(c)
				lo, hi = min(lo, clo), max(hi, chi)
			}
			return lo, hi
		}
		for parent, kids := range children {
			for i := 1; i < len(kids); i++ {
				_, prevHi := span(kids[i-1])
				lo, _ := span(kids[i])
				if lo < prevHi+res.NodeWidth {
					t.Errorf("seed %d: subtrees of %s and %s under %s overlap (%v < %v)",
						seed, kids[i-1], kids[i], parent, lo, prevHi+res.NodeWidth)
				}
			}
		}
	}
}

func TestBuildParentCentred(t *testing.T) {
	s := randomTree(rand.New(rand.NewSource(3)), 25, 4)
	res := mustBuild(t, s)
	first := map[topology.NodeID]float64{}
	last := map[topology.NodeID]float64{}
	for _, n := range res.Nodes {
		if n.Parent == "" {
			continue
		}
		if _, ok := first[n.Parent]; !ok {
			first[n.Parent] = n.Position.X
		}
		last[n.Parent] = n.Position.X
	}
	for id, lo := range first {
		p, _ := res.Node(id)
		if want := (lo + last[id]) / 2; p.Position.X != want {
			t.Errorf("%s.x = %v, want %v", id, p.Position.X, want)
		}
	}
}

func TestBuildExampleSnapshot(t *testing.T) {
	s, err := topology.ReadSnapshotFile("../../../examples/topology.json")
	if err != nil {
		t.Fatalf("ReadSnapshotFile: %v", err)
	}
	res, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(res.Nodes) != 7 || len(res.Edges) != 5 {
		t.Fatalf("got %d nodes, %d edges, want 7, 5", len(res.Nodes), len(res.Edges))
	}
	if len(res.Roots) != 2 || res.Roots[0] != "orders" || res.Roots[1] != "billing" {
		t.Errorf("roots = %v, want [orders billing]", res.Roots)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != errors.ErrCodeMultiRootGraph {
		t.Errorf("diagnostics = %v, want one MULTI_ROOT_GRAPH", res.Diagnostics)
	}
	etl, _ := res.Node("orders-etl")
	if etl.Parent != "orders" || etl.Depth != 1 {
		t.Errorf("orders-etl parent = %q depth = %d, want orders 1", etl.Parent, etl.Depth)
	}
	report, _ := res.Node("orders-report")
	if report.Depth != 2 {
		t.Errorf("orders-report depth = %d, want 2", report.Depth)
	}
}
