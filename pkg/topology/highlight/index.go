package highlight

import (
	"slices"

	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/layout"
)

// Index holds edge adjacency keyed by node id. Composite endpoint ids are
// reduced to their node before indexing.
type Index struct {
	nodes    map[topology.NodeID]bool
	incoming map[topology.NodeID][]topology.NodeID
	outgoing map[topology.NodeID][]topology.NodeID
}

// NewIndex builds an index over the given nodes. Edges whose endpoints do
// not resolve to one of the nodes are ignored.
func NewIndex(nodes []topology.GraphNode, edges []topology.GraphEdge) *Index {
	x := &Index{
		nodes:    make(map[topology.NodeID]bool, len(nodes)),
		incoming: make(map[topology.NodeID][]topology.NodeID),
		outgoing: make(map[topology.NodeID][]topology.NodeID),
	}
	for _, n := range nodes {
		x.nodes[n.ID] = true
	}
	for _, e := range edges {
		x.add(e)
	}
	return x
}

// IndexResult builds an index over the nodes and edges kept by a layout.
func IndexResult(res *layout.Result) *Index {
	nodes := make([]topology.GraphNode, len(res.Nodes))
	for i, n := range res.Nodes {
		nodes[i] = n.Node
	}
	edges := make([]topology.GraphEdge, len(res.Edges))
	for i, e := range res.Edges {
		edges[i] = e.Edge
	}
	return NewIndex(nodes, edges)
}

func (x *Index) add(e topology.GraphEdge) {
	src, dst := e.Source.Node(), e.Target.Node()
	if !x.nodes[src] || !x.nodes[dst] {
		return
	}
	x.outgoing[src] = append(x.outgoing[src], dst)
	x.incoming[dst] = append(x.incoming[dst], src)
}

// Has reports whether id is an indexed node.
func (x *Index) Has(id topology.NodeID) bool { return x.nodes[id] }

// Ancestors returns every node with a directed path to id, sorted. The node
// itself is never included, even when it lies on a cycle.
func (x *Index) Ancestors(id topology.NodeID) []topology.NodeID {
	return walk(id, x.incoming)
}

// Descendants returns every node reachable from id, sorted. The node itself
// is never included, even when it lies on a cycle.
func (x *Index) Descendants(id topology.NodeID) []topology.NodeID {
	return walk(id, x.outgoing)
}

// walk collects the nodes reachable from start along adj. Ids are marked
// before they are pushed, so each is expanded at most once.
func walk(start topology.NodeID, adj map[topology.NodeID][]topology.NodeID) []topology.NodeID {
	seen := map[topology.NodeID]bool{start: true}
	stack := []topology.NodeID{start}
	var out []topology.NodeID
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[id] {
			if seen[next] {
				continue
			}
			seen[next] = true
			out = append(out, next)
			stack = append(stack, next)
		}
	}
	slices.Sort(out)
	return out
}
