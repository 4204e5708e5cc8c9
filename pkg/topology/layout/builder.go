package layout

import (
	"fmt"

	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/topology"
)

// Position is the top-left corner of a node box.
type Position struct {
	X float64
	Y float64
}

// PositionedNode is a snapshot node with its computed placement.
type PositionedNode struct {
	Node     topology.GraphNode
	Position Position
	Depth    int
	Parent   topology.NodeID // "" for roots
}

// StyledEdge is a snapshot edge with its base style.
type StyledEdge struct {
	Edge  topology.GraphEdge
	Style EdgeStyle

	key string
}

// Key returns the edge's visual identity. It is unique within a [Result]:
// [topology.GraphEdge.Key], suffixed with "#<n>" when an earlier edge
// already claimed that value.
func (e StyledEdge) Key() string {
	if e.key != "" {
		return e.key
	}
	return e.Edge.Key()
}

// Diagnostic records a local fault that was recovered from during layout.
type Diagnostic struct {
	Code    errors.Code
	Message string
	NodeID  topology.NodeID
	EdgeID  string
}

// Result is the output of [Build]. Nodes keep the snapshot's input order with
// duplicates removed, and Edges keep input order with dangling edges removed.
type Result struct {
	Nodes       []PositionedNode
	Edges       []StyledEdge
	Roots       []topology.NodeID
	Diagnostics []Diagnostic
	NodeWidth   float64
	NodeHeight  float64

	nodeIndex map[topology.NodeID]int
	edgeIndex map[string]int
}

// Node returns the positioned node with the given id.
func (r *Result) Node(id topology.NodeID) (PositionedNode, bool) {
	i, ok := r.nodeIndex[id]
	if !ok {
		return PositionedNode{}, false
	}
	return r.Nodes[i], true
}

// Edge returns the styled edge with the given key.
func (r *Result) Edge(key string) (StyledEdge, bool) {
	i, ok := r.edgeIndex[key]
	if !ok {
		return StyledEdge{}, false
	}
	return r.Edges[i], true
}

// HasNode reports whether id is part of the layout.
func (r *Result) HasNode(id topology.NodeID) bool {
	_, ok := r.nodeIndex[id]
	return ok
}

// Build lays out a snapshot. It returns an error only for structural faults
// the options forbid; everything else is reported as a diagnostic.
func Build(s topology.Snapshot, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	b := &builder{
		opts:     o,
		index:    make(map[topology.NodeID]int, len(s.Nodes)),
		keys:     make(map[string]bool, len(s.Edges)),
		parent:   make(map[topology.NodeID]topology.NodeID, len(s.Nodes)),
		children: make(map[topology.NodeID][]topology.NodeID, len(s.Nodes)),
	}
	b.collectNodes(s.Nodes)
	b.collectEdges(s.Edges)
	b.linkParents()
	b.findRoots()

	if len(b.roots) > 1 {
		if o.StrictSingleRoot {
			return nil, errors.New(errors.ErrCodeMultiRootGraph,
				"snapshot has %d roots, expected one", len(b.roots))
		}
		b.diag(Diagnostic{
			Code:    errors.ErrCodeMultiRootGraph,
			Message: fmt.Sprintf("snapshot has %d roots, laid out as a forest", len(b.roots)),
		})
	}

	t := newTree(b.roots, b.children, o.NodeWidth)
	return b.result(t), nil
}

// builder holds the intermediate state of a single Build call.
type builder struct {
	opts Options

	nodes []topology.GraphNode
	index map[topology.NodeID]int
	edges []StyledEdge
	keys  map[string]bool

	parent   map[topology.NodeID]topology.NodeID
	children map[topology.NodeID][]topology.NodeID
	roots    []topology.NodeID

	diags []Diagnostic
}

func (b *builder) diag(d Diagnostic) { b.diags = append(b.diags, d) }

func (b *builder) collectNodes(nodes []topology.GraphNode) {
	for _, n := range nodes {
		if _, dup := b.index[n.ID]; dup {
			b.diag(Diagnostic{
				Code:    errors.ErrCodeDuplicateNode,
				Message: fmt.Sprintf("duplicate node %q ignored", n.ID),
				NodeID:  n.ID,
			})
			continue
		}
		b.index[n.ID] = len(b.nodes)
		b.nodes = append(b.nodes, n)
	}
}

func (b *builder) collectEdges(edges []topology.GraphEdge) {
	for _, e := range edges {
		src, dst := e.Source.Node(), e.Target.Node()
		if !b.known(src) || !b.known(dst) {
			b.diag(Diagnostic{
				Code:    errors.ErrCodeDanglingEdge,
				Message: fmt.Sprintf("edge %q references unknown node", e.Key()),
				EdgeID:  e.Key(),
			})
			continue
		}
		style, ok := StyleFor(e.Kind)
		if !ok {
			b.diag(Diagnostic{
				Code:    errors.ErrCodeUnknownEdgeKind,
				Message: fmt.Sprintf("edge %q has unknown kind %q, styled as %s", e.Key(), e.Kind, topology.EdgeUnidirectional),
				EdgeID:  e.Key(),
			})
		}
		b.edges = append(b.edges, StyledEdge{Edge: e, Style: style, key: b.uniqueKey(e)})
	}
}

// uniqueKey claims e.Key(), or the first free "<key>#<n>" if an earlier
// edge holds it. Keyless parallel edges get distinct keys this way.
func (b *builder) uniqueKey(e topology.GraphEdge) string {
	key := e.Key()
	if b.keys[key] {
		base := key
		for n := 2; b.keys[key]; n++ {
			key = fmt.Sprintf("%s#%d", base, n)
		}
		b.diag(Diagnostic{
			Code:    errors.ErrCodeDuplicateEdge,
			Message: fmt.Sprintf("edge key %q already used, edge keyed as %q", base, key),
			EdgeID:  key,
		})
	}
	b.keys[key] = true
	return key
}

func (b *builder) known(id topology.NodeID) bool {
	_, ok := b.index[id]
	return ok
}

// linkParents assigns each node the source of the first edge targeting it.
// Self links carry no hierarchy.
func (b *builder) linkParents() {
	for _, se := range b.edges {
		src, dst := se.Edge.Source.Node(), se.Edge.Target.Node()
		if src == dst {
			continue
		}
		if _, ok := b.parent[dst]; !ok {
			b.parent[dst] = src
		}
	}
	// Children follow node input order.
	for _, n := range b.nodes {
		if p, ok := b.parent[n.ID]; ok {
			b.children[p] = append(b.children[p], n.ID)
		}
	}
}

// findRoots collects parentless nodes, then breaks any parent cycle that is
// unreachable from them by promoting its first node to a root.
func (b *builder) findRoots() {
	for _, n := range b.nodes {
		if _, ok := b.parent[n.ID]; !ok {
			b.roots = append(b.roots, n.ID)
		}
	}

	seen := make(map[topology.NodeID]bool, len(b.nodes))
	for _, r := range b.roots {
		b.mark(r, seen)
	}
	for _, n := range b.nodes {
		if seen[n.ID] {
			continue
		}
		c := b.cycleEntry(n.ID)
		p := b.parent[c]
		b.children[p] = removeID(b.children[p], c)
		delete(b.parent, c)
		b.roots = append(b.roots, c)
		b.diag(Diagnostic{
			Code:    errors.ErrCodeCyclicHierarchy,
			Message: fmt.Sprintf("parent link %s -> %s closes a cycle, %s promoted to root", p, c, c),
			NodeID:  c,
		})
		b.mark(c, seen)
	}
}

// cycleEntry follows parent links from an unreachable node until they loop
// and returns the cycle member that comes first in input order.
func (b *builder) cycleEntry(id topology.NodeID) topology.NodeID {
	pos := make(map[topology.NodeID]int)
	var path []topology.NodeID
	for {
		if i, ok := pos[id]; ok {
			best := path[i]
			for _, c := range path[i+1:] {
				if b.index[c] < b.index[best] {
					best = c
				}
			}
			return best
		}
		pos[id] = len(path)
		path = append(path, id)
		id = b.parent[id]
	}
}

func (b *builder) mark(root topology.NodeID, seen map[topology.NodeID]bool) {
	seen[root] = true
	stack := []topology.NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range b.children[id] {
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
}

func removeID(ids []topology.NodeID, id topology.NodeID) []topology.NodeID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func (b *builder) result(t *tree) *Result {
	w, h := b.opts.NodeWidth, b.opts.NodeHeight
	res := &Result{
		Nodes:       make([]PositionedNode, len(b.nodes)),
		Edges:       b.edges,
		Roots:       b.roots,
		Diagnostics: b.diags,
		NodeWidth:   w,
		NodeHeight:  h,
		nodeIndex:   b.index,
		edgeIndex:   make(map[string]int, len(b.edges)),
	}
	for i, n := range b.nodes {
		depth := t.depth[n.ID]
		res.Nodes[i] = PositionedNode{
			Node: n,
			Position: Position{
				X: t.x[n.ID] - w/2,
				Y: float64(depth)*h - h/2,
			},
			Depth:  depth,
			Parent: b.parent[n.ID],
		}
	}
	for i, e := range b.edges {
		res.edgeIndex[e.Key()] = i
	}
	return res
}
