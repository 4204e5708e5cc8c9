package layout

import "github.com/matzehuels/topograph/pkg/topology"

// extent is the horizontal range of node centres in a subtree, relative to
// the subtree root.
type extent struct {
	min, max float64
}

// tree computes node centres for an acyclic parent/children forest.
type tree struct {
	children map[topology.NodeID][]topology.NodeID
	spacing  float64

	rel   map[topology.NodeID]float64 // offset from parent centre
	x     map[topology.NodeID]float64
	depth map[topology.NodeID]int
}

func newTree(roots []topology.NodeID, children map[topology.NodeID][]topology.NodeID, spacing float64) *tree {
	t := &tree{
		children: children,
		spacing:  spacing,
		rel:      make(map[topology.NodeID]float64),
		x:        make(map[topology.NodeID]float64),
		depth:    make(map[topology.NodeID]int),
	}
	if len(roots) == 0 {
		return t
	}

	exts := make([]extent, len(roots))
	for i, r := range roots {
		exts[i] = t.measure(r)
	}
	// Roots are packed like siblings under a virtual parent, with the first
	// root pinned at x = 0.
	offsets := t.pack(exts)
	for i, r := range roots {
		t.place(r, offsets[i]-offsets[0], 0)
	}
	return t
}

// measure lays out the subtree below id and returns its extent.
func (t *tree) measure(id topology.NodeID) extent {
	kids := t.children[id]
	if len(kids) == 0 {
		return extent{}
	}
	exts := make([]extent, len(kids))
	for i, k := range kids {
		exts[i] = t.measure(k)
	}
	offsets := t.pack(exts)
	mid := (offsets[0] + offsets[len(offsets)-1]) / 2

	ext := extent{}
	for i, k := range kids {
		r := offsets[i] - mid
		t.rel[k] = r
		ext.min = min(ext.min, r+exts[i].min)
		ext.max = max(ext.max, r+exts[i].max)
	}
	return ext
}

// pack returns left-to-right offsets for subtrees so that each one starts at
// least one spacing after the previous one ends.
func (t *tree) pack(exts []extent) []float64 {
	offsets := make([]float64, len(exts))
	for i := 1; i < len(exts); i++ {
		offsets[i] = offsets[i-1] + exts[i-1].max - exts[i].min + t.spacing
	}
	return offsets
}

func (t *tree) place(id topology.NodeID, x float64, depth int) {
	t.x[id] = x
	t.depth[id] = depth
	for _, k := range t.children[id] {
		t.place(k, x+t.rel[k], depth+1)
	}
}
