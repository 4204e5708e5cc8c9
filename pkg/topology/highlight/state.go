package highlight

import (
	"maps"
	"slices"

	"github.com/matzehuels/topograph/pkg/topology"
)

// Visual constants.
const (
	OpacityFull   = 1.0
	OpacityDimmed = 0.25

	// TransitionMs is the duration of every opacity and stroke change.
	TransitionMs = 300
)

// NodeVisual is the per-node visual state.
type NodeVisual struct {
	Opacity      float64 `json:"opacity"`
	TransitionMs int     `json:"transitionMs"`
}

// EdgeVisual is the per-edge visual state.
type EdgeVisual struct {
	Stroke       string  `json:"stroke"`
	StrokeWidth  float64 `json:"strokeWidth"`
	Opacity      float64 `json:"opacity"`
	Animated     bool    `json:"animated"`
	TransitionMs int     `json:"transitionMs"`
}

// State is the visual state of a whole layout. Edges are keyed by
// [topology.GraphEdge.Key].
type State struct {
	Focus       topology.NodeID                `json:"focus,omitempty"`
	Ancestors   []topology.NodeID              `json:"ancestors,omitempty"`
	Descendants []topology.NodeID              `json:"descendants,omitempty"`
	Nodes       map[topology.NodeID]NodeVisual `json:"nodes"`
	Edges       map[string]EdgeVisual          `json:"edges"`
}

// Focused reports whether the state belongs to a hovered node.
func (s State) Focused() bool { return s.Focus != "" }

// Node returns the visual state of a node.
func (s State) Node(id topology.NodeID) (NodeVisual, bool) {
	v, ok := s.Nodes[id]
	return v, ok
}

// Edge returns the visual state of an edge.
func (s State) Edge(key string) (EdgeVisual, bool) {
	v, ok := s.Edges[key]
	return v, ok
}

// Active returns the ids of nodes at full opacity, sorted.
func (s State) Active() []topology.NodeID {
	var out []topology.NodeID
	for id, v := range s.Nodes {
		if v.Opacity == OpacityFull {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Clone returns a copy that shares no maps or slices with s.
func (s State) Clone() State {
	return State{
		Focus:       s.Focus,
		Ancestors:   slices.Clone(s.Ancestors),
		Descendants: slices.Clone(s.Descendants),
		Nodes:       maps.Clone(s.Nodes),
		Edges:       maps.Clone(s.Edges),
	}
}

// Equal reports whether two states render identically.
func (s State) Equal(o State) bool {
	return s.Focus == o.Focus &&
		slices.Equal(s.Ancestors, o.Ancestors) &&
		slices.Equal(s.Descendants, o.Descendants) &&
		maps.Equal(s.Nodes, o.Nodes) &&
		maps.Equal(s.Edges, o.Edges)
}
