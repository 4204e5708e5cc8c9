package highlight

import (
	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/layout"
)

// Highlighter tracks hover state for one viewer of one layout. It is either
// idle, showing the base state, or focused on a node.
type Highlighter struct {
	res   *layout.Result
	idx   *Index
	base  State
	state State
}

// New returns an idle highlighter for res.
func New(res *layout.Result) *Highlighter {
	base := Base(res)
	return &Highlighter{
		res:   res,
		idx:   IndexResult(res),
		base:  base,
		state: base,
	}
}

// Layout returns the layout the highlighter was built for.
func (h *Highlighter) Layout() *layout.Result { return h.res }

// HoverEnter focuses id. For ids missing from the layout it returns the
// unchanged current state and a STALE_FOCUS_NODE error.
func (h *Highlighter) HoverEnter(id topology.NodeID) (State, error) {
	st, err := compute(id, h.res, h.idx)
	if err != nil {
		return h.state.Clone(), err
	}
	h.state = st
	return st.Clone(), nil
}

// HoverLeave returns to the base state. Calling it while idle is a no-op.
func (h *Highlighter) HoverLeave() State {
	h.state = h.base
	return h.base.Clone()
}

// State returns a copy of the current state.
func (h *Highlighter) State() State { return h.state.Clone() }

// Focus returns the hovered node, if any.
func (h *Highlighter) Focus() (topology.NodeID, bool) {
	return h.state.Focus, h.state.Focused()
}
