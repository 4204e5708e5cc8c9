package layout

import "github.com/matzehuels/topograph/pkg/topology"

// Anchor names a connection handle on a rendered node.
type Anchor string

// Node anchors. Unidirectional edges use the right/left pair and
// bidirectional edges the bottom/top pair so the two never overlap between
// the same nodes.
const (
	AnchorRight  Anchor = "right"
	AnchorLeft   Anchor = "left"
	AnchorBottom Anchor = "bottom"
	AnchorTop    Anchor = "top"
)

// ConnectionType is the curve used to draw an edge.
type ConnectionType string

// ConnectionSimpleBezier is the only curve topograph emits.
const ConnectionSimpleBezier ConnectionType = "simplebezier"

// MarkerType is an arrowhead shape.
type MarkerType string

// Marker shapes.
const (
	MarkerArrow       MarkerType = "arrow"
	MarkerArrowClosed MarkerType = "arrowclosed"
)

// Edge colours.
const (
	ColorNeutral = "#fafafa"
	ColorAccent  = "#FF0072"
)

// Marker is an arrowhead at one end of an edge.
type Marker struct {
	Type   MarkerType
	Width  float64
	Height float64
	Color  string
}

// EdgeStyle is the base presentation of an edge.
type EdgeStyle struct {
	SourceHandle Anchor
	TargetHandle Anchor
	Connection   ConnectionType
	Animated     bool
	Stroke       string
	StrokeWidth  float64
	MarkerEnd    *Marker
	MarkerStart  *Marker // nil for single-direction edges
}

// StyleFor returns the base style for an edge kind. The second result is
// false for unknown kinds, which get the unidirectional style.
//
// Each call returns fresh marker values, so callers may modify the result.
func StyleFor(kind topology.EdgeKind) (EdgeStyle, bool) {
	switch kind {
	case topology.EdgeUnidirectional, topology.EdgeDMS:
		return unidirectionalStyle(), true
	case topology.EdgeBidirectional:
		return bidirectionalStyle(), true
	default:
		return unidirectionalStyle(), false
	}
}

func unidirectionalStyle() EdgeStyle {
	return EdgeStyle{
		SourceHandle: AnchorRight,
		TargetHandle: AnchorLeft,
		Connection:   ConnectionSimpleBezier,
		Stroke:       ColorNeutral,
		StrokeWidth:  1,
		MarkerEnd:    &Marker{Type: MarkerArrow, Width: 25, Height: 25, Color: ColorNeutral},
	}
}

func bidirectionalStyle() EdgeStyle {
	return EdgeStyle{
		SourceHandle: AnchorBottom,
		TargetHandle: AnchorTop,
		Connection:   ConnectionSimpleBezier,
		Animated:     true,
		Stroke:       ColorAccent,
		StrokeWidth:  2,
		MarkerEnd:    &Marker{Type: MarkerArrowClosed, Width: 20, Height: 20, Color: ColorAccent},
		MarkerStart:  &Marker{Type: MarkerArrowClosed, Width: 20, Height: 20, Color: ColorAccent},
	}
}
