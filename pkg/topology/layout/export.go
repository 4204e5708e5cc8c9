package layout

import (
	"encoding/json"
	"io"
)

// NodeType is the renderer component name emitted for every node.
const NodeType = "replTopoNode"

// JSON shapes consumed by node-link front ends.
type (
	jsonResult struct {
		Nodes       []jsonNode       `json:"nodes"`
		Edges       []jsonEdge       `json:"edges"`
		Roots       []string         `json:"roots"`
		Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
	}

	jsonNode struct {
		ID       string       `json:"id"`
		Type     string       `json:"type"`
		Data     jsonNodeData `json:"data"`
		Position jsonPosition `json:"position"`
		Depth    int          `json:"depth"`
		Parent   string       `json:"parent,omitempty"`
	}

	jsonNodeData struct {
		ShortName          string   `json:"shortName"`
		IsPrimary          bool     `json:"isPrimary"`
		Replicas           []string `json:"replicas"`
		Role               string   `json:"role"`
		Host               string   `json:"host,omitempty"`
		Source             string   `json:"source,omitempty"`
		ReplicationRunning bool     `json:"replication_running"`
	}

	jsonPosition struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	jsonEdge struct {
		ID           string        `json:"id"`
		Source       string        `json:"source"`
		Target       string        `json:"target"`
		EdgeType     string        `json:"edgeType"`
		SourceHandle string        `json:"sourceHandle"`
		TargetHandle string        `json:"targetHandle"`
		Type         string        `json:"type"`
		Animated     bool          `json:"animated"`
		Style        jsonEdgeStyle `json:"style"`
		MarkerEnd    *jsonMarker   `json:"markerEnd,omitempty"`
		MarkerStart  *jsonMarker   `json:"markerStart,omitempty"`
	}

	jsonEdgeStyle struct {
		Stroke      string  `json:"stroke"`
		StrokeWidth float64 `json:"strokeWidth"`
	}

	jsonMarker struct {
		Type   string  `json:"type"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Color  string  `json:"color"`
	}

	jsonDiagnostic struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		NodeID  string `json:"nodeId,omitempty"`
		EdgeID  string `json:"edgeId,omitempty"`
	}
)

// MarshalJSON encodes the result in the node-link shape used by the HTTP API
// and the JSON export.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toJSON())
}

// WriteJSON writes the indented JSON form of the result.
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.toJSON())
}

func (r *Result) toJSON() jsonResult {
	out := jsonResult{
		Nodes: make([]jsonNode, len(r.Nodes)),
		Edges: make([]jsonEdge, len(r.Edges)),
		Roots: make([]string, len(r.Roots)),
	}
	for i, n := range r.Nodes {
		out.Nodes[i] = nodeJSON(n)
	}
	for i, e := range r.Edges {
		out.Edges[i] = edgeJSON(e)
	}
	for i, id := range r.Roots {
		out.Roots[i] = string(id)
	}
	for _, d := range r.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, jsonDiagnostic{
			Code:    string(d.Code),
			Message: d.Message,
			NodeID:  string(d.NodeID),
			EdgeID:  d.EdgeID,
		})
	}
	return out
}

func nodeJSON(n PositionedNode) jsonNode {
	replicas := make([]string, len(n.Node.ReplicaIDs))
	for i, id := range n.Node.ReplicaIDs {
		replicas[i] = string(id)
	}
	return jsonNode{
		ID:   string(n.Node.ID),
		Type: NodeType,
		Data: jsonNodeData{
			ShortName:          n.Node.Label(),
			IsPrimary:          n.Node.IsPrimary,
			Replicas:           replicas,
			Role:               string(n.Node.Role()),
			Host:               n.Node.Host,
			Source:             n.Node.Source,
			ReplicationRunning: n.Node.ReplicationRunning,
		},
		Position: jsonPosition{X: n.Position.X, Y: n.Position.Y},
		Depth:    n.Depth,
		Parent:   string(n.Parent),
	}
}

func edgeJSON(e StyledEdge) jsonEdge {
	return jsonEdge{
		ID:           e.Key(),
		Source:       string(e.Edge.Source),
		Target:       string(e.Edge.Target),
		EdgeType:     string(e.Edge.Kind),
		SourceHandle: string(e.Style.SourceHandle),
		TargetHandle: string(e.Style.TargetHandle),
		Type:         string(e.Style.Connection),
		Animated:     e.Style.Animated,
		Style:        jsonEdgeStyle{Stroke: e.Style.Stroke, StrokeWidth: e.Style.StrokeWidth},
		MarkerEnd:    markerJSON(e.Style.MarkerEnd),
		MarkerStart:  markerJSON(e.Style.MarkerStart),
	}
}

func markerJSON(m *Marker) *jsonMarker {
	if m == nil {
		return nil
	}
	return &jsonMarker{Type: string(m.Type), Width: m.Width, Height: m.Height, Color: m.Color}
}
