package topology

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Wire Format
// =============================================================================

// wireSnapshot is the single-document form of a snapshot.
type wireSnapshot struct {
	Nodes []wireNode `json:"nodes"`
	Edges []wireEdge `json:"edges"`
}

// wireNode matches the node records cached by the capture job. The catalog
// record sits under "data"; position is written as zero and ignored on read.
type wireNode struct {
	ID       NodeID       `json:"id"`
	Data     wireNodeData `json:"data"`
	Position wirePosition `json:"position"`
}

type wireNodeData struct {
	Host               string   `json:"host,omitempty"`
	ShortName          string   `json:"shortName,omitempty"`
	IsPrimary          bool     `json:"isPrimary"`
	Replicas           []NodeID `json:"replicas"`
	Source             string   `json:"source,omitempty"`
	ReplicationRunning bool     `json:"replication_running,omitempty"`
}

type wirePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireEdge struct {
	ID       string     `json:"id,omitempty"`
	Source   EndpointID `json:"source"`
	Target   EndpointID `json:"target"`
	EdgeType EdgeKind   `json:"edgeType"`
	Animated bool       `json:"animated"`
}

func nodeToWire(n GraphNode) wireNode {
	return wireNode{
		ID: n.ID,
		Data: wireNodeData{
			Host:               n.Host,
			ShortName:          n.ShortName,
			IsPrimary:          n.IsPrimary,
			Replicas:           n.ReplicaIDs,
			Source:             n.Source,
			ReplicationRunning: n.ReplicationRunning,
		},
	}
}

func nodeFromWire(w wireNode) GraphNode {
	return GraphNode{
		ID:                 w.ID,
		ShortName:          w.Data.ShortName,
		IsPrimary:          w.Data.IsPrimary,
		ReplicaIDs:         w.Data.Replicas,
		Host:               w.Data.Host,
		Source:             w.Data.Source,
		ReplicationRunning: w.Data.ReplicationRunning,
	}
}

func edgeToWire(e GraphEdge) wireEdge {
	return wireEdge{ID: e.ID, Source: e.Source, Target: e.Target, EdgeType: e.Kind}
}

func edgeFromWire(w wireEdge) GraphEdge {
	return GraphEdge{ID: w.ID, Source: w.Source, Target: w.Target, Kind: w.EdgeType}
}

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// MarshalSnapshot encodes a snapshot as pretty-printed JSON.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(toWire(s), "", "  ")
}

// UnmarshalSnapshot decodes a single-document snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return fromWire(w), nil
}

// WriteSnapshot writes a snapshot as JSON to w.
func WriteSnapshot(s Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toWire(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot from r.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var w wireSnapshot
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return fromWire(w), nil
}

// ReadSnapshotFile reads a snapshot from a JSON file.
func ReadSnapshotFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// WriteSnapshotFile writes a snapshot to a JSON file.
func WriteSnapshotFile(s Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSnapshot(s, f)
}

// MarshalNodes encodes the node half of a snapshot, as stored under the
// capture job's nodes key.
func MarshalNodes(nodes []GraphNode) ([]byte, error) {
	out := make([]wireNode, len(nodes))
	for i, n := range nodes {
		out[i] = nodeToWire(n)
	}
	return json.Marshal(out)
}

// MarshalEdges encodes the edge half of a snapshot.
func MarshalEdges(edges []GraphEdge) ([]byte, error) {
	out := make([]wireEdge, len(edges))
	for i, e := range edges {
		out[i] = edgeToWire(e)
	}
	return json.Marshal(out)
}

// UnmarshalNodes decodes a JSON array of node records. A JSON null decodes
// to an empty list.
func UnmarshalNodes(data []byte) ([]GraphNode, error) {
	var w []wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	nodes := make([]GraphNode, len(w))
	for i, n := range w {
		nodes[i] = nodeFromWire(n)
	}
	return nodes, nil
}

// UnmarshalEdges decodes a JSON array of edge records.
func UnmarshalEdges(data []byte) ([]GraphEdge, error) {
	var w []wireEdge
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode edges: %w", err)
	}
	edges := make([]GraphEdge, len(w))
	for i, e := range w {
		edges[i] = edgeFromWire(e)
	}
	return edges, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func toWire(s Snapshot) wireSnapshot {
	w := wireSnapshot{
		Nodes: make([]wireNode, len(s.Nodes)),
		Edges: make([]wireEdge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		w.Nodes[i] = nodeToWire(n)
	}
	for i, e := range s.Edges {
		w.Edges[i] = edgeToWire(e)
	}
	return w
}

func fromWire(w wireSnapshot) Snapshot {
	s := Snapshot{
		Nodes: make([]GraphNode, len(w.Nodes)),
		Edges: make([]GraphEdge, len(w.Edges)),
	}
	for i, n := range w.Nodes {
		s.Nodes[i] = nodeFromWire(n)
	}
	for i, e := range w.Edges {
		s.Edges[i] = edgeFromWire(e)
	}
	return s
}
