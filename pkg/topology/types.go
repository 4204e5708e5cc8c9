package topology

import (
	"slices"
	"strings"
)

// channelSeparator joins a node id and a replication channel in composite
// endpoint ids.
const channelSeparator = "__"

// NodeID identifies a database node within a snapshot.
type NodeID string

// EndpointID is an edge endpoint. It is either a plain node id or a
// composite "<nodeId>__<channel>" id addressing one replication channel of
// a node.
type EndpointID string

// Node returns the node id addressed by the endpoint, with any channel
// suffix removed. The split happens at the last separator, and only when
// both halves are non-empty; "__x" and "x__" are plain ids.
func (e EndpointID) Node() NodeID {
	id, _ := e.split()
	return id
}

// Channel returns the channel suffix, or "" for plain ids.
func (e EndpointID) Channel() string {
	_, ch := e.split()
	return ch
}

// IsComposite reports whether the endpoint carries a channel suffix.
func (e EndpointID) IsComposite() bool { return e.Channel() != "" }

func (e EndpointID) split() (NodeID, string) {
	s := string(e)
	i := strings.LastIndex(s, channelSeparator)
	if i <= 0 || i+len(channelSeparator) >= len(s) {
		return NodeID(s), ""
	}
	return NodeID(s[:i]), s[i+len(channelSeparator):]
}

// Endpoint returns the plain endpoint for a node id.
func Endpoint(id NodeID) EndpointID { return EndpointID(id) }

// ChannelEndpoint returns the composite endpoint for a channel of a node.
func ChannelEndpoint(id NodeID, channel string) EndpointID {
	if channel == "" {
		return EndpointID(id)
	}
	return EndpointID(string(id) + channelSeparator + channel)
}

// EdgeKind is the replication flavour of an edge. It alone decides how an
// edge is anchored and styled.
type EdgeKind string

// Edge kinds.
const (
	EdgeUnidirectional EdgeKind = "unidirectional"
	EdgeBidirectional  EdgeKind = "bidirectional"
	EdgeDMS            EdgeKind = "dms"
)

// Valid reports whether k is one of the known edge kinds.
func (k EdgeKind) Valid() bool {
	switch k {
	case EdgeUnidirectional, EdgeBidirectional, EdgeDMS:
		return true
	}
	return false
}

// GraphNode is a database in the replication topology.
type GraphNode struct {
	ID         NodeID
	ShortName  string
	IsPrimary  bool
	ReplicaIDs []NodeID

	// Catalog fields carried through for display. The engine ignores them.
	Host               string
	Source             string
	ReplicationRunning bool
}

// Label returns the short name if set, otherwise the id.
func (n GraphNode) Label() string {
	if n.ShortName != "" {
		return n.ShortName
	}
	return string(n.ID)
}

// Role classifies a node for display, following the dashboard legend.
type Role string

// Node roles.
const (
	RolePrimarySource     Role = "primary-source"
	RoleReplicationSource Role = "replication-source"
	RoleReplica           Role = "replica"
)

// Role returns the display role of the node: primaries with replicas are
// primary sources, other nodes with replicas are replication sources, and
// everything else is a plain replica.
func (n GraphNode) Role() Role {
	switch {
	case len(n.ReplicaIDs) > 0 && n.IsPrimary:
		return RolePrimarySource
	case len(n.ReplicaIDs) > 0:
		return RoleReplicationSource
	default:
		return RoleReplica
	}
}

// GraphEdge is a directed replication link.
type GraphEdge struct {
	ID     string
	Source EndpointID
	Target EndpointID
	Kind   EdgeKind
}

// Key returns the edge id, or "<source>-<target>" when the id is empty.
// Visual state is keyed by this value.
func (e GraphEdge) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return string(e.Source) + "-" + string(e.Target)
}

// Snapshot is a full replication graph at a point in time.
type Snapshot struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

// NodeCount returns the number of nodes.
func (s Snapshot) NodeCount() int { return len(s.Nodes) }

// EdgeCount returns the number of edges.
func (s Snapshot) EdgeCount() int { return len(s.Edges) }

// Node returns the first node with the given id.
func (s Snapshot) Node(id NodeID) (GraphNode, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Nodes: make([]GraphNode, len(s.Nodes)),
		Edges: slices.Clone(s.Edges),
	}
	for i, n := range s.Nodes {
		n.ReplicaIDs = slices.Clone(n.ReplicaIDs)
		out.Nodes[i] = n
	}
	return out
}
