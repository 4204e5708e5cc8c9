// Package topology defines the replication graph snapshot consumed by the
// layout and highlight engines.
//
// # Overview
//
// A [Snapshot] is the full, non-incremental set of database nodes and
// replication edges at a point in time. Snapshots are rebuilt from the
// upstream capture job on every update; nothing in topograph patches them
// in place.
//
// # Identifiers
//
// Node identity is a [NodeID]. Edge endpoints are [EndpointID] values which
// may address a replication channel of a node using the composite form
// "<nodeId>__<channel>":
//
//	e := topology.EndpointID("db1__chA")
//	e.Node()    // "db1"
//	e.Channel() // "chA"
//
// Every comparison of an edge endpoint against a node goes through
// [EndpointID.Node]. Plain ids are their own node id.
//
// # Serialization
//
// [ReadSnapshot] and [WriteSnapshot] use the JSON shape written by the
// capture job: nodes carry their catalog record under "data" and edges use
// "source", "target" and "edgeType". [UnmarshalNodes] and [UnmarshalEdges]
// decode the two halves when they are stored under separate cache keys.
//
// # Catalog
//
// [FromCatalog] derives a snapshot from database catalog records the same way
// the capture job does: one node per short name, one edge per replica, with
// the edge kind inferred from source links and DMS hosts.
package topology
