package topology

import (
	"slices"
	"strings"
)

// dmsHostSuffix marks catalog records synthesised for data-movement-service
// replicas. Their host is "<user>-dms".
const dmsHostSuffix = "-dms"

// Database is a catalog record for one database server, as maintained by
// the capture job.
type Database struct {
	Host               string   `json:"host"`
	ShortName          string   `json:"shortName"`
	Port               int      `json:"port,omitempty"`
	IsPrimary          bool     `json:"isPrimary"`
	Replicas           []string `json:"replicas,omitempty"`
	Source             string   `json:"source,omitempty"`
	ReplicationRunning bool     `json:"replicationRunning,omitempty"`
}

// IsDMS reports whether the record stands for a DMS replication target.
func (d Database) IsDMS() bool { return strings.HasSuffix(d.Host, dmsHostSuffix) }

// AddReplica appends a replica short name unless it is already present.
func (d *Database) AddReplica(name string) {
	if !slices.Contains(d.Replicas, name) {
		d.Replicas = append(d.Replicas, name)
	}
}

// SetReplicas links every database to the databases on other hosts that
// name it as their replication source.
func SetReplicas(dbs []*Database) {
	for _, db := range dbs {
		for _, other := range dbs {
			if other.Host != db.Host && other.Source == db.ShortName {
				db.AddReplica(other.ShortName)
			}
		}
	}
}

// FromCatalog builds a snapshot from catalog records.
//
// There is one node per distinct short name (first record wins) and one
// edge per (database, replica) pair. An edge is bidirectional when the
// database's own source is that replica, in which case the reverse pair is
// not emitted again. Edges to DMS records are dms edges; all others are
// unidirectional.
func FromCatalog(dbs []Database) Snapshot {
	byName := make(map[string]Database, len(dbs))
	for _, db := range dbs {
		if _, ok := byName[db.ShortName]; !ok {
			byName[db.ShortName] = db
		}
	}

	var s Snapshot
	seenNodes := make(map[string]bool)
	seenEdges := make(map[string]bool)

	for _, db := range dbs {
		if !seenNodes[db.ShortName] {
			s.Nodes = append(s.Nodes, nodeFromDatabase(db))
			seenNodes[db.ShortName] = true
		}

		for _, replica := range db.Replicas {
			key := db.ShortName + "-" + replica
			if seenEdges[key] {
				continue
			}

			kind := EdgeUnidirectional
			switch {
			case db.Source != "" && db.Source == replica:
				if seenEdges[replica+"-"+db.ShortName] {
					continue
				}
				kind = EdgeBidirectional
			case byName[replica].IsDMS():
				kind = EdgeDMS
			}

			s.Edges = append(s.Edges, GraphEdge{
				ID:     key,
				Source: EndpointID(db.ShortName),
				Target: EndpointID(replica),
				Kind:   kind,
			})
			seenEdges[key] = true
		}
	}

	return s
}

func nodeFromDatabase(db Database) GraphNode {
	replicas := make([]NodeID, len(db.Replicas))
	for i, r := range db.Replicas {
		replicas[i] = NodeID(r)
	}
	return GraphNode{
		ID:                 NodeID(db.ShortName),
		ShortName:          db.ShortName,
		IsPrimary:          db.IsPrimary,
		ReplicaIDs:         replicas,
		Host:               db.Host,
		Source:             db.Source,
		ReplicationRunning: db.ReplicationRunning,
	}
}
