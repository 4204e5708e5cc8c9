package cache

// Key names written by the topology capture job.
const (
	NodesKey = "mysql-repl-topo-nodes"
	EdgesKey = "mysql-repl-topo-edges"
)

// Keys names the cache entries of one topology. A non-empty prefix isolates
// several topologies sharing one cache, e.g. "staging:".
type Keys struct {
	prefix string
}

// NewKeys returns the key set for the given prefix.
func NewKeys(prefix string) Keys {
	return Keys{prefix: prefix}
}

// Prefix returns the scoping prefix.
func (k Keys) Prefix() string { return k.prefix }

// Nodes returns the key holding the node list.
func (k Keys) Nodes() string { return k.prefix + NodesKey }

// Edges returns the key holding the edge list.
func (k Keys) Edges() string { return k.prefix + EdgesKey }

// Render returns the key of a rendered diagram with the given digest.
func (k Keys) Render(digest string) string { return k.prefix + "render:" + digest }

// All returns every snapshot key of the topology.
func (k Keys) All() []string { return []string{k.Nodes(), k.Edges()} }
