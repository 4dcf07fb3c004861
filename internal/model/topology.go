package model

// Topology is the connection structure of a node set, precomputed once so
// structural predicates and neighborhood expansion do not rescan the full
// connection list per node.
type Topology struct {
	incoming  map[string]int
	outgoing  map[string]int
	neighbors map[string][]string
}

// NewTopology builds a Topology from a connection list.
func NewTopology(conns []Connection) *Topology {
	t := &Topology{
		incoming:  make(map[string]int),
		outgoing:  make(map[string]int),
		neighbors: make(map[string][]string),
	}
	seen := make(map[[2]string]bool)
	for _, c := range conns {
		t.outgoing[c.SourceID]++
		t.incoming[c.TargetID]++
		// Neighbor sets are undirected and deduplicated; parallel wires
		// between the same pair of nodes count once.
		if !seen[[2]string{c.SourceID, c.TargetID}] {
			seen[[2]string{c.SourceID, c.TargetID}] = true
			t.neighbors[c.SourceID] = append(t.neighbors[c.SourceID], c.TargetID)
			t.neighbors[c.TargetID] = append(t.neighbors[c.TargetID], c.SourceID)
		}
	}
	return t
}

// InDegree returns the number of incoming wires for id.
func (t *Topology) InDegree(id string) int { return t.incoming[id] }

// OutDegree returns the number of outgoing wires for id.
func (t *Topology) OutDegree(id string) int { return t.outgoing[id] }

// Neighbors returns every node directly wired to id, in either direction.
func (t *Topology) Neighbors(id string) []string { return t.neighbors[id] }
