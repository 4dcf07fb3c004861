// Package selector applies the node filter to a canvas snapshot and expands
// the result through the connection graph by a bounded number of hops.
package selector

import (
	"github.com/halvard/skein/internal/filter"
	"github.com/halvard/skein/internal/model"
)

// Criteria describes one selection request.
type Criteria struct {
	// Raw token arrays per facet; an absent or empty facet matches everything.
	Attribute  []string
	Structural []string
	Category   []string

	// IDs, when non-empty, restricts the candidate set before facet
	// filtering. Ids absent from the canvas are silently skipped.
	IDs []string

	// Depth is the number of BFS rounds used to expand the filtered set to
	// its structural neighborhood. Negative values clamp to 0.
	Depth int

	// TrimConnections restricts output connections to those with both
	// endpoints inside the expanded set.
	TrimConnections bool
}

// Result is a selection outcome. An empty selection is a valid, non-error
// result.
type Result struct {
	// Matched are the nodes that passed facet filtering, in input order.
	Matched []model.Node
	// Expanded is Matched plus every node reached by BFS expansion, in
	// deterministic order (input order of the node universe).
	Expanded []model.Node
	// Connections are the output connections, trimmed or passed through.
	Connections []model.Connection
}

// Select filters nodes and expands the match by connection depth. Facet
// filters are never reapplied to nodes reached through expansion; expansion
// is purely structural.
func Select(nodes []model.Node, conns []model.Connection, c Criteria) Result {
	topo := model.NewTopology(conns)
	f := filter.New(c.Attribute, c.Structural, c.Category)

	restricted := make(map[string]bool, len(c.IDs))
	for _, id := range c.IDs {
		restricted[id] = true
	}

	inSet := make(map[string]bool)
	var matched []model.Node
	for _, n := range nodes {
		if len(c.IDs) > 0 && !restricted[n.ID] {
			continue
		}
		if f.Match(n, topo) {
			matched = append(matched, n)
			inSet[n.ID] = true
		}
	}

	depth := c.Depth
	if depth < 0 {
		depth = 0
	}

	// BFS over undirected neighbor sets. Each round grows the frontier by
	// one hop; the loop stops early once the graph is exhausted.
	frontier := make([]string, 0, len(matched))
	for _, n := range matched {
		frontier = append(frontier, n.ID)
	}
	for round := 0; round < depth && len(frontier) > 0; round++ {
		var next []string
		for _, id := range frontier {
			for _, nb := range topo.Neighbors(id) {
				if !inSet[nb] {
					inSet[nb] = true
					next = append(next, nb)
				}
			}
		}
		frontier = next
	}

	// Emit expanded nodes in the universe's order for determinism.
	var expanded []model.Node
	for _, n := range nodes {
		if inSet[n.ID] {
			expanded = append(expanded, n)
		}
	}

	out := conns
	if c.TrimConnections {
		out = nil
		for _, cn := range conns {
			if inSet[cn.SourceID] && inSet[cn.TargetID] {
				out = append(out, cn)
			}
		}
	}

	return Result{Matched: matched, Expanded: expanded, Connections: out}
}
