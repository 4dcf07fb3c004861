package selector

import (
	"testing"

	"github.com/halvard/skein/internal/model"
)

func chain(ids ...string) ([]model.Node, []model.Connection) {
	nodes := make([]model.Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, model.Node{ID: id, Kind: model.KindComponent, Name: "n-" + id})
	}
	var conns []model.Connection
	for i := 0; i+1 < len(ids); i++ {
		conns = append(conns, model.Connection{SourceID: ids[i], TargetID: ids[i+1]})
	}
	return nodes, conns
}

func idsOf(nodes []model.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func equalIDs(got []model.Node, want ...string) bool {
	g := idsOf(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSelect_DepthZeroEqualsFiltered(t *testing.T) {
	nodes, conns := chain("a", "b", "c")
	nodes[1].Flags.Selected = true

	res := Select(nodes, conns, Criteria{Attribute: []string{"selected"}, Depth: 0})
	if !equalIDs(res.Matched, "b") {
		t.Fatalf("matched = %v, want [b]", idsOf(res.Matched))
	}
	if !equalIDs(res.Expanded, "b") {
		t.Fatalf("expanded = %v, want [b] at depth 0", idsOf(res.Expanded))
	}
}

func TestSelect_ChainExpansion(t *testing.T) {
	nodes, conns := chain("a", "b", "c")
	nodes[1].Flags.Selected = true
	crit := Criteria{Attribute: []string{"selected"}}

	crit.Depth = 1
	res := Select(nodes, conns, crit)
	if !equalIDs(res.Expanded, "a", "b", "c") {
		t.Fatalf("depth 1 expanded = %v, want [a b c]", idsOf(res.Expanded))
	}

	crit.Depth = 2
	res = Select(nodes, conns, crit)
	if !equalIDs(res.Expanded, "a", "b", "c") {
		t.Fatalf("depth 2 expanded = %v, want [a b c]", idsOf(res.Expanded))
	}
}

func TestSelect_Monotone(t *testing.T) {
	nodes, conns := chain("a", "b", "c", "d", "e")
	nodes[2].Flags.Selected = true
	crit := Criteria{Attribute: []string{"selected"}}

	prev := 0
	for depth := 0; depth <= 4; depth++ {
		crit.Depth = depth
		res := Select(nodes, conns, crit)
		if len(res.Expanded) < prev {
			t.Fatalf("depth %d shrank the expanded set: %d < %d", depth, len(res.Expanded), prev)
		}
		prev = len(res.Expanded)
	}
	if prev != 5 {
		t.Fatalf("full-depth expansion = %d nodes, want 5", prev)
	}
}

func TestSelect_NegativeDepthClampsToZero(t *testing.T) {
	nodes, conns := chain("a", "b")
	nodes[0].Flags.Selected = true

	res := Select(nodes, conns, Criteria{Attribute: []string{"selected"}, Depth: -3})
	if !equalIDs(res.Expanded, "a") {
		t.Fatalf("expanded = %v, want [a]", idsOf(res.Expanded))
	}
}

func TestSelect_ExpansionIgnoresFilters(t *testing.T) {
	// b is disabled; expansion from a must still reach it.
	nodes, conns := chain("a", "b")
	nodes[0].Flags.Selected = true
	nodes[0].Flags.Enabled = true

	res := Select(nodes, conns, Criteria{Attribute: []string{"selected", "enabled"}, Depth: 1})
	if !equalIDs(res.Expanded, "a", "b") {
		t.Fatalf("expanded = %v, want [a b]", idsOf(res.Expanded))
	}
}

func TestSelect_IdentityRestriction(t *testing.T) {
	nodes, conns := chain("a", "b", "c")
	for i := range nodes {
		nodes[i].Flags.Selected = true
	}

	res := Select(nodes, conns, Criteria{
		Attribute: []string{"selected"},
		IDs:       []string{"b", "missing"},
	})
	if !equalIDs(res.Matched, "b") {
		t.Fatalf("matched = %v, want [b]", idsOf(res.Matched))
	}
}

func TestSelect_TrimConnections(t *testing.T) {
	nodes, conns := chain("a", "b", "c")
	nodes[0].Flags.Selected = true
	crit := Criteria{Attribute: []string{"selected"}, Depth: 1}

	res := Select(nodes, conns, crit)
	if len(res.Connections) != 2 {
		t.Fatalf("untrimmed connections = %d, want 2", len(res.Connections))
	}

	crit.TrimConnections = true
	res = Select(nodes, conns, crit)
	if len(res.Connections) != 1 {
		t.Fatalf("trimmed connections = %d, want 1", len(res.Connections))
	}
	if res.Connections[0].SourceID != "a" || res.Connections[0].TargetID != "b" {
		t.Fatalf("trimmed connection = %+v, want a->b", res.Connections[0])
	}
}

func TestSelect_EmptyResultIsNotAnError(t *testing.T) {
	nodes, conns := chain("a", "b")

	res := Select(nodes, conns, Criteria{Attribute: []string{"selected"}, Depth: 2})
	if len(res.Matched) != 0 || len(res.Expanded) != 0 {
		t.Fatalf("expected empty selection, got matched=%v expanded=%v",
			idsOf(res.Matched), idsOf(res.Expanded))
	}
}
