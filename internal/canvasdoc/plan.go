package canvasdoc

import (
	"github.com/google/uuid"

	"github.com/halvard/skein/internal/model"
)

// PlacementPlan maps every declared document id to the id that will exist on
// the live canvas after placement. Callers chain subsequent operations on the
// post-placement id, never the declared one.
type PlacementPlan struct {
	// IDMap maps declaredId -> live id for every document node.
	IDMap map[string]string `json:"idMap"`
	// Create lists declared ids that will become new nodes, in document order.
	Create []string `json:"create"`
	// Update lists declared ids that match live nodes and will be edited in
	// place, in document order.
	Update []string `json:"update"`
}

// LiveID returns the post-placement id for a declared id.
func (p *PlacementPlan) LiveID(declared string) (string, bool) {
	id, ok := p.IDMap[declared]
	return id, ok
}

// Plan decides, for each declared node, whether placement creates a fresh
// node or updates a live one. exists reports whether a node with the given id
// is currently present on the live canvas.
func Plan(doc *model.Document, exists func(id string) bool) PlacementPlan {
	plan := PlacementPlan{IDMap: make(map[string]string, len(doc.Nodes))}
	for _, n := range doc.Nodes {
		if exists(n.ID) {
			plan.IDMap[n.ID] = n.ID
			plan.Update = append(plan.Update, n.ID)
			continue
		}
		plan.IDMap[n.ID] = uuid.New().String()
		plan.Create = append(plan.Create, n.ID)
	}
	return plan
}

// Remap rewrites a document's node ids, connection endpoints, group members,
// and value keys through the plan's id map. Used after placement so the
// caller sees the document as it exists live.
func Remap(doc *model.Document, plan PlacementPlan) *model.Document {
	out := &model.Document{
		Nodes:    make([]model.Node, len(doc.Nodes)),
		Metadata: doc.Metadata,
	}
	mapped := func(id string) string {
		if live, ok := plan.IDMap[id]; ok {
			return live
		}
		return id
	}
	for i, n := range doc.Nodes {
		n.ID = mapped(n.ID)
		out.Nodes[i] = n
	}
	for _, c := range doc.Connections {
		c.SourceID = mapped(c.SourceID)
		c.TargetID = mapped(c.TargetID)
		out.Connections = append(out.Connections, c)
	}
	for _, g := range doc.Groups {
		members := make([]string, len(g.Members))
		for i, m := range g.Members {
			members[i] = mapped(m)
		}
		g.Members = members
		out.Groups = append(out.Groups, g)
	}
	if doc.Values != nil {
		out.Values = make(map[string][]string, len(doc.Values))
		for id, vals := range doc.Values {
			out.Values[mapped(id)] = vals
		}
	}
	return out
}
