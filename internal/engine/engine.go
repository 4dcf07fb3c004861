// Package engine coordinates the selector, serializer, healing loop, and the
// single-writer canvas dispatcher behind the tool-facing operations.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/halvard/skein/internal/apperr"
	"github.com/halvard/skein/internal/canvas"
	"github.com/halvard/skein/internal/canvasdoc"
	"github.com/halvard/skein/internal/model"
	"github.com/halvard/skein/internal/scriptheal"
	"github.com/halvard/skein/internal/selector"
)

// QueryRequest is one selection-and-serialization request from the tool layer.
type QueryRequest struct {
	Attribute  []string          `json:"attribute,omitempty"`
	Structural []string          `json:"structural,omitempty"`
	Category   []string          `json:"category,omitempty"`
	IDs        []string          `json:"ids,omitempty"`
	Depth      int               `json:"depth,omitempty"`
	Trim       bool              `json:"trim,omitempty"`
	Options    canvasdoc.Options `json:"options"`
}

// QueryResult is the serialized selection plus the convenience projections.
type QueryResult struct {
	Document string   `json:"document"`
	Names    []string `json:"names"`
	IDs      []string `json:"ids"`
	Matched  int      `json:"matched"`
	Expanded int      `json:"expanded"`
}

// PlaceResult reports one write-back: the full declared-to-live id mapping
// plus which declared ids were created and which were updated in place.
type PlaceResult struct {
	IDMap   map[string]string `json:"idMap"`
	Created []string          `json:"created"`
	Updated []string          `json:"updated"`
}

// Engine is the tool-facing service.
type Engine struct {
	dispatcher *canvas.Dispatcher
	heal       *scriptheal.Loop
}

// New creates an Engine over the given dispatcher and healing loop.
func New(dispatcher *canvas.Dispatcher, heal *scriptheal.Loop) *Engine {
	return &Engine{dispatcher: dispatcher, heal: heal}
}

// Query filters the live canvas, expands by connection depth, and serializes
// the result. Reads run off the writer goroutine. An empty selection is a
// valid result, not an error.
func (e *Engine) Query(_ context.Context, req QueryRequest) (*QueryResult, error) {
	acc := e.dispatcher.Reader()
	nodes := acc.Nodes()
	conns := acc.Connections()

	res := selector.Select(nodes, conns, selector.Criteria{
		Attribute:       req.Attribute,
		Structural:      req.Structural,
		Category:        req.Category,
		IDs:             req.IDs,
		Depth:           req.Depth,
		TrimConnections: req.Trim,
	})

	doc := &model.Document{
		Nodes:       res.Expanded,
		Connections: res.Connections,
	}
	if req.Options.Groups {
		doc.Groups = groupsFor(acc.Groups(), res.Expanded)
	}

	text, proj, err := canvasdoc.Serialize(doc, req.Options)
	if err != nil {
		return nil, err
	}

	slog.Debug("engine: query",
		slog.Int("matched", len(res.Matched)),
		slog.Int("expanded", len(res.Expanded)),
		slog.Int("depth", req.Depth))

	return &QueryResult{
		Document: text,
		Names:    proj.Names,
		IDs:      proj.IDs,
		Matched:  len(res.Matched),
		Expanded: len(res.Expanded),
	}, nil
}

// groupsFor restricts live groups to members present in the selection and
// drops groups left empty.
func groupsFor(groups []model.Group, nodes []model.Node) []model.Group {
	inSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		inSet[n.ID] = true
	}
	var out []model.Group
	for _, g := range groups {
		var members []string
		for _, m := range g.Members {
			if inSet[m] {
				members = append(members, m)
			}
		}
		if len(members) > 0 {
			g.Members = members
			out = append(out, g)
		}
	}
	return out
}

// Place validates document text, computes the placement plan, and applies it
// as one undo-recorded batch on the writer goroutine. Validation failures
// abort before any mutation; per-connection failures after placement are
// partial (reported, without invalidating nodes that did place).
func (e *Engine) Place(ctx context.Context, documentText string) (*PlaceResult, error) {
	doc, err := canvasdoc.Deserialize(documentText)
	if err != nil {
		return nil, err
	}
	if len(doc.Nodes) == 0 {
		return nil, apperr.Validation("document declares no nodes")
	}

	acc := e.dispatcher.Reader()
	plan := canvasdoc.Plan(doc, func(id string) bool {
		_, ok := acc.FindNode(id)
		return ok
	})

	result := &PlaceResult{
		IDMap:   plan.IDMap,
		Created: []string{},
		Updated: []string{},
	}

	err = e.dispatcher.Do(ctx, func(w canvas.Accessor) error {
		for _, n := range doc.Nodes {
			liveID := plan.IDMap[n.ID]
			if _, exists := w.FindNode(liveID); exists {
				if err := w.SetNodeProperties(liveID, propsFrom(n)); err != nil {
					return err
				}
				result.Updated = append(result.Updated, n.ID)
				continue
			}
			created := n
			created.ID = liveID
			if err := w.CreateNode(created); err != nil {
				return err
			}
			result.Created = append(result.Created, n.ID)
		}

		for _, c := range doc.Connections {
			c.SourceID = plan.IDMap[c.SourceID]
			c.TargetID = plan.IDMap[c.TargetID]
			if err := w.Connect(c); err != nil {
				// Nodes already placed stay valid.
				slog.Warn("engine: connection skipped",
					slog.String("source", c.SourceID),
					slog.String("target", c.TargetID),
					slog.String("error", err.Error()))
			}
		}

		w.RecordUndo(fmt.Sprintf("place %d nodes", len(doc.Nodes)))
		w.Recompute()
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("engine: document placed",
		slog.Int("created", len(result.Created)),
		slog.Int("updated", len(result.Updated)))

	return result, nil
}

func propsFrom(n model.Node) canvas.NodeProps {
	name := n.Name
	pos := n.Position
	enabled := n.Flags.Enabled
	preview := n.Flags.PreviewOn
	return canvas.NodeProps{
		Name:      &name,
		Position:  &pos,
		Enabled:   &enabled,
		PreviewOn: &preview,
		Inputs:    n.Inputs,
		Outputs:   n.Outputs,
		Script:    n.Script,
	}
}

// HealScript runs the validation / self-correction loop over a script body.
func (e *Engine) HealScript(ctx context.Context, language, source string) (*scriptheal.Outcome, error) {
	if _, err := canvasdoc.BaseKind(language); err != nil {
		return nil, err
	}
	if source == "" {
		return nil, apperr.Validation("script source is empty")
	}
	outcome, err := e.heal.Run(ctx, language, source)
	if err != nil {
		// Provider failures still carry the last candidate.
		return &outcome, err
	}
	return &outcome, nil
}
