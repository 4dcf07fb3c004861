package canvasdoc

import (
	"encoding/json"
	"fmt"

	"github.com/halvard/skein/internal/apperr"
	"github.com/halvard/skein/internal/model"
)

// Deserialize parses document text back into a canvas snapshot. Malformed
// structure is a hard failure naming the offending field; nothing is silently
// coerced.
func Deserialize(text string) (*model.Document, error) {
	var raw documentJSON
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, apperr.Serialization("", "malformed document: %v", err)
	}
	if raw.Components == nil {
		return nil, apperr.Serialization("components", "missing required array")
	}

	doc := &model.Document{
		Nodes:    make([]model.Node, 0, len(raw.Components)),
		Metadata: raw.Metadata,
		Values:   raw.Values,
	}

	seen := make(map[string]bool, len(raw.Components))
	for i, c := range raw.Components {
		if err := c.validate(); err != nil {
			return nil, apperr.Serialization(fmt.Sprintf("components[%d]", i), "%v", err)
		}
		if seen[c.ID] {
			return nil, apperr.Serialization(fmt.Sprintf("components[%d].id", i), "duplicate node id %q", c.ID)
		}
		seen[c.ID] = true

		n, err := decodeComponent(c)
		if err != nil {
			return nil, err
		}
		doc.Nodes = append(doc.Nodes, n)
	}

	for i, cn := range raw.Connections {
		if err := cn.validate(); err != nil {
			return nil, apperr.Serialization(fmt.Sprintf("connections[%d]", i), "%v", err)
		}
		if !seen[cn.SourceID] {
			return nil, apperr.Serialization(fmt.Sprintf("connections[%d].sourceId", i), "unknown node id %q", cn.SourceID)
		}
		if !seen[cn.TargetID] {
			return nil, apperr.Serialization(fmt.Sprintf("connections[%d].targetId", i), "unknown node id %q", cn.TargetID)
		}
		doc.Connections = append(doc.Connections, model.Connection(cn))
	}

	for i, g := range raw.Groups {
		for _, member := range g.Members {
			if !seen[member] {
				return nil, apperr.Serialization(fmt.Sprintf("groups[%d].members", i), "unknown node id %q", member)
			}
		}
		doc.Groups = append(doc.Groups, model.Group(g))
	}

	return doc, nil
}

// decodeComponent resolves one node record, including its structural kind
// against the closed language registry for script nodes.
func decodeComponent(c componentJSON) (model.Node, error) {
	n := model.Node{
		ID:          c.ID,
		Kind:        model.Kind(c.Kind),
		Name:        c.Name,
		Category:    c.Category,
		Subcategory: c.Subcategory,
		Flags: model.Flags{
			Enabled:        c.Enabled,
			PreviewCapable: c.PreviewCapable,
			PreviewOn:      c.PreviewOn,
		},
		Position: c.Position,
		Inputs:   decodeSlots(c.InputSettings),
		Outputs:  decodeSlots(c.OutputSettings),
	}
	if c.Selected != nil {
		n.Flags.Selected = *c.Selected
	}

	if n.Kind == model.KindScript {
		if c.ComponentState == nil || len(c.ComponentState.Extensions) == 0 {
			return model.Node{}, apperr.Serialization("componentState.extensions",
				"script node %q carries no language block", c.ID)
		}
		if len(c.ComponentState.Extensions) > 1 {
			return model.Node{}, apperr.Serialization("componentState.extensions",
				"script node %q carries more than one language block", c.ID)
		}
		for lang, raw := range c.ComponentState.Extensions {
			if _, err := BaseKind(lang); err != nil {
				return model.Node{}, err
			}
			script, err := unmarshalExtension(lang, raw)
			if err != nil {
				return model.Node{}, err
			}
			n.Script = &script
		}
	} else if c.ComponentState != nil && len(c.ComponentState.Extensions) > 0 {
		return model.Node{}, apperr.Serialization("componentState.extensions",
			"non-script node %q carries a language block", c.ID)
	}

	return n, nil
}

func decodeSlots(slots []slotJSON) []model.ParameterSlot {
	if len(slots) == 0 {
		return nil
	}
	out := make([]model.ParameterSlot, len(slots))
	for i, s := range slots {
		hint := s.TypeHint
		if hint == model.GenericTypeHint {
			hint = ""
		}
		out[i] = model.ParameterSlot{
			Name:         s.Name,
			VariableName: s.VariableName,
			TypeHint:     hint,
			Access:       model.Access(s.Access),
			Mapping:      model.DataMapping(s.DataMapping),
			Reverse:      s.Reverse,
			Simplify:     s.Simplify,
			Invert:       s.Invert,
			Required:     s.Required,
			Expression:   s.Expression,
		}
	}
	return out
}
