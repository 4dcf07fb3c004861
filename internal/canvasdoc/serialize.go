package canvasdoc

import (
	"encoding/json"

	"github.com/halvard/skein/internal/apperr"
	"github.com/halvard/skein/internal/model"
)

// Serialize converts a canvas snapshot into document text plus the name/id
// projections. Fields not covered by opts are omitted from the payload.
func Serialize(doc *model.Document, opts Options) (string, Projections, error) {
	out := documentJSON{
		Components: make([]componentJSON, 0, len(doc.Nodes)),
	}

	proj := Projections{Names: []string{}, IDs: []string{}}
	seenNames := make(map[string]bool, len(doc.Nodes))

	for _, n := range doc.Nodes {
		c, err := encodeComponent(n, opts)
		if err != nil {
			return "", Projections{}, err
		}
		out.Components = append(out.Components, c)

		// Projections are computed here, once, so consumers do not rescan
		// the node set.
		if !seenNames[n.Name] {
			seenNames[n.Name] = true
			proj.Names = append(proj.Names, n.Name)
		}
		proj.IDs = append(proj.IDs, n.ID)
	}

	if opts.Connections {
		out.Connections = make([]connectionJSON, 0, len(doc.Connections))
		for _, cn := range doc.Connections {
			out.Connections = append(out.Connections, connectionJSON(cn))
		}
	}
	if opts.Groups {
		out.Groups = make([]groupJSON, 0, len(doc.Groups))
		for _, g := range doc.Groups {
			out.Groups = append(out.Groups, groupJSON(g))
		}
	}
	if opts.Metadata {
		out.Metadata = doc.Metadata
	}
	if opts.Values {
		out.Values = doc.Values
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", Projections{}, apperr.Serialization("", "encode document: %v", err)
	}
	return string(raw), proj, nil
}

func encodeComponent(n model.Node, opts Options) (componentJSON, error) {
	c := componentJSON{
		ID:             n.ID,
		Name:           n.Name,
		Kind:           string(n.Kind),
		Category:       n.Category,
		Subcategory:    n.Subcategory,
		Enabled:        n.Flags.Enabled,
		PreviewCapable: n.Flags.PreviewCapable,
		PreviewOn:      n.Flags.PreviewOn,
		Position:       n.Position,
		InputSettings:  encodeSlots(n.Inputs),
		OutputSettings: encodeSlots(n.Outputs),
	}
	if opts.SelectionState {
		selected := n.Flags.Selected
		c.Selected = &selected
	}
	if n.Kind == model.KindScript {
		if n.Script == nil {
			return componentJSON{}, apperr.Serialization("componentState", "script node %q has no script payload", n.ID)
		}
		lang, raw, err := marshalExtension(*n.Script)
		if err != nil {
			return componentJSON{}, err
		}
		c.ComponentState = &componentState{
			Extensions: map[string]json.RawMessage{lang: raw},
		}
	}
	return c, nil
}

func encodeSlots(slots []model.ParameterSlot) []slotJSON {
	if len(slots) == 0 {
		return nil
	}
	out := make([]slotJSON, len(slots))
	for i, s := range slots {
		out[i] = slotJSON{
			Name:         s.Name,
			VariableName: s.VariableName,
			TypeHint:     s.EffectiveTypeHint(),
			Access:       string(s.Access),
			DataMapping:  string(s.Mapping),
			Reverse:      s.Reverse,
			Simplify:     s.Simplify,
			Invert:       s.Invert,
			Required:     s.Required,
			Expression:   s.Expression,
		}
	}
	return out
}
