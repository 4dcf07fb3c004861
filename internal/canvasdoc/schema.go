// Package canvasdoc converts canvas snapshots to and from the portable
// structured-document format, and computes the placement plan used when a
// document is written back onto the live canvas.
package canvasdoc

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/halvard/skein/internal/model"
)

// Options are the independent serialization toggles. Everything defaults to
// off so the minimal payload stays small.
type Options struct {
	Connections    bool `json:"connections,omitempty"`
	Groups         bool `json:"groups,omitempty"`
	Values         bool `json:"values,omitempty"`
	Metadata       bool `json:"metadata,omitempty"`
	SelectionState bool `json:"selectionState,omitempty"`
}

// documentJSON is the root wire shape.
type documentJSON struct {
	Components  []componentJSON     `json:"components"`
	Connections []connectionJSON    `json:"connections,omitempty"`
	Groups      []groupJSON         `json:"groups,omitempty"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
	Values      map[string][]string `json:"values,omitempty"`
}

// componentJSON is one node record on the wire.
type componentJSON struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Category       string          `json:"category,omitempty"`
	Subcategory    string          `json:"subcategory,omitempty"`
	Enabled        bool            `json:"enabled"`
	Selected       *bool           `json:"selected,omitempty"`
	PreviewCapable bool            `json:"previewCapable,omitempty"`
	PreviewOn      bool            `json:"previewOn,omitempty"`
	Position       model.Position  `json:"position"`
	InputSettings  []slotJSON      `json:"inputSettings,omitempty"`
	OutputSettings []slotJSON      `json:"outputSettings,omitempty"`
	ComponentState *componentState `json:"componentState,omitempty"`
}

func (c componentJSON) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Kind, validation.Required, validation.In(
			string(model.KindParameter), string(model.KindComponent), string(model.KindScript))),
	)
}

// componentState carries per-language extension blocks for script nodes.
type componentState struct {
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// slotJSON is one parameter-slot record. The type hint is always emitted as
// the most specific hint known; the generic marker appears only when nothing
// better exists.
type slotJSON struct {
	Name         string `json:"name"`
	VariableName string `json:"variableName,omitempty"`
	TypeHint     string `json:"typeHint"`
	Access       string `json:"access,omitempty"`
	DataMapping  string `json:"dataMapping,omitempty"`
	Reverse      bool   `json:"reverse,omitempty"`
	Simplify     bool   `json:"simplify,omitempty"`
	Invert       bool   `json:"invert,omitempty"`
	Required     bool   `json:"required,omitempty"`
	Expression   string `json:"expression,omitempty"`
}

type connectionJSON struct {
	SourceID   string `json:"sourceId"`
	SourceSlot int    `json:"sourceSlot"`
	TargetID   string `json:"targetId"`
	TargetSlot int    `json:"targetSlot"`
}

func (c connectionJSON) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SourceID, validation.Required),
		validation.Field(&c.TargetID, validation.Required),
		validation.Field(&c.SourceSlot, validation.Min(0)),
		validation.Field(&c.TargetSlot, validation.Min(0)),
	)
}

type groupJSON struct {
	Name    string   `json:"name,omitempty"`
	Color   string   `json:"color,omitempty"`
	Members []string `json:"members"`
}

// Projections are the convenience lists computed alongside a serialized
// document: the distinct node names and ids in the result.
type Projections struct {
	Names []string `json:"names"`
	IDs   []string `json:"ids"`
}
