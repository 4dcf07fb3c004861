// Package model defines the snapshot types for the visual dataflow canvas.
// Nodes, connections, and groups are read-only snapshots taken from the live
// canvas at query time; they are not a persistent cache.
package model

// Kind is the structural kind of a node. The live canvas exposes an open
// subclass hierarchy, but query and serialization logic only dispatches on
// these few categories, so a closed tagged variant is enough.
type Kind string

const (
	KindParameter Kind = "parameter"
	KindComponent Kind = "component"
	KindScript    Kind = "script"
)

// Access is the access mode of a parameter slot.
type Access string

const (
	AccessItem Access = "item"
	AccessList Access = "list"
	AccessTree Access = "tree"
)

// DataMapping is the data-mapping applied to a parameter slot.
type DataMapping string

const (
	MappingNone    DataMapping = "none"
	MappingFlatten DataMapping = "flatten"
	MappingGraft   DataMapping = "graft"
)

// GenericTypeHint marks a slot whose concrete type is unknown. Serializers
// must never downgrade a more specific hint to this marker.
const GenericTypeHint = "generic"

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ParameterSlot is one ordered input or output slot of a node. Slot order is
// significant and stable; serializers may use position as a secondary key.
type ParameterSlot struct {
	Name         string      `json:"name"`
	VariableName string      `json:"variableName,omitempty"`
	TypeHint     string      `json:"typeHint,omitempty"`
	Access       Access      `json:"access,omitempty"`
	Mapping      DataMapping `json:"dataMapping,omitempty"`
	Reverse      bool        `json:"reverse,omitempty"`
	Simplify     bool        `json:"simplify,omitempty"`
	Invert       bool        `json:"invert,omitempty"`
	Required     bool        `json:"required,omitempty"`
	Expression   string      `json:"expression,omitempty"`
}

// EffectiveTypeHint returns the slot's type hint, falling back to the generic
// marker only when no specific hint exists.
func (p ParameterSlot) EffectiveTypeHint() string {
	if p.TypeHint == "" {
		return GenericTypeHint
	}
	return p.TypeHint
}

// Flags carries a node's attribute flags at snapshot time.
type Flags struct {
	Selected       bool `json:"selected,omitempty"`
	Enabled        bool `json:"enabled"`
	HasError       bool `json:"hasError,omitempty"`
	HasWarning     bool `json:"hasWarning,omitempty"`
	HasRemark      bool `json:"hasRemark,omitempty"`
	PreviewCapable bool `json:"previewCapable,omitempty"`
	PreviewOn      bool `json:"previewOn,omitempty"`
}

// Script carries the source payload of a script node.
type Script struct {
	Language string `json:"language"`
	Source   string `json:"source"`
}

// Node is one unit in the dataflow graph.
type Node struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Name        string          `json:"name"`
	Category    string          `json:"category,omitempty"`
	Subcategory string          `json:"subcategory,omitempty"`
	Flags       Flags           `json:"flags"`
	Inputs      []ParameterSlot `json:"inputs,omitempty"`
	Outputs     []ParameterSlot `json:"outputs,omitempty"`
	Position    Position        `json:"position"`
	Script      *Script         `json:"script,omitempty"` // only for KindScript
}

// Connection is a directed wire from one node's output slot to another
// node's input slot.
type Connection struct {
	SourceID   string `json:"sourceId"`
	SourceSlot int    `json:"sourceSlot"`
	TargetID   string `json:"targetId"`
	TargetSlot int    `json:"targetSlot"`
}

// Group is a named, colored set of member nodes.
type Group struct {
	Name    string   `json:"name,omitempty"`
	Color   string   `json:"color,omitempty"`
	Members []string `json:"members"`
}

// Document is a self-contained snapshot of a (sub)graph. Node order is
// preserved for reproducibility.
type Document struct {
	Nodes       []Node              `json:"nodes"`
	Connections []Connection        `json:"connections,omitempty"`
	Groups      []Group             `json:"groups,omitempty"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
	Values      map[string][]string `json:"values,omitempty"` // node id -> captured output values
}

// NodeByID returns the document node with the given id, or nil.
func (d *Document) NodeByID(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}
