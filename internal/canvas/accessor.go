// Package canvas defines the live-canvas accessor contract and the
// single-writer dispatcher through which every mutation must pass.
package canvas

import "github.com/halvard/skein/internal/model"

// NodeProps is a partial property update for a live node. Nil fields are
// left unchanged.
type NodeProps struct {
	Name      *string
	Position  *model.Position
	Enabled   *bool
	PreviewOn *bool
	Inputs    []model.ParameterSlot
	Outputs   []model.ParameterSlot
	Script    *model.Script
}

// Accessor is the live-canvas collaborator. Read methods return snapshots
// and may be called from any goroutine; mutation methods must only be
// invoked through a Dispatcher.
type Accessor interface {
	// Nodes returns a snapshot of every live node, in stable order.
	Nodes() []model.Node
	// FindNode returns the live node with the given id.
	FindNode(id string) (model.Node, bool)
	// Connections returns a snapshot of every live connection.
	Connections() []model.Connection
	// Groups returns a snapshot of every live group.
	Groups() []model.Group

	// CreateNode adds a node to the canvas.
	CreateNode(n model.Node) error
	// SetNodeProperties applies a partial update to a live node.
	SetNodeProperties(id string, props NodeProps) error
	// Connect adds a wire between two live nodes.
	Connect(c model.Connection) error
	// RecordUndo records one undo checkpoint covering the edits since the
	// previous checkpoint.
	RecordUndo(label string)
	// Recompute triggers a solution recompute.
	Recompute()
}
