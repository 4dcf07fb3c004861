package canvas

import (
	"sync"

	"github.com/halvard/skein/internal/apperr"
	"github.com/halvard/skein/internal/model"
)

// Memory is an in-memory canvas used by the server and by tests. The lock
// only guards snapshot reads against the single writer; it does not make
// concurrent writers safe, which the dispatcher rules out anyway.
type Memory struct {
	mu     sync.RWMutex
	order  []string
	nodes  map[string]model.Node
	conns  []model.Connection
	groups []model.Group

	undoLabels []string
	recomputes int
}

// NewMemory creates an empty in-memory canvas.
func NewMemory() *Memory {
	return &Memory{nodes: make(map[string]model.Node)}
}

var _ Accessor = (*Memory)(nil)

// Nodes returns every node in insertion order.
func (m *Memory) Nodes() []model.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id])
	}
	return out
}

// FindNode returns the node with the given id.
func (m *Memory) FindNode(id string) (model.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	return n, ok
}

// Connections returns a copy of the connection list.
func (m *Memory) Connections() []model.Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Connection, len(m.conns))
	copy(out, m.conns)
	return out
}

// Groups returns a copy of the group list.
func (m *Memory) Groups() []model.Group {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Group, len(m.groups))
	copy(out, m.groups)
	return out
}

// CreateNode adds a node. The id must be unique.
func (m *Memory) CreateNode(n model.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		return apperr.Validation("node id is empty")
	}
	if _, exists := m.nodes[n.ID]; exists {
		return apperr.Validation("node id %q already exists", n.ID)
	}
	m.nodes[n.ID] = n
	m.order = append(m.order, n.ID)
	return nil
}

// SetNodeProperties applies a partial update to an existing node.
func (m *Memory) SetNodeProperties(id string, props NodeProps) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return apperr.NotFound("node %q", id)
	}
	if props.Name != nil {
		n.Name = *props.Name
	}
	if props.Position != nil {
		n.Position = *props.Position
	}
	if props.Enabled != nil {
		n.Flags.Enabled = *props.Enabled
	}
	if props.PreviewOn != nil {
		n.Flags.PreviewOn = *props.PreviewOn
	}
	if props.Inputs != nil {
		n.Inputs = props.Inputs
	}
	if props.Outputs != nil {
		n.Outputs = props.Outputs
	}
	if props.Script != nil {
		n.Script = props.Script
	}
	m.nodes[id] = n
	return nil
}

// Connect adds a wire. Both endpoints must exist.
func (m *Memory) Connect(c model.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[c.SourceID]; !ok {
		return apperr.NotFound("source node %q", c.SourceID)
	}
	if _, ok := m.nodes[c.TargetID]; !ok {
		return apperr.NotFound("target node %q", c.TargetID)
	}
	m.conns = append(m.conns, c)
	return nil
}

// AddGroup adds a group (test and import convenience; not part of Accessor).
func (m *Memory) AddGroup(g model.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = append(m.groups, g)
}

// RecordUndo records one undo checkpoint label.
func (m *Memory) RecordUndo(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undoLabels = append(m.undoLabels, label)
}

// Recompute counts recompute triggers.
func (m *Memory) Recompute() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputes++
}

// UndoLabels returns the recorded undo checkpoint labels.
func (m *Memory) UndoLabels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.undoLabels))
	copy(out, m.undoLabels)
	return out
}

// RecomputeCount returns the number of recompute triggers so far.
func (m *Memory) RecomputeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recomputes
}
