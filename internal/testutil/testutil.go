// Package testutil provides shared test helpers for building canvases and
// archives.
package testutil

import (
	"os"
	"testing"

	"github.com/halvard/skein/internal/archive"
	"github.com/halvard/skein/internal/canvas"
	"github.com/halvard/skein/internal/model"
)

// TestArchive creates a temporary SQLite archive that is automatically
// cleaned up.
func TestArchive(t *testing.T) *archive.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "skein-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := archive.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestCanvas creates an in-memory canvas pre-populated with the given nodes
// and connections, wrapped in a dispatcher that is closed on cleanup.
func TestCanvas(t *testing.T, nodes []model.Node, conns []model.Connection) (*canvas.Memory, *canvas.Dispatcher) {
	t.Helper()
	mem := canvas.NewMemory()
	for _, n := range nodes {
		if err := mem.CreateNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range conns {
		if err := mem.Connect(c); err != nil {
			t.Fatal(err)
		}
	}
	d := canvas.NewDispatcher(mem)
	t.Cleanup(d.Close)
	return mem, d
}

// Node builds an enabled component node with the given id and name.
func Node(id, name string) model.Node {
	return model.Node{
		ID:    id,
		Kind:  model.KindComponent,
		Name:  name,
		Flags: model.Flags{Enabled: true},
	}
}

// Wire builds a connection from the first output slot of src to the first
// input slot of dst.
func Wire(src, dst string) model.Connection {
	return model.Connection{SourceID: src, TargetID: dst}
}

// Chain builds nodes a->b->c->... with one wire between each consecutive
// pair.
func Chain(ids ...string) ([]model.Node, []model.Connection) {
	var nodes []model.Node
	var conns []model.Connection
	for i, id := range ids {
		nodes = append(nodes, Node(id, "Node "+id))
		if i > 0 {
			conns = append(conns, Wire(ids[i-1], id))
		}
	}
	return nodes, conns
}
