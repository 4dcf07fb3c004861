package canvas

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/halvard/skein/internal/apperr"
	"github.com/halvard/skein/internal/model"
)

func TestMemory_CreateAndFind(t *testing.T) {
	m := NewMemory()

	if err := m.CreateNode(model.Node{ID: "a", Name: "A"}); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if err := m.CreateNode(model.Node{ID: "a", Name: "dup"}); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("duplicate id: err = %v, want validation error", err)
	}
	if err := m.CreateNode(model.Node{Name: "no-id"}); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("empty id: err = %v, want validation error", err)
	}

	n, ok := m.FindNode("a")
	if !ok || n.Name != "A" {
		t.Fatalf("FindNode = %+v, %v", n, ok)
	}
}

func TestMemory_NodesKeepInsertionOrder(t *testing.T) {
	m := NewMemory()
	for _, id := range []string{"c", "a", "b"} {
		if err := m.CreateNode(model.Node{ID: id}); err != nil {
			t.Fatalf("CreateNode(%s): %v", id, err)
		}
	}
	nodes := m.Nodes()
	for i, want := range []string{"c", "a", "b"} {
		if nodes[i].ID != want {
			t.Fatalf("nodes[%d] = %s, want %s", i, nodes[i].ID, want)
		}
	}
}

func TestMemory_SetNodeProperties(t *testing.T) {
	m := NewMemory()
	if err := m.CreateNode(model.Node{ID: "a", Name: "old", Flags: model.Flags{Enabled: true}}); err != nil {
		t.Fatal(err)
	}

	name := "new"
	enabled := false
	if err := m.SetNodeProperties("a", NodeProps{Name: &name, Enabled: &enabled}); err != nil {
		t.Fatalf("SetNodeProperties: %v", err)
	}
	n, _ := m.FindNode("a")
	if n.Name != "new" || n.Flags.Enabled {
		t.Errorf("node after update = %+v", n)
	}
	// Untouched fields survive a partial update.
	if n.ID != "a" {
		t.Errorf("id changed: %q", n.ID)
	}

	if err := m.SetNodeProperties("ghost", NodeProps{}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown id: err = %v, want not_found", err)
	}
}

func TestMemory_ConnectValidatesEndpoints(t *testing.T) {
	m := NewMemory()
	if err := m.CreateNode(model.Node{ID: "a"}); err != nil {
		t.Fatal(err)
	}

	if err := m.Connect(model.Connection{SourceID: "a", TargetID: "ghost"}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("dangling target: err = %v, want not_found", err)
	}
	if err := m.CreateNode(model.Node{ID: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Connect(model.Connection{SourceID: "a", TargetID: "b"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if len(m.Connections()) != 1 {
		t.Fatalf("connections = %d, want 1", len(m.Connections()))
	}
}

func TestDispatcher_SerializesMutations(t *testing.T) {
	d := NewDispatcher(NewMemory())
	defer d.Close()

	const writers = 8
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = d.Do(context.Background(), func(Accessor) error {
					counter++ // safe only if jobs run one at a time
					return nil
				})
			}
		}()
	}
	wg.Wait()

	if counter != writers*100 {
		t.Fatalf("counter = %d, want %d", counter, writers*100)
	}
}

func TestDispatcher_DoReturnsJobError(t *testing.T) {
	d := NewDispatcher(NewMemory())
	defer d.Close()

	want := errors.New("boom")
	err := d.Do(context.Background(), func(Accessor) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestDispatcher_ContextExpiryBeforeDispatch(t *testing.T) {
	d := NewDispatcher(NewMemory())
	defer d.Close()

	block := make(chan struct{})
	ran := make(chan struct{})
	go func() {
		_ = d.Do(context.Background(), func(Accessor) error {
			<-block
			return nil
		})
	}()
	// Give the blocking job time to occupy the writer.
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Do(ctx, func(Accessor) error {
		close(ran)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	close(block)

	select {
	case <-ran:
		t.Fatal("job cancelled before dispatch must never run")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatcher_JobCompletesAfterCallerGivesUp(t *testing.T) {
	m := NewMemory()
	d := NewDispatcher(m)
	defer d.Close()

	started := make(chan struct{})
	block := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	// The job blocks once it is already running on the writer; cancelling the
	// caller's context after that point must not stop it.
	err := func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- d.Do(ctx, func(acc Accessor) error {
				close(started)
				<-block
				return acc.CreateNode(model.Node{ID: "late"})
			})
		}()
		<-started
		cancel()
		defer close(block)
		return <-errCh
	}()
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled for the abandoned await", err)
	}

	deadline := time.After(time.Second)
	for {
		if _, ok := m.FindNode("late"); ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("dispatched job did not complete")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDispatcher_ClosedRejectsNewWork(t *testing.T) {
	d := NewDispatcher(NewMemory())
	d.Close()

	err := d.Do(context.Background(), func(Accessor) error { return nil })
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error for closed dispatcher", err)
	}
}
