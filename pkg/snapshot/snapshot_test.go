package snapshot

import (
	"context"
	"testing"

	"github.com/codeatlas/codeatlas/pkg/errors"
	"github.com/codeatlas/codeatlas/pkg/graph"
)

func testGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "main", Type: graph.TypeModule, Meta: graph.NodeMeta{IsEntry: true}},
			{ID: "util", Type: graph.TypeModule},
		},
		Edges: []graph.Edge{
			{Source: "main", Target: "util", Type: graph.EdgeImports},
		},
	}
}

func TestMemoryStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close(ctx)

	snap := &Snapshot{Name: "release-1.0", FolderPath: "/repo/project", Graph: testGraph()}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snap.CreatedAt.IsZero() {
		t.Error("Save should set CreatedAt")
	}

	got, err := store.Get(ctx, "release-1.0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FolderPath != "/repo/project" || len(got.Graph.Nodes) != 2 {
		t.Errorf("Get = %+v", got)
	}
}

func TestMemoryStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close(ctx)

	if err := store.Save(ctx, &Snapshot{Name: "s", Graph: testGraph()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, &Snapshot{Name: "s", Graph: graph.Graph{}}); err != nil {
		t.Fatalf("Save replace: %v", err)
	}

	got, err := store.Get(ctx, "s")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Graph.Nodes) != 0 {
		t.Errorf("expected replaced snapshot, got %d nodes", len(got.Graph.Nodes))
	}
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close(context.Background())

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		t.Errorf("err = %v, want SNAPSHOT_NOT_FOUND", err)
	}
}

func TestMemoryStore_ListSorted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close(ctx)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := store.Save(ctx, &Snapshot{Name: name, Graph: testGraph()}); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("len = %d, want 3", len(infos))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if infos[i].Name != want {
			t.Errorf("infos[%d].Name = %q, want %q", i, infos[i].Name, want)
		}
	}
	if infos[0].NodeCount != 2 || infos[0].EdgeCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", infos[0].NodeCount, infos[0].EdgeCount)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close(ctx)

	if err := store.Save(ctx, &Snapshot{Name: "s", Graph: testGraph()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, "s"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "s"); !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		t.Errorf("second Delete = %v, want SNAPSHOT_NOT_FOUND", err)
	}
}

func TestMemoryStore_RejectsBadNames(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close(context.Background())

	for _, name := range []string{"", "a/b", "a\\b"} {
		err := store.Save(context.Background(), &Snapshot{Name: name, Graph: testGraph()})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Save(%q) = %v, want INVALID_INPUT", name, err)
		}
	}
}
