package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/layout"
)

func writeTestGraph(t *testing.T, g graph.Graph) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.graph.json")
	if err := graph.WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	return path
}

func TestRunLayout_DropsUnknownEdges(t *testing.T) {
	input := writeTestGraph(t, graph.Graph{
		Nodes: []graph.Node{
			{ID: "main", Name: "main", Type: graph.TypeModule, Meta: graph.NodeMeta{IsEntry: true}},
			{ID: "util", Name: "util", Type: graph.TypeModule},
		},
		Edges: []graph.Edge{
			{Source: "main", Target: "util", Type: graph.EdgeImports},
			{Source: "main", Target: "ghost", Type: graph.EdgeImports},
			{Source: "phantom", Target: "util", Type: graph.EdgeImports},
		},
	})
	output := filepath.Join(t.TempDir(), "out.json")

	var logs bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&logs, log.InfoLevel))

	if err := runLayout(ctx, input, &layoutOpts{output: output}); err != nil {
		t.Fatalf("runLayout: %v", err)
	}
	if !strings.Contains(logs.String(), "Dropped 2 edges") {
		t.Errorf("missing dropped-edge warning in logs:\n%s", logs.String())
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var payload struct {
		Nodes []layout.PositionedNode `json:"nodes"`
		Edges []graph.Edge            `json:"edges"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if len(payload.Nodes) != 2 {
		t.Errorf("output nodes = %d, want 2", len(payload.Nodes))
	}
	// Only the edge with known endpoints survives.
	if len(payload.Edges) != 1 || payload.Edges[0].Target != "util" {
		t.Errorf("output edges = %+v", payload.Edges)
	}
}

func TestRunLayout_WarnsWithoutEntryPoints(t *testing.T) {
	input := writeTestGraph(t, graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Name: "a", Type: graph.TypeModule},
			{ID: "b", Name: "b", Type: graph.TypeModule},
		},
		Edges: []graph.Edge{
			{Source: "a", Target: "b", Type: graph.EdgeImports},
		},
	})
	output := filepath.Join(t.TempDir(), "out.json")

	var logs bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&logs, log.InfoLevel))

	if err := runLayout(ctx, input, &layoutOpts{output: output}); err != nil {
		t.Fatalf("runLayout: %v", err)
	}
	if !strings.Contains(logs.String(), "No entry points") {
		t.Errorf("missing no-entry warning in logs:\n%s", logs.String())
	}
	// One root: "a" has no importers.
	if !strings.Contains(logs.String(), "1 roots without importers") {
		t.Errorf("missing root count in logs:\n%s", logs.String())
	}
}
