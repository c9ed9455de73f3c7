package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/layout"
)

func testExploreModel() exploreModel {
	nodes := []graph.Node{
		{ID: "src.main", Name: "main", Type: graph.TypeModule, File: "src/main.py",
			Meta: graph.NodeMeta{IsEntry: true}},
		{ID: "src.api.routes", Name: "routes", Type: graph.TypeModule, File: "src/api/routes.py"},
		{ID: "lib.util", Name: "util", Type: graph.TypeModule, File: "lib/util.py"},
	}
	edges := []graph.Edge{
		{Source: "src.main", Target: "src.api.routes", Type: graph.EdgeImports},
		{Source: "src.main", Target: "lib.util", Type: graph.EdgeImports},
	}
	res := layout.Compute(nodes, edges, layout.Config{})
	return newExploreModel(layout.Decorate(nodes, res), graph.NewDigraph(nodes, edges))
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestExploreModel_SortsByLevelThenID(t *testing.T) {
	m := testExploreModel()

	if len(m.visible) != 3 {
		t.Fatalf("visible = %d nodes", len(m.visible))
	}
	// Entry node at level 0 first, then its level-1 children by ID.
	if m.visible[0].ID != "src.main" {
		t.Errorf("first node = %q, want src.main", m.visible[0].ID)
	}
	if m.visible[1].ID != "lib.util" || m.visible[2].ID != "src.api.routes" {
		t.Errorf("level 1 order = %q, %q", m.visible[1].ID, m.visible[2].ID)
	}
}

func TestExploreModel_Navigation(t *testing.T) {
	var m tea.Model = testExploreModel()

	m, _ = m.Update(keyMsg("down"))
	m, _ = m.Update(keyMsg("down"))
	m, _ = m.Update(keyMsg("down")) // clamped at last row

	em := m.(exploreModel)
	if em.cursor != 2 {
		t.Errorf("cursor = %d, want 2", em.cursor)
	}

	m, _ = m.Update(keyMsg("up"))
	if em := m.(exploreModel); em.cursor != 1 {
		t.Errorf("cursor = %d, want 1", em.cursor)
	}
}

func TestExploreModel_Filter(t *testing.T) {
	var m tea.Model = testExploreModel()

	m, _ = m.Update(keyMsg("/"))
	m, _ = m.Update(keyMsg("a"))
	m, _ = m.Update(keyMsg("p"))
	m, _ = m.Update(keyMsg("i"))

	em := m.(exploreModel)
	if len(em.visible) != 1 || em.visible[0].ID != "src.api.routes" {
		t.Fatalf("filtered visible = %+v", em.visible)
	}

	// Esc clears the filter.
	m, _ = m.Update(keyMsg("esc"))
	if em := m.(exploreModel); len(em.visible) != 3 {
		t.Errorf("after esc visible = %d nodes", len(em.visible))
	}
}

func TestExploreModel_QuitKeys(t *testing.T) {
	m := testExploreModel()

	for _, key := range []string{"q", "esc"} {
		_, cmd := m.Update(keyMsg(key))
		if cmd == nil {
			t.Errorf("key %q should quit", key)
		}
	}
}

func TestExploreModel_ViewShowsNodes(t *testing.T) {
	m := testExploreModel()

	view := m.View()
	for _, want := range []string{"src.main", "lib.util", "src.api.routes", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestExploreModel_ViewShowsNeighbors(t *testing.T) {
	var m tea.Model = testExploreModel()

	// src.main is selected first: two outgoing edges, no importers.
	view := m.(exploreModel).View()
	for _, want := range []string{"imports (2)", "imported by (0): -"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	// lib.util sits below src.main and is imported by it.
	m, _ = m.Update(keyMsg("down"))
	view = m.(exploreModel).View()
	if !strings.Contains(view, "imported by (1): src.main") {
		t.Errorf("view missing importer detail:\n%s", view)
	}
}

func TestNeighborList(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty", nil, "-"},
		{"short", []string{"a", "b"}, "a, b"},
		{"truncated", []string{"a", "b", "c", "d", "e", "f"}, "a, b, c, d, +2 more"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := neighborList(tt.ids); got != tt.want {
				t.Errorf("neighborList(%v) = %q, want %q", tt.ids, got, tt.want)
			}
		})
	}
}
