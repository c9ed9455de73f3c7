package graph

import (
	"reflect"
	"testing"
)

func TestNewDigraph_Indices(t *testing.T) {
	nodes := []Node{
		{ID: "a", Meta: NodeMeta{IsEntry: true}},
		{ID: "b"},
		{ID: "c"},
	}
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "c"},
		{Source: "b", Target: "c"},
	}

	d := NewDigraph(nodes, edges)

	if d.NodeCount() != 3 || d.EdgeCount() != 3 {
		t.Fatalf("got %d nodes %d edges, want 3, 3", d.NodeCount(), d.EdgeCount())
	}
	if got := d.Children("a"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Children(a) = %v, want [b c]", got)
	}
	if got := d.Parents("c"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Parents(c) = %v, want [a b]", got)
	}
	if d.OutDegree("a") != 2 || d.InDegree("c") != 2 {
		t.Errorf("degrees = out(a)=%d in(c)=%d, want 2, 2", d.OutDegree("a"), d.InDegree("c"))
	}
}

func TestNewDigraph_DropsUnknownEndpoints(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "ghost"},
		{Source: "phantom", Target: "b"},
	}

	d := NewDigraph(nodes, edges)

	if d.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", d.EdgeCount())
	}
	if d.DroppedEdges != 2 {
		t.Errorf("DroppedEdges = %d, want 2", d.DroppedEdges)
	}
}

func TestNewDigraph_CyclesAllowed(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
	}

	d := NewDigraph(nodes, edges)

	if d.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2 (cycles are valid input)", d.EdgeCount())
	}
}

func TestNewDigraph_DuplicateAndEmptyIDs(t *testing.T) {
	nodes := []Node{
		{ID: "a", Name: "first"},
		{ID: "a", Name: "second"},
		{ID: ""},
	}

	d := NewDigraph(nodes, nil)

	if d.NodeCount() != 1 {
		t.Fatalf("NodeCount() = %d, want 1", d.NodeCount())
	}
	n, ok := d.Node("a")
	if !ok || n.Name != "first" {
		t.Errorf("Node(a) = %+v, want first occurrence kept", n)
	}
}

func TestDigraph_EntriesAndSources(t *testing.T) {
	nodes := []Node{
		{ID: "main", Meta: NodeMeta{IsEntry: true}},
		{ID: "lib"},
		{ID: "orphan"},
	}
	edges := []Edge{{Source: "main", Target: "lib"}}

	d := NewDigraph(nodes, edges)

	entries := d.Entries()
	if len(entries) != 1 || entries[0].ID != "main" {
		t.Errorf("Entries() = %v, want [main]", ids(entries))
	}

	sources := d.Sources()
	if got := ids(sources); !reflect.DeepEqual(got, []string{"main", "orphan"}) {
		t.Errorf("Sources() = %v, want [main orphan]", got)
	}
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
