package render

import (
	"strings"
	"testing"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/layout"
)

func positionedNodes() []layout.PositionedNode {
	nodes := []graph.Node{
		{ID: "main", Name: "main", Type: graph.TypeModule, File: "src/main.py",
			Meta: graph.NodeMeta{IsEntry: true}},
		{ID: "api", Name: "api", Type: graph.TypeAPIEndpoint, File: "src/api/routes.py", Line: 12},
		{ID: "util", Name: "util", Type: graph.TypeModule, File: "src/util.py"},
	}
	edges := testEdges()
	res := layout.Compute(nodes, edges, layout.DefaultConfig())
	return layout.Decorate(nodes, res)
}

func testEdges() []graph.Edge {
	return []graph.Edge{
		{Source: "main", Target: "api", Type: graph.EdgeRoutesTo},
		{Source: "main", Target: "util", Type: graph.EdgeImports},
	}
}

func TestSVG_ContainsNodes(t *testing.T) {
	out := string(SVG(positionedNodes(), nil))

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Errorf("missing svg header: %.80s", out)
	}
	for _, id := range []string{"node-main", "node-api", "node-util"} {
		if !strings.Contains(out, id) {
			t.Errorf("output missing %s", id)
		}
	}
	if strings.Contains(out, "<line") {
		t.Error("edges drawn without WithEdges")
	}
}

func TestSVG_WithEdges(t *testing.T) {
	out := string(SVG(positionedNodes(), testEdges(), WithEdges()))

	if got := strings.Count(out, "<line"); got != 2 {
		t.Errorf("line count = %d, want 2", got)
	}
	// routes_to edges are dashed, imports are solid.
	if !strings.Contains(out, "stroke-dasharray") {
		t.Error("expected dashed routes_to edge")
	}
}

func TestSVG_SkipsUnknownEdgeEndpoints(t *testing.T) {
	edges := append(testEdges(), graph.Edge{Source: "main", Target: "ghost"})
	out := string(SVG(positionedNodes(), edges, WithEdges()))

	if got := strings.Count(out, "<line"); got != 2 {
		t.Errorf("line count = %d, want 2 (ghost edge must be skipped)", got)
	}
}

func TestSVG_Deterministic(t *testing.T) {
	nodes := positionedNodes()
	a := SVG(nodes, testEdges(), WithEdges())

	// Reversed node order must not change the output.
	reversed := []layout.PositionedNode{nodes[2], nodes[1], nodes[0]}
	b := SVG(reversed, testEdges(), WithEdges())

	if string(a) != string(b) {
		t.Error("SVG output depends on input order")
	}
}

func TestSVG_EscapesLabels(t *testing.T) {
	nodes := []layout.PositionedNode{{
		Node: graph.Node{ID: "a", Name: "<b>&co"},
	}}
	out := string(SVG(nodes, nil))

	if strings.Contains(out, "<b>&co") {
		t.Error("label not escaped")
	}
	if !strings.Contains(out, "&lt;b&gt;&amp;co") {
		t.Errorf("expected escaped label, got: %s", out)
	}
}

func TestSVG_WithInteraction(t *testing.T) {
	out := string(SVG(positionedNodes(), nil, WithInteraction()))
	if !strings.Contains(out, "<style>") || !strings.Contains(out, "<script") {
		t.Error("interaction assets missing")
	}
}

func TestToDOT_Structure(t *testing.T) {
	dot := ToDOT(positionedNodes(), testEdges(), DOTOptions{})

	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("malformed DOT:\n%s", dot)
	}
	for _, want := range []string{
		`"main" [label="main"];`,
		`"main" -> "util";`,
		`"main" -> "api" [style=bold, color=darkorange];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_RanksByLevel(t *testing.T) {
	dot := ToDOT(positionedNodes(), testEdges(), DOTOptions{})

	// main is the only entry (level 0); api and util share level 1.
	if !strings.Contains(dot, `{ rank=same; "main"; }`) {
		t.Errorf("missing level 0 rank:\n%s", dot)
	}
	if !strings.Contains(dot, `{ rank=same; "api"; "util"; }`) {
		t.Errorf("missing level 1 rank:\n%s", dot)
	}
}

func TestToDOT_DetailedLabels(t *testing.T) {
	dot := ToDOT(positionedNodes(), nil, DOTOptions{Detailed: true})

	if !strings.Contains(dot, "src/api/routes.py:12") {
		t.Errorf("detailed label missing file:line:\n%s", dot)
	}
	if !strings.Contains(dot, "level 0, group src") {
		t.Errorf("detailed label missing placement:\n%s", dot)
	}
}

func TestToDOT_SkipsUnknownEdgeEndpoints(t *testing.T) {
	edges := append(testEdges(), graph.Edge{Source: "ghost", Target: "main"})
	dot := ToDOT(positionedNodes(), edges, DOTOptions{})

	if strings.Contains(dot, "ghost") {
		t.Errorf("unknown endpoint leaked into DOT:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>
<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg">
</svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("dimensions not normalized: %s", out)
	}
}

func TestNormalizeViewBox_NoViewBox(t *testing.T) {
	in := []byte(`<svg></svg>`)
	if got := string(normalizeViewBox(in)); got != `<svg></svg>` {
		t.Errorf("unexpected rewrite: %s", got)
	}
}
