package render

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/codeatlas/codeatlas/pkg/errors"
	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/layout"
)

// DOTOptions configures Graphviz export.
type DOTOptions struct {
	// Detailed includes file, line, and layout placement in node labels.
	// When false, only the display name is shown.
	Detailed bool
}

// edgeStyles maps edge types to DOT edge attributes.
var edgeStyles = map[string]string{
	graph.EdgeImports:  "",
	graph.EdgeCalls:    "style=dashed",
	graph.EdgeRoutesTo: "style=bold, color=darkorange",
	graph.EdgeRenders:  "style=dotted",
	graph.EdgeContains: "arrowhead=diamond, color=grey40",
}

// ToDOT converts positioned nodes to Graphviz DOT format. Levels become
// same-rank clusters so Graphviz preserves the computed hierarchy; within a
// rank, Graphviz chooses its own horizontal order. The resulting DOT string
// can be rasterized with [ToSVG].
func ToDOT(nodes []layout.PositionedNode, edges []graph.Edge, opts DOTOptions) string {
	sorted := make([]layout.PositionedNode, len(nodes))
	copy(sorted, nodes)
	slices.SortFunc(sorted, func(a, b layout.PositionedNode) int {
		return cmp.Compare(a.ID, b.ID)
	})

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(sorted))
	for _, n := range sorted {
		known[n.ID] = true
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, fmtLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, level := range levelRanks(sorted) {
		fmt.Fprintf(&buf, "  { rank=same; %s }\n", level)
	}

	buf.WriteString("\n")
	sortedEdges := make([]graph.Edge, len(edges))
	copy(sortedEdges, edges)
	slices.SortFunc(sortedEdges, func(a, b graph.Edge) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Target, b.Target)
	})
	for _, e := range sortedEdges {
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		if style := edgeStyles[e.Type]; style != "" {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, style)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n layout.PositionedNode, detailed bool) string {
	if !detailed {
		return n.DisplayName()
	}

	parts := []string{n.DisplayName()}
	if n.File != "" {
		loc := n.File
		if n.Line > 0 {
			loc = fmt.Sprintf("%s:%d", n.File, n.Line)
		}
		parts = append(parts, loc)
	}
	parts = append(parts, fmt.Sprintf("level %d, group %s", n.Level, n.Group))
	return strings.Join(parts, "\n")
}

// levelRanks groups node IDs by layout level, returning one quoted ID list
// per level in ascending level order.
func levelRanks(nodes []layout.PositionedNode) []string {
	byLevel := make(map[int][]string)
	for _, n := range nodes {
		byLevel[n.Level] = append(byLevel[n.Level], strconv.Quote(n.ID)+";")
	}

	levels := slices.Sorted(maps.Keys(byLevel))
	ranks := make([]string, 0, len(levels))
	for _, l := range levels {
		ranks = append(ranks, strings.Join(byLevel[l], " "))
	}
	return ranks
}

// ToSVG rasterizes a DOT graph to SVG using the embedded Graphviz engine.
func ToSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to initialize graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "failed to parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "graphviz render failed")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz SVG header so the document scales
// cleanly when embedded (fixed origin, explicit pixel dimensions).
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
