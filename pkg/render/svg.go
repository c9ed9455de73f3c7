package render

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"slices"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/layout"
)

// Node box dimensions. Positions from the layout engine are box anchors
// (top-left corners); spacing between anchors is guaranteed by the layout
// config, so the box just has to stay smaller than the default node spacing.
const (
	boxWidth  = 200.0
	boxHeight = 80.0
	padding   = 50.0
)

const nodeInteractionCSS = `
    .node { transition: stroke-width 0.2s ease; }
    .node.highlight { stroke-width: 3; }
    .node-label { font-family: ui-monospace, monospace; }`

const nodeInteractionJS = `
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('mouseenter', () => el.classList.add('highlight'));
      el.addEventListener('mouseleave', () => el.classList.remove('highlight'));
    });`

// fillColors maps node types to box fill colors. Unknown types fall back to
// the zero-key entry.
var fillColors = map[string]string{
	graph.TypeModule:      "#dbeafe",
	graph.TypeComponent:   "#dcfce7",
	graph.TypeClass:       "#fef9c3",
	graph.TypeFunction:    "#f3e8ff",
	graph.TypeAPIEndpoint: "#ffedd5",
	graph.TypeView:        "#fce7f3",
	graph.TypeController:  "#e0e7ff",
	graph.TypeService:     "#ccfbf1",
	graph.TypeModel:       "#fee2e2",
	"":                    "#f1f5f9",
}

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	showEdges   bool
	interactive bool
}

// WithEdges draws edges between placed nodes.
func WithEdges() SVGOption { return func(r *svgRenderer) { r.showEdges = true } }

// WithInteraction embeds hover-highlight CSS and JavaScript.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// SVG renders positioned nodes as a self-contained SVG document.
// Output is deterministic: nodes are drawn in ID order, edges in
// source/target order. Edges whose endpoints are not in the node set are
// skipped.
func SVG(nodes []layout.PositionedNode, edges []graph.Edge, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	sorted := make([]layout.PositionedNode, len(nodes))
	copy(sorted, nodes)
	slices.SortFunc(sorted, func(a, b layout.PositionedNode) int {
		return cmp.Compare(a.ID, b.ID)
	})

	width, height := canvasSize(sorted)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)

	if r.showEdges {
		renderEdges(&buf, sorted, edges)
	}
	for _, n := range sorted {
		renderNode(&buf, n)
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", nodeInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func canvasSize(nodes []layout.PositionedNode) (w, h float64) {
	for _, n := range nodes {
		w = max(w, n.Position.X+boxWidth)
		h = max(h, n.Position.Y+boxHeight)
	}
	return w + padding, h + padding
}

func renderNode(buf *bytes.Buffer, n layout.PositionedNode) {
	fill, ok := fillColors[n.Type]
	if !ok {
		fill = fillColors[""]
	}

	fmt.Fprintf(buf, `  <rect class="node" id="node-%s" x="%.1f" y="%.1f" width="%.0f" height="%.0f" rx="8" fill="%s" stroke="#334155" stroke-width="1.5"/>`+"\n",
		escape(n.ID), n.Position.X, n.Position.Y, boxWidth, boxHeight, fill)

	cx := n.Position.X + boxWidth/2
	fmt.Fprintf(buf, `  <text class="node-label" x="%.1f" y="%.1f" text-anchor="middle" font-size="16">%s</text>`+"\n",
		cx, n.Position.Y+boxHeight/2-6, escape(n.DisplayName()))
	fmt.Fprintf(buf, `  <text class="node-label" x="%.1f" y="%.1f" text-anchor="middle" font-size="11" fill="#64748b">%s</text>`+"\n",
		cx, n.Position.Y+boxHeight/2+14, escape(n.Type))
}

func renderEdges(buf *bytes.Buffer, nodes []layout.PositionedNode, edges []graph.Edge) {
	centers := make(map[string]layout.Position, len(nodes))
	for _, n := range nodes {
		centers[n.ID] = layout.Position{
			X: n.Position.X + boxWidth/2,
			Y: n.Position.Y + boxHeight/2,
		}
	}

	sorted := make([]graph.Edge, len(edges))
	copy(sorted, edges)
	slices.SortFunc(sorted, func(a, b graph.Edge) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Target, b.Target)
	})

	for _, e := range sorted {
		src, okS := centers[e.Source]
		dst, okD := centers[e.Target]
		if !okS || !okD {
			continue
		}
		dash := ""
		if e.Type != graph.EdgeImports && e.Type != "" {
			dash = ` stroke-dasharray="6,4"`
		}
		fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#94a3b8" stroke-width="1.5"%s/>`+"\n",
			src.X, src.Y, dst.X, dst.Y, dash)
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
