// Package render turns positioned dependency graphs into visual artifacts.
//
// Two renderers are provided:
//   - SVG: a self-contained SVG drawn directly from the layout engine's
//     coordinates, preserving the level/group grid exactly as computed.
//   - DOT: a Graphviz export for users who want Graphviz to do its own
//     placement, with edge styling per relationship type. DOT strings can be
//     rasterized to SVG in-process via the embedded Graphviz engine.
//
// Both renderers produce deterministic output for a given input: nodes and
// edges are emitted in sorted order.
package render
