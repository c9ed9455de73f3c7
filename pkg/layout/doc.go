// Package layout computes deterministic 2D coordinates for a layered
// ("hierarchical") code-dependency diagram, without manual positioning.
//
// One layout pass runs three ordered stages over an in-memory graph:
//
//  1. Level assignment: each node gets an integer depth from the nearest
//     entry point (metadata.is_entry) via multi-source breadth-first
//     traversal along directed edges, plus a derived importance weight.
//     Nodes unreachable from any entry point fall back to a sentinel level.
//
//  2. Group assignment: each node is bucketed by the containing directory
//     of its file path ("root" when no directory information exists).
//
//  3. Position calculation: levels are laid out top-to-bottom, groups within
//     a level left-to-right in lexicographic order, and nodes within a group
//     by descending importance.
//
// [Compute] is a pure function: it never mutates the caller's nodes and
// returns fresh [Placement] records keyed by node ID. It is total over its
// input domain - edges referencing unknown nodes are inert, absent entry
// points degrade to the fallback level, and malformed file paths degrade to
// the "root" group. Re-running on an identical node/edge sequence yields
// identical output.
//
// # Example
//
//	res := layout.Compute(g.Nodes, g.Edges, layout.DefaultConfig())
//	for id, p := range res.Placements {
//	    fmt.Printf("%s: level=%d group=%s (%.0f, %.0f)\n",
//	        id, p.Level, p.Group, p.Position.X, p.Position.Y)
//	}
package layout
