package layout

import (
	"maps"
	"slices"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

// Position is a 2D coordinate in diagram space.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Placement is the complete layout classification of a single node.
// Every node in a layout invocation receives exactly one Placement; no
// field is optional.
type Placement struct {
	Level      int      `json:"level" bson:"level"`
	Group      string   `json:"group" bson:"group"`
	Importance float64  `json:"importance" bson:"importance"`
	Position   Position `json:"position" bson:"position"`
}

// Result holds the output of one layout pass, keyed by node ID.
// Result records are fresh values owned by the caller; the input nodes are
// never touched, so a graph can be rendered concurrently with a re-layout
// of a filtered subset.
type Result struct {
	Placements map[string]Placement `json:"placements" bson:"placements"`
}

// Compute runs one full layout pass - level assignment, group assignment,
// position calculation - over the given node/edge set and returns a
// Placement for every node.
//
// Compute is pure and total: it performs no I/O, never mutates its inputs,
// and returns a defined placement for all inputs. Edges referencing unknown
// node IDs are ignored. When no node is flagged as an entry point, every
// node lands at the fallback level. Re-running on the identical node/edge
// sequence yields identical output; shuffling nodes within a group may
// change x-ordering ties but never changes any node's level.
func Compute(nodes []graph.Node, edges []graph.Edge, cfg Config) Result {
	cfg = cfg.withDefaults()
	d := graph.NewDigraph(nodes, edges)

	ranks := assignLevels(d, cfg)

	groups := make(map[string]string, d.NodeCount())
	for _, n := range d.Nodes() {
		groups[n.ID] = groupFor(n.File)
	}

	positions := calculatePositions(d, ranks, groups, cfg)

	placements := make(map[string]Placement, d.NodeCount())
	for _, id := range d.NodeIDs() {
		r := ranks[id]
		placements[id] = Placement{
			Level:      r.level,
			Group:      groups[id],
			Importance: r.importance,
			Position:   positions[id],
		}
	}

	return Result{Placements: placements}
}

// Levels returns the distinct levels present in the result, ascending.
func (r Result) Levels() []int {
	set := make(map[int]struct{})
	for _, p := range r.Placements {
		set[p.Level] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// Groups returns node IDs indexed by group. Within each group, IDs are
// sorted for deterministic iteration; group keys can be sorted by the
// caller as needed (e.g. to populate filter widgets).
func (r Result) Groups() map[string][]string {
	groups := make(map[string][]string)
	for id, p := range r.Placements {
		groups[p.Group] = append(groups[p.Group], id)
	}
	for _, ids := range groups {
		slices.Sort(ids)
	}
	return groups
}

// =============================================================================
// Rendering Contract
// =============================================================================

// PositionedNode is a graph node decorated with its layout placement - the
// shape consumed by the rendering layer.
type PositionedNode struct {
	graph.Node
	Level      int      `json:"level" bson:"level"`
	Group      string   `json:"group" bson:"group"`
	Importance float64  `json:"importance" bson:"importance"`
	Position   Position `json:"position" bson:"position"`
}

// Decorate joins the input node sequence with a layout result, returning the
// same sequence with level, group, importance, and position populated. The
// input slice is not modified. Nodes without a placement (not part of the
// Compute call that produced res) are passed through with zero placements;
// this cannot happen when res was computed from the same node list.
func Decorate(nodes []graph.Node, res Result) []PositionedNode {
	out := make([]PositionedNode, len(nodes))
	for i, n := range nodes {
		p := res.Placements[n.ID]
		out[i] = PositionedNode{
			Node:       n,
			Level:      p.Level,
			Group:      p.Group,
			Importance: p.Importance,
			Position:   p.Position,
		}
	}
	return out
}
