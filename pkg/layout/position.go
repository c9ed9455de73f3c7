package layout

import (
	"cmp"
	"maps"
	"slices"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

// calculatePositions converts level, group, and importance into concrete
// coordinates: a grid-like layered diagram where directory structure governs
// horizontal clustering within a level and importance governs left-to-right
// prominence within a group. No iterative relaxation is performed.
//
// Occupied levels are iterated in ascending order; the vertical cursor starts
// at the margin and advances by LevelHeight after each level, so a sparse
// level set (e.g. 0, 1, 5) still produces consecutive rows. Within a level,
// nodes are partitioned by group and groups are placed in lexicographic
// order - a deliberate departure from incidental insertion order so repeated
// runs are reproducible regardless of how the caller assembled the node
// list. Within a group, nodes are stable-sorted by importance descending
// (equal importance retains node insertion order) and spaced by NodeSpacing;
// the horizontal cursor then advances by at least GroupSpacing and resets to
// the margin at the start of every level.
func calculatePositions(d *graph.Digraph, ranks map[string]rank, groups map[string]string, cfg Config) map[string]Position {
	byLevel := make(map[int][]string)
	for _, id := range d.NodeIDs() {
		lvl := ranks[id].level
		byLevel[lvl] = append(byLevel[lvl], id)
	}

	positions := make(map[string]Position, d.NodeCount())
	y := cfg.Margin

	for _, lvl := range slices.Sorted(maps.Keys(byLevel)) {
		grouped := make(map[string][]string)
		for _, id := range byLevel[lvl] {
			g := groups[id]
			grouped[g] = append(grouped[g], id)
		}

		x := cfg.Margin
		for _, g := range slices.Sorted(maps.Keys(grouped)) {
			ids := grouped[g]
			slices.SortStableFunc(ids, func(a, b string) int {
				return cmp.Compare(ranks[b].importance, ranks[a].importance)
			})

			for i, id := range ids {
				positions[id] = Position{X: x + float64(i)*cfg.NodeSpacing, Y: y}
			}

			x += max(float64(len(ids))*cfg.NodeSpacing, cfg.GroupSpacing)
		}

		y += cfg.LevelHeight
	}

	return positions
}
