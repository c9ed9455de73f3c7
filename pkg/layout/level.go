package layout

import "github.com/codeatlas/codeatlas/pkg/graph"

// rank is the per-node result of the level assignment stage.
type rank struct {
	level      int
	importance float64
}

// assignLevels classifies every node with an integer depth from the nearest
// entry point and a derived importance weight.
//
// A multi-source breadth-first traversal runs outward along directed edges
// from all nodes flagged metadata.is_entry, seeded in node insertion order.
// Entry nodes get level 0 and full importance. A newly discovered node at
// level L gets importance max(0, entry − decay·L), flooring at 0. A node
// already leveled is never re-leveled, so levels are the shortest hop-count
// from any entry point.
//
// Nodes the traversal never touches - unreachable from every entry point, or
// when no entry points exist at all - receive the fallback level and
// importance. There are no error conditions: missing entries or edges
// degrade to "everything at the fallback level".
func assignLevels(d *graph.Digraph, cfg Config) map[string]rank {
	ranks := make(map[string]rank, d.NodeCount())

	queue := make([]string, 0, d.NodeCount())
	for _, n := range d.Entries() {
		ranks[n.ID] = rank{level: 0, importance: cfg.EntryImportance}
		queue = append(queue, n.ID)
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		level := ranks[curr].level + 1
		importance := max(0, cfg.EntryImportance-cfg.ImportanceDecay*float64(level))

		for _, child := range d.Children(curr) {
			if _, seen := ranks[child]; seen {
				continue
			}
			ranks[child] = rank{level: level, importance: importance}
			queue = append(queue, child)
		}
	}

	for _, id := range d.NodeIDs() {
		if _, ok := ranks[id]; !ok {
			ranks[id] = rank{level: cfg.FallbackLevel, importance: cfg.FallbackImportance}
		}
	}

	return ranks
}
