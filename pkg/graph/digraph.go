package graph

import "slices"

// Digraph is a directed graph with adjacency indices for traversal.
// Unlike a layered DAG it places no constraints on structure: cycles are
// allowed and edges referencing unknown node IDs are silently dropped
// (counted in DroppedEdges). Node and edge insertion order is preserved,
// which keeps downstream traversals deterministic for a fixed input order.
//
// The zero value is not usable - use NewDigraph.
// Digraph is not safe for concurrent use without external synchronization.
type Digraph struct {
	nodes    map[string]*Node
	order    []string            // node IDs in insertion order
	edges    []Edge              // kept edges in insertion order
	outgoing map[string][]string // nodeID -> target IDs
	incoming map[string][]string // nodeID -> source IDs

	// DroppedEdges counts edges whose endpoints were not in the node set.
	DroppedEdges int
}

// NewDigraph builds an indexed digraph from a node/edge list.
// Duplicate node IDs keep the first occurrence. Edges with unknown
// endpoints are dropped.
func NewDigraph(nodes []Node, edges []Edge) *Digraph {
	d := &Digraph{
		nodes:    make(map[string]*Node, len(nodes)),
		order:    make([]string, 0, len(nodes)),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
	for i := range nodes {
		n := nodes[i]
		if n.ID == "" {
			continue
		}
		if _, exists := d.nodes[n.ID]; exists {
			continue
		}
		d.nodes[n.ID] = &n
		d.order = append(d.order, n.ID)
	}
	for _, e := range edges {
		_, okS := d.nodes[e.Source]
		_, okT := d.nodes[e.Target]
		if !okS || !okT {
			d.DroppedEdges++
			continue
		}
		d.edges = append(d.edges, e)
		d.outgoing[e.Source] = append(d.outgoing[e.Source], e.Target)
		d.incoming[e.Target] = append(d.incoming[e.Target], e.Source)
	}
	return d
}

// Node returns the node with the given ID and true, or nil and false.
func (d *Digraph) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
// The returned slice contains pointers to the actual node structs.
func (d *Digraph) Nodes() []*Node {
	nodes := make([]*Node, len(d.order))
	for i, id := range d.order {
		nodes[i] = d.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (d *Digraph) NodeIDs() []string { return slices.Clone(d.order) }

// Edges returns a copy of the kept edges in insertion order.
func (d *Digraph) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *Digraph) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of kept edges in the graph.
func (d *Digraph) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of nodes this node has edges to, in edge
// insertion order. The returned slice is a read-only view.
func (d *Digraph) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of nodes that have edges to this node, in edge
// insertion order. The returned slice is a read-only view.
func (d *Digraph) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *Digraph) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *Digraph) InDegree(id string) int { return len(d.incoming[id]) }

// Entries returns nodes flagged by the analyzer as entry points
// (metadata.is_entry), in insertion order. May be empty.
func (d *Digraph) Entries() []*Node {
	var entries []*Node
	for _, id := range d.order {
		if n := d.nodes[id]; n.Meta.IsEntry {
			entries = append(entries, n)
		}
	}
	return entries
}

// Sources returns nodes with no incoming edges, in insertion order.
// These are structural roots, independent of the analyzer's entry flags.
func (d *Digraph) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}
