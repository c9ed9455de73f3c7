// Package graph defines the code-dependency graph model produced by the
// analyzer backend and consumed by the layout engine and rendering layer.
//
// The package has three responsibilities:
//
//   - Wire types: [Graph], [Node], and [Edge] mirror the analyzer's JSON
//     payload (nodes are code entities such as components, classes, functions,
//     and API endpoints; edges are relationships such as imports, calls, and
//     routes_to). The same types carry bson tags for snapshot storage.
//
//   - Adjacency indexing: [Digraph] wraps a node/edge list with outgoing and
//     incoming indices for traversal. Unlike a strict DAG, arbitrary digraphs
//     are accepted - cycles are allowed and edges referencing unknown nodes
//     are dropped rather than rejected.
//
//   - Serialization helpers: Marshal/Unmarshal and Read/Write functions for
//     graph JSON files.
//
// # Example
//
//	g, err := graph.ReadGraphFile("graph.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d := graph.NewDigraph(g.Nodes, g.Edges)
//	for _, n := range d.Entries() {
//	    fmt.Println(n.ID)
//	}
package graph
