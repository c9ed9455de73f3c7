package graph

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node types emitted by the analyzer backend.
const (
	TypeModule      = "module"
	TypeComponent   = "component"
	TypeClass       = "class"
	TypeFunction    = "function"
	TypeAPIEndpoint = "api_endpoint"
	TypeView        = "view"
	TypeController  = "controller"
	TypeService     = "service"
	TypeModel       = "model"
)

// Edge types emitted by the analyzer backend.
const (
	EdgeImports  = "imports"
	EdgeCalls    = "calls"
	EdgeRoutesTo = "routes_to"
	EdgeRenders  = "renders"
	EdgeContains = "contains"
)

// =============================================================================
// Graph - Analyzer Wire Format
// =============================================================================

// Graph is the canonical serialization format for analysis results.
// Used for API responses, snapshot storage, caching, and file export.
type Graph struct {
	Nodes    []Node    `json:"nodes" bson:"nodes"`
	Edges    []Edge    `json:"edges" bson:"edges"`
	Metadata GraphMeta `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// GraphMeta carries summary statistics computed by the analyzer.
type GraphMeta struct {
	TotalNodes int      `json:"total_nodes,omitempty" bson:"total_nodes,omitempty"`
	TotalEdges int      `json:"total_edges,omitempty" bson:"total_edges,omitempty"`
	NodeTypes  []string `json:"node_types,omitempty" bson:"node_types,omitempty"`
	EdgeTypes  []string `json:"edge_types,omitempty" bson:"edge_types,omitempty"`
}

// =============================================================================
// Node - Code Entity
// =============================================================================

// Node is a code entity discovered by the analyzer: a component, class,
// function, API endpoint, module, or similar. ID is unique within a graph.
// Additional analyzer fields not listed here are ignored.
type Node struct {
	ID   string   `json:"id" bson:"id"`
	Name string   `json:"name,omitempty" bson:"name,omitempty"`
	Type string   `json:"type,omitempty" bson:"type,omitempty"`
	File string   `json:"file,omitempty" bson:"file,omitempty"`
	Line int      `json:"line,omitempty" bson:"line,omitempty"`
	Meta NodeMeta `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// NodeMeta carries per-node analyzer metadata.
type NodeMeta struct {
	// IsEntry marks a root of the dependency hierarchy, e.g. an application
	// bootstrap file or top-level route. Entry nodes seed the layout engine's
	// breadth-first traversal.
	IsEntry bool `json:"is_entry,omitempty" bson:"is_entry,omitempty"`

	// C4Level is the analyzer's C4-model classification ("context",
	// "container", "component", "code"). Informational only.
	C4Level string `json:"c4_level,omitempty" bson:"c4_level,omitempty"`
}

// DisplayName returns the name if set, otherwise the ID.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// =============================================================================
// Edge - Directed Relationship
// =============================================================================

// Edge represents a directed relationship between two nodes.
// Edges whose endpoints are not present in the node set are tolerated
// throughout the pipeline - they are simply never traversed.
type Edge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Type   string `json:"type,omitempty" bson:"type,omitempty"`
}
