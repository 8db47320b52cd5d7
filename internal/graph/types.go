// Package graph stores and queries typed directed edges between chunks:
// the Edge Model & Graph Store component. Edges are append-only; EQUIVALENT_TO
// is symmetric by construction and DEPENDS_ON must stay acyclic at build
// time (enforced by the resolver, not at edge creation).
package graph

import "time"

// EdgeType is the closed set of relations an edge may carry.
type EdgeType string

const (
	DependsOn    EdgeType = "DEPENDS_ON"
	Refines      EdgeType = "REFINES"
	EquivalentTo EdgeType = "EQUIVALENT_TO"
	Implements   EdgeType = "IMPLEMENTS"
	Satisfies    EdgeType = "SATISFIES"
	Specializes  EdgeType = "SPECIALIZES"
	ProvidesType EdgeType = "PROVIDES_TYPE"
)

// Edge is a typed directed relation between two chunks.
type Edge struct {
	ID         string
	From       string
	To         string
	Type       EdgeType
	Confidence float64
	ContextKey string
	Context    string // opaque, caller-defined structured metadata (serialized)
	CreatedAt  time.Time
}

// Path is an ordered sequence of chunk ids from one node to another.
type Path struct {
	Nodes []string
	Edges []Edge
}

// TraversalResult is the outcome of a bounded BFS: the visited set and the
// edges traversed to reach it, in visit order. Truncated is set when the
// traversal stopped early because it hit maxVisited or the context
// deadline before exhausting the frontier; Visited/Edges still hold the
// best-effort partial result gathered up to that point.
type TraversalResult struct {
	Visited   []string
	Edges     []Edge
	Truncated bool
}
