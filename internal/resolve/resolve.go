// Package resolve implements the Dependency Resolver: transitive closure
// under DEPENDS_ON, cycle detection, and interface compatibility checks
// between adjacent chunks in a composition.
package resolve

import (
	"context"

	"github.com/cadi-dev/cadi/internal/graph"
	"github.com/cadi-dev/cadi/internal/interfaces"
)

// Closure is the result of resolving a set of root chunks: everything they
// depend on, directly or transitively, plus the edges traversed to get
// there. Truncated is set if any root's traversal hit the node budget or
// the context deadline before exhausting its frontier.
type Closure struct {
	AllIDs     []string
	Direct     []string
	Transitive []string
	Edges      []graph.Edge
	Truncated  bool
}

// Issue is one problem found while validating a composition. Severity is
// either "error" (cycle, missing input) or "warning" (interface mismatch,
// truncated check).
type Issue struct {
	Severity string
	Message  string
	ChunkID  string
}

// Resolver answers dependency questions against a graph view. It never
// mutates the graph. maxVisited bounds every traversal it runs, per
// spec's hard node-budget ceiling.
type Resolver struct {
	view       *graph.View
	maxVisited int
}

// New wraps a graph view for resolution queries, bounding every traversal
// to at most maxVisited nodes (<= 0 means unbounded).
func New(view *graph.View, maxVisited int) *Resolver {
	return &Resolver{view: view, maxVisited: maxVisited}
}

// ResolveAll computes the transitive closure of rootIDs under DEPENDS_ON,
// bounded by maxDepth and ctx's deadline.
func (r *Resolver) ResolveAll(ctx context.Context, rootIDs []string, maxDepth int) (Closure, error) {
	allSeen := map[string]bool{}
	directSeen := map[string]bool{}
	var allIDs, direct, transitiveOnly []string
	var edges []graph.Edge
	truncated := false

	for _, root := range rootIDs {
		result, err := r.view.Transitive(ctx, root, graph.DependsOn, maxDepth, r.maxVisited)
		if err != nil {
			return Closure{}, err
		}
		if result.Truncated {
			truncated = true
		}
		edges = append(edges, result.Edges...)

		for _, id := range result.Visited {
			if !allSeen[id] {
				allSeen[id] = true
				allIDs = append(allIDs, id)
			}
		}
		for _, e := range result.Edges {
			if e.From == root && !directSeen[e.To] {
				directSeen[e.To] = true
				direct = append(direct, e.To)
			}
		}
	}

	for _, id := range allIDs {
		if !directSeen[id] {
			transitiveOnly = append(transitiveOnly, id)
		}
	}

	return Closure{AllIDs: allIDs, Direct: direct, Transitive: transitiveOnly, Edges: edges, Truncated: truncated}, nil
}

// ValidateComposition flags cycles (error), missing transitive inputs
// (error), and interface mismatches between adjacent DEPENDS_ON pairs
// (warning). chunks maps chunk id to its ComponentInterface; any DEPENDS_ON
// edge whose endpoints aren't both present in chunks is a missing input. A
// traversal that hits the node budget or ctx's deadline is reported as a
// warning rather than silently skipped.
func (r *Resolver) ValidateComposition(ctx context.Context, chunks map[string]interfaces.ComponentInterface) []Issue {
	var issues []Issue

	if cycle, err := r.view.DetectCycle(); err != nil {
		issues = append(issues, Issue{Severity: "error", Message: "dependency cycle detected: " + joinIDs(cycle)})
	}

	for id := range chunks {
		result, err := r.view.Transitive(ctx, id, graph.DependsOn, 1, r.maxVisited)
		if err != nil {
			continue
		}
		if result.Truncated {
			issues = append(issues, Issue{Severity: "warning", ChunkID: id, Message: "dependency check truncated: node budget or deadline exceeded"})
		}
		for _, dep := range result.Visited {
			if _, ok := chunks[dep]; !ok {
				issues = append(issues, Issue{
					Severity: "error",
					ChunkID:  id,
					Message:  "missing transitive input: " + dep,
				})
			}
		}
	}

	for id, consumer := range chunks {
		result, err := r.view.Transitive(ctx, id, graph.DependsOn, 1, r.maxVisited)
		if err != nil {
			continue
		}
		for _, providerID := range result.Visited {
			provider, ok := chunks[providerID]
			if !ok {
				continue
			}
			compatible, compatIssues := r.CheckInterfaceCompatibility(provider, consumer)
			if !compatible {
				for _, msg := range compatIssues {
					issues = append(issues, Issue{Severity: "warning", ChunkID: id, Message: msg})
				}
			}
		}
	}

	return issues
}

// CheckInterfaceCompatibility compares provider's Output against consumer's
// first Input, element-wise. "unknown" matches anything on either side;
// named types match by string equality within a language, or, failing
// that, by an EQUIVALENT_TO edge linking the provider's output type and
// the consumer's expected input type across languages.
func (r *Resolver) CheckInterfaceCompatibility(provider, consumer interfaces.ComponentInterface) (bool, []string) {
	if len(consumer.Inputs) == 0 {
		return true, nil
	}

	firstInput := consumer.Inputs[0]
	if provider.Output == "unknown" || firstInput.TypeSignature == "unknown" {
		return true, nil
	}

	if provider.Output == firstInput.TypeSignature {
		return true, nil
	}

	if r.typesEquivalentAcrossLanguages(provider.Output, firstInput.TypeSignature) {
		return true, nil
	}

	return false, []string{
		"output type " + provider.Output + " of " + provider.ChunkID +
			" does not match expected input type " + firstInput.TypeSignature + " of " + consumer.ChunkID,
	}
}

// typesEquivalentAcrossLanguages treats a provider output type and a
// consumer input type as compatible when they were themselves chunked and
// linked by an EQUIVALENT_TO edge (e.g. a Go struct and its Python
// dataclass twin, both ingested and deduplicated as chunks).
func (r *Resolver) typesEquivalentAcrossLanguages(outputType, inputType string) bool {
	for _, member := range r.view.EquivalenceClass(outputType) {
		if member == inputType {
			return true
		}
	}
	return false
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += " -> "
		}
		out += id
	}
	return out
}
