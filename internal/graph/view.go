package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	dgraph "github.com/dominikbraun/graph"
	"github.com/maypok86/otter"

	"github.com/cadi-dev/cadi/internal/cadierrors"
)

const transitiveCacheSize = 10_000

// View is the in-memory half of the graph: an adjacency index per edge
// type for bounded BFS, a full unfiltered graph for unrestricted shortest
// paths, and a cache of recent transitive-query results.
type View struct {
	store *Store

	mu        sync.RWMutex
	full      dgraph.Graph[string, string]
	outByType map[EdgeType]map[string][]Edge
	uf        *unionFind

	cache otter.Cache[string, TraversalResult]
}

// NewView loads the full edge set from store and builds the in-memory
// indexes. Call Reload after any out-of-band edge creation.
func NewView(store *Store) (*View, error) {
	cache, err := otter.MustBuilder[string, TraversalResult](transitiveCacheSize).
		CollectStats().
		Build()
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "building transitive query cache", err)
	}

	v := &View{store: store, cache: cache}
	if err := v.Reload(); err != nil {
		return nil, err
	}
	return v, nil
}

// Reload rebuilds every in-memory index from the store.
func (v *View) Reload() error {
	edges, err := v.store.LoadAll()
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	full := dgraph.New(dgraph.StringHash, dgraph.Directed())
	outByType := map[EdgeType]map[string][]Edge{}
	uf := newUnionFind()

	addVertex := func(id string) {
		_ = full.AddVertex(id)
	}

	for _, e := range edges {
		addVertex(e.From)
		addVertex(e.To)
		_ = full.AddEdge(e.From, e.To)

		if outByType[e.Type] == nil {
			outByType[e.Type] = map[string][]Edge{}
		}
		outByType[e.Type][e.From] = append(outByType[e.Type][e.From], e)

		if e.Type == EquivalentTo {
			uf.union(e.From, e.To)
		}
	}

	v.full = full
	v.outByType = outByType
	v.uf = uf
	v.cache.Clear()
	return nil
}

// Transitive runs a bounded BFS over edgeType from chunk, returning the
// visited set (excluding chunk itself) and edges traversed. Terminates on
// cycles via a visited-depth map. The traversal stops early, with
// Truncated set on the returned result, once it has visited maxVisited
// nodes (a maxVisited <= 0 means unbounded) or once ctx's deadline
// expires; either way the partial result gathered so far is returned
// rather than an error, per the query-truncation contract.
func (v *View) Transitive(ctx context.Context, chunk string, edgeType EdgeType, maxDepth, maxVisited int) (TraversalResult, error) {
	cacheKey := fmt.Sprintf("%s|%s|%d|%d", chunk, edgeType, maxDepth, maxVisited)
	if cached, ok := v.cache.Get(cacheKey); ok {
		return cached, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	adjacency := v.outByType[edgeType]
	visited := map[string]int{chunk: 0}
	queue := []string{chunk}
	var result TraversalResult

outer:
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			result.Truncated = true
			break outer
		default:
		}

		id := queue[0]
		queue = queue[1:]
		depth := visited[id]
		if depth >= maxDepth {
			continue
		}
		for _, e := range adjacency[id] {
			if _, seen := visited[e.To]; seen {
				continue
			}
			if maxVisited > 0 && len(result.Visited) >= maxVisited {
				result.Truncated = true
				break outer
			}
			visited[e.To] = depth + 1
			result.Visited = append(result.Visited, e.To)
			result.Edges = append(result.Edges, e)
			queue = append(queue, e.To)
		}
	}

	if !result.Truncated {
		v.cache.Set(cacheKey, result)
	}
	return result, nil
}

// ShortestPath finds a path from -> to, optionally restricted to a single
// edge type, via BFS over the type-filtered adjacency.
func (v *View) ShortestPath(from, to string, edgeType *EdgeType) (*Path, error) {
	if edgeType == nil {
		return v.shortestPathUnfiltered(from, to)
	}
	return v.FindPathIn(from, to, []EdgeType{*edgeType})
}

func (v *View) shortestPathUnfiltered(from, to string) (*Path, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	nodes, err := dgraph.ShortestPath(v.full, from, to)
	if err != nil {
		return nil, nil
	}

	edges := v.edgesAlong(nodes)
	return &Path{Nodes: nodes, Edges: edges}, nil
}

// FindPathIn finds a shortest path from -> to using only the given set of
// edge types, via BFS over their merged adjacency.
func (v *View) FindPathIn(from, to string, types []EdgeType) (*Path, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	allowed := map[EdgeType]bool{}
	for _, t := range types {
		allowed[t] = true
	}

	prev := map[string]Edge{}
	visited := map[string]bool{from: true}
	queue := []string{from}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			return reconstructPath(from, to, prev), nil
		}
		for t := range allowed {
			for _, e := range v.outByType[t][id] {
				if visited[e.To] {
					continue
				}
				visited[e.To] = true
				prev[e.To] = e
				queue = append(queue, e.To)
			}
		}
	}
	if from == to {
		return &Path{Nodes: []string{from}}, nil
	}
	return nil, nil
}

func reconstructPath(from, to string, prev map[string]Edge) *Path {
	var nodes []string
	var edges []Edge
	cur := to
	for cur != from {
		e, ok := prev[cur]
		if !ok {
			break
		}
		nodes = append([]string{cur}, nodes...)
		edges = append([]Edge{e}, edges...)
		cur = e.From
	}
	nodes = append([]string{from}, nodes...)
	return &Path{Nodes: nodes, Edges: edges}
}

func (v *View) edgesAlong(nodes []string) []Edge {
	var edges []Edge
	for i := 0; i+1 < len(nodes); i++ {
		for _, byType := range v.outByType {
			for _, e := range byType[nodes[i]] {
				if e.To == nodes[i+1] {
					edges = append(edges, e)
				}
			}
		}
	}
	return edges
}

// EquivalenceClass returns the transitive closure of chunk under
// EQUIVALENT_TO, including chunk itself, sorted for deterministic output.
func (v *View) EquivalenceClass(chunk string) []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	members := v.uf.membersOf(chunk)
	if len(members) == 0 {
		return []string{chunk}
	}
	sort.Strings(members)
	return members
}
