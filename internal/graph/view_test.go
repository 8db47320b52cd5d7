package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestView(t *testing.T) (*Store, *View) {
	t.Helper()
	store := newTestStore(t)
	view, err := NewView(store)
	require.NoError(t, err)
	return store, view
}

func TestTransitiveBFSRespectsMaxDepth(t *testing.T) {
	store, view := newTestView(t)
	require.NoError(t, store.CreateEdge(Edge{From: "a", To: "b", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, store.CreateEdge(Edge{From: "b", To: "c", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, store.CreateEdge(Edge{From: "c", To: "d", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, view.Reload())

	result, err := view.Transitive(context.Background(), "a", DependsOn, 2, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, result.Visited)
	assert.False(t, result.Truncated)
}

func TestTransitiveTerminatesOnCycle(t *testing.T) {
	store, view := newTestView(t)
	require.NoError(t, store.CreateEdge(Edge{From: "a", To: "b", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, store.CreateEdge(Edge{From: "b", To: "a", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, view.Reload())

	result, err := view.Transitive(context.Background(), "a", DependsOn, 10, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, result.Visited)
}

func TestTransitiveRespectsMaxVisited(t *testing.T) {
	store, view := newTestView(t)
	require.NoError(t, store.CreateEdge(Edge{From: "a", To: "b", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, store.CreateEdge(Edge{From: "a", To: "c", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, store.CreateEdge(Edge{From: "a", To: "d", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, view.Reload())

	result, err := view.Transitive(context.Background(), "a", DependsOn, 1, 2)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Len(t, result.Visited, 2)
}

func TestTransitiveRespectsContextDeadline(t *testing.T) {
	store, view := newTestView(t)
	require.NoError(t, store.CreateEdge(Edge{From: "a", To: "b", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, view.Reload())

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	time.Sleep(time.Millisecond)

	result, err := view.Transitive(ctx, "a", DependsOn, 10, 0)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
}

func TestEquivalenceClassTransitiveClosure(t *testing.T) {
	store, view := newTestView(t)
	require.NoError(t, store.CreateEdge(Edge{From: "a", To: "b", Type: EquivalentTo, Confidence: 1.0}))
	require.NoError(t, store.CreateEdge(Edge{From: "b", To: "c", Type: EquivalentTo, Confidence: 1.0}))
	require.NoError(t, view.Reload())

	class := view.EquivalenceClass("a")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, class)
}

func TestEquivalenceClassSingletonForUnrelatedChunk(t *testing.T) {
	_, view := newTestView(t)
	class := view.EquivalenceClass("solo")
	assert.Equal(t, []string{"solo"}, class)
}

func TestFindPathInRestrictsToAllowedTypes(t *testing.T) {
	store, view := newTestView(t)
	require.NoError(t, store.CreateEdge(Edge{From: "a", To: "b", Type: Implements, Confidence: 1.0}))
	require.NoError(t, store.CreateEdge(Edge{From: "b", To: "c", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, view.Reload())

	path, err := view.FindPathIn("a", "c", []EdgeType{Implements})
	require.NoError(t, err)
	assert.Nil(t, path)

	path, err = view.FindPathIn("a", "c", []EdgeType{Implements, DependsOn})
	require.NoError(t, err)
	require.NotNil(t, path)
	assert.Equal(t, []string{"a", "b", "c"}, path.Nodes)
}

func TestDetectCycleFindsDependsOnCycle(t *testing.T) {
	store, view := newTestView(t)
	require.NoError(t, store.CreateEdge(Edge{From: "a", To: "b", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, store.CreateEdge(Edge{From: "b", To: "c", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, store.CreateEdge(Edge{From: "c", To: "a", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, view.Reload())

	cycle, err := view.DetectCycle()
	require.Error(t, err)
	assert.NotEmpty(t, cycle)
}

func TestDetectCycleNoneOnAcyclicGraph(t *testing.T) {
	store, view := newTestView(t)
	require.NoError(t, store.CreateEdge(Edge{From: "a", To: "b", Type: DependsOn, Confidence: 1.0}))
	require.NoError(t, view.Reload())

	cycle, err := view.DetectCycle()
	require.NoError(t, err)
	assert.Nil(t, cycle)
}
