package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadi-dev/cadi/internal/graph"
	"github.com/cadi-dev/cadi/internal/interfaces"
	"github.com/cadi-dev/cadi/internal/storage"
)

func newTestResolver(t *testing.T) (*graph.Store, *Resolver) {
	t.Helper()
	db := storage.OpenTestDB(t, 8)
	store := graph.NewStore(db)
	view, err := graph.NewView(store)
	require.NoError(t, err)
	return store, New(view, 0)
}

func TestResolveAllSeparatesDirectFromTransitive(t *testing.T) {
	store, resolver := newTestResolver(t)
	require.NoError(t, store.CreateEdge(graph.Edge{From: "a", To: "b", Type: graph.DependsOn, Confidence: 1}))
	require.NoError(t, store.CreateEdge(graph.Edge{From: "b", To: "c", Type: graph.DependsOn, Confidence: 1}))

	view, err := graph.NewView(store)
	require.NoError(t, err)
	resolver = New(view, 0)

	closure, err := resolver.ResolveAll(context.Background(), []string{"a"}, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, closure.Direct)
	assert.ElementsMatch(t, []string{"c"}, closure.Transitive)
	assert.ElementsMatch(t, []string{"b", "c"}, closure.AllIDs)
	assert.False(t, closure.Truncated)
}

func TestResolveAllReportsTruncationOnMaxVisited(t *testing.T) {
	store := graph.NewStore(storage.OpenTestDB(t, 8))
	require.NoError(t, store.CreateEdge(graph.Edge{From: "a", To: "b", Type: graph.DependsOn, Confidence: 1}))
	require.NoError(t, store.CreateEdge(graph.Edge{From: "a", To: "c", Type: graph.DependsOn, Confidence: 1}))

	view, err := graph.NewView(store)
	require.NoError(t, err)
	resolver := New(view, 1)

	closure, err := resolver.ResolveAll(context.Background(), []string{"a"}, 10)
	require.NoError(t, err)
	assert.True(t, closure.Truncated)
}

func TestValidateCompositionFlagsCycle(t *testing.T) {
	store, _ := newTestResolver(t)
	require.NoError(t, store.CreateEdge(graph.Edge{From: "a", To: "b", Type: graph.DependsOn, Confidence: 1}))
	require.NoError(t, store.CreateEdge(graph.Edge{From: "b", To: "a", Type: graph.DependsOn, Confidence: 1}))

	view, err := graph.NewView(store)
	require.NoError(t, err)
	resolver := New(view, 0)

	issues := resolver.ValidateComposition(context.Background(), map[string]interfaces.ComponentInterface{
		"a": {ChunkID: "a"}, "b": {ChunkID: "b"},
	})
	require.NotEmpty(t, issues)
	assert.Equal(t, "error", issues[0].Severity)
}

func TestValidateCompositionFlagsMissingInput(t *testing.T) {
	store, _ := newTestResolver(t)
	require.NoError(t, store.CreateEdge(graph.Edge{From: "a", To: "b", Type: graph.DependsOn, Confidence: 1}))

	view, err := graph.NewView(store)
	require.NoError(t, err)
	resolver := New(view, 0)

	issues := resolver.ValidateComposition(context.Background(), map[string]interfaces.ComponentInterface{
		"a": {ChunkID: "a"},
	})
	require.NotEmpty(t, issues)
	var sawMissing bool
	for _, i := range issues {
		if i.Message == "missing transitive input: b" {
			sawMissing = true
		}
	}
	assert.True(t, sawMissing)
}

func TestCheckInterfaceCompatibilityMatchingTypes(t *testing.T) {
	_, resolver := newTestResolver(t)
	provider := interfaces.ComponentInterface{ChunkID: "p", Output: "string"}
	consumer := interfaces.ComponentInterface{ChunkID: "c", Inputs: []interfaces.Input{{TypeSignature: "string"}}}

	ok, issues := resolver.CheckInterfaceCompatibility(provider, consumer)
	assert.True(t, ok)
	assert.Empty(t, issues)
}

func TestCheckInterfaceCompatibilityMismatch(t *testing.T) {
	_, resolver := newTestResolver(t)
	provider := interfaces.ComponentInterface{ChunkID: "p", Output: "int"}
	consumer := interfaces.ComponentInterface{ChunkID: "c", Inputs: []interfaces.Input{{TypeSignature: "string"}}}

	ok, issues := resolver.CheckInterfaceCompatibility(provider, consumer)
	assert.False(t, ok)
	assert.NotEmpty(t, issues)
}

func TestCheckInterfaceCompatibilityUnknownMatchesAnything(t *testing.T) {
	_, resolver := newTestResolver(t)
	provider := interfaces.ComponentInterface{ChunkID: "p", Output: "unknown"}
	consumer := interfaces.ComponentInterface{ChunkID: "c", Inputs: []interfaces.Input{{TypeSignature: "string"}}}

	ok, _ := resolver.CheckInterfaceCompatibility(provider, consumer)
	assert.True(t, ok)
}

func TestCheckInterfaceCompatibilityNoInputsAlwaysCompatible(t *testing.T) {
	_, resolver := newTestResolver(t)
	provider := interfaces.ComponentInterface{ChunkID: "p", Output: "int"}
	consumer := interfaces.ComponentInterface{ChunkID: "c"}

	ok, _ := resolver.CheckInterfaceCompatibility(provider, consumer)
	assert.True(t, ok)
}

func TestCheckInterfaceCompatibilityEquivalentTypeAcrossLanguages(t *testing.T) {
	store := graph.NewStore(storage.OpenTestDB(t, 8))
	require.NoError(t, store.CreateEdge(graph.Edge{From: "go:User", To: "py:User", Type: graph.EquivalentTo, Confidence: 1}))

	view, err := graph.NewView(store)
	require.NoError(t, err)
	resolver := New(view, 0)

	provider := interfaces.ComponentInterface{ChunkID: "p", Output: "go:User"}
	consumer := interfaces.ComponentInterface{ChunkID: "c", Inputs: []interfaces.Input{{TypeSignature: "py:User"}}}

	ok, issues := resolver.CheckInterfaceCompatibility(provider, consumer)
	assert.True(t, ok)
	assert.Empty(t, issues)
}
