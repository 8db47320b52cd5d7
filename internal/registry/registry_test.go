package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadi-dev/cadi/internal/cadierrors"
	"github.com/cadi-dev/cadi/internal/config"
	"github.com/cadi-dev/cadi/internal/embedding"
	"github.com/cadi-dev/cadi/internal/graph"
	"github.com/cadi-dev/cadi/internal/search"
	"github.com/cadi-dev/cadi/internal/storage"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, _ := newTestRegistryWithProvider(t)
	return reg
}

func newTestRegistryWithProvider(t *testing.T) (*Registry, *embedding.MockProvider) {
	t.Helper()
	cfg := config.Default()
	cfg.Embedding.Dimensions = 8
	db := storage.OpenTestDB(t, cfg.Embedding.Dimensions)
	provider := embedding.NewMockProvider(cfg.Embedding.Dimensions, "test-1")

	reg, err := Open(db, provider, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	return reg, provider
}

const goSource = `package sample

// Greet returns a friendly greeting for name.
func Greet(name string) string {
	return "hello " + name
}
`

func TestIngestThenGetChunkRoundTrips(t *testing.T) {
	reg := newTestRegistry(t)

	result, err := reg.Ingest(context.Background(), []byte(goSource), "go", "sample")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ChunkID)
	assert.NotEmpty(t, result.SemanticHash)
	assert.Equal(t, "Greet", result.Interface.Name)
	assert.Equal(t, "norm-1", result.Versions.NormalizerVersion)
	assert.Equal(t, "extract-1", result.Versions.ExtractorVersion)
	assert.Empty(t, result.DuplicateOf)

	view, err := reg.GetChunk(result.ChunkID, true)
	require.NoError(t, err)
	assert.Equal(t, goSource, string(view.Source))
	assert.Equal(t, "Greet", view.Interface.Name)
}

func TestIngestDuplicateContentLinksToCanonical(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	first, err := reg.Ingest(ctx, []byte(goSource), "go", "sample")
	require.NoError(t, err)

	// Same normalized semantics, different identifier name.
	variant := []byte(`package sample

func Greet(who string) string {
	return "hello " + who
}
`)
	second, err := reg.Ingest(ctx, variant, "go", "sample")
	require.NoError(t, err)

	equivalents := reg.FindEquivalents(second.ChunkID)
	assert.Contains(t, equivalents, first.ChunkID)
}

func TestSearchFindsIngestedChunk(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	result, err := reg.Ingest(ctx, []byte(goSource), "go", "sample")
	require.NoError(t, err)

	resp, err := reg.Search(ctx, "Greet", search.Options{Limit: 10, Weights: search.DefaultWeights})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, result.ChunkID, resp.Results[0].ChunkID)
}

func TestGetChunkNotFound(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.GetChunk("chunk:sha256:missing", false)
	require.Error(t, err)
	assert.True(t, cadierrors.Is(err, cadierrors.NotFound))
}

func TestComposeCheckOrdersByDependency(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	base, err := reg.Ingest(ctx, []byte(`package sample

func Base() int { return 1 }
`), "go", "sample")
	require.NoError(t, err)

	dependent, err := reg.Ingest(ctx, []byte(`package sample

func Dependent() int { return Base() + 1 }
`), "go", "sample")
	require.NoError(t, err)

	require.NoError(t, reg.graphStore.CreateEdge(graph.Edge{From: dependent.ChunkID, To: base.ChunkID, Type: graph.DependsOn, Confidence: 1.0}))
	require.NoError(t, reg.graphView.Reload())

	result, err := reg.ComposeCheck(ctx, []string{dependent.ChunkID, base.ChunkID})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.Len(t, result.Order, 2)
	assert.Equal(t, base.ChunkID, result.Order[0])
	assert.Equal(t, dependent.ChunkID, result.Order[1])
}

func TestComposeCheckFlagsMissingTransitiveInput(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	base, err := reg.Ingest(ctx, []byte(`package sample

func Base() int { return 1 }
`), "go", "sample")
	require.NoError(t, err)

	dependent, err := reg.Ingest(ctx, []byte(`package sample

func Dependent() int { return Base() + 1 }
`), "go", "sample")
	require.NoError(t, err)

	require.NoError(t, reg.graphStore.CreateEdge(graph.Edge{From: dependent.ChunkID, To: base.ChunkID, Type: graph.DependsOn, Confidence: 1.0}))
	require.NoError(t, reg.graphView.Reload())

	result, err := reg.ComposeCheck(ctx, []string{dependent.ChunkID})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Gaps)
}

func TestDependenciesReturnsDirectAndTransitive(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	leaf, err := reg.Ingest(ctx, []byte(`package sample

func Leaf() int { return 1 }
`), "go", "sample")
	require.NoError(t, err)

	mid, err := reg.Ingest(ctx, []byte(`package sample

func Mid() int { return Leaf() }
`), "go", "sample")
	require.NoError(t, err)

	root, err := reg.Ingest(ctx, []byte(`package sample

func Root() int { return Mid() }
`), "go", "sample")
	require.NoError(t, err)

	require.NoError(t, reg.graphStore.CreateEdge(graph.Edge{From: root.ChunkID, To: mid.ChunkID, Type: graph.DependsOn, Confidence: 1.0}))
	require.NoError(t, reg.graphStore.CreateEdge(graph.Edge{From: mid.ChunkID, To: leaf.ChunkID, Type: graph.DependsOn, Confidence: 1.0}))
	require.NoError(t, reg.graphView.Reload())

	deps, err := reg.Dependencies(ctx, root.ChunkID, 8)
	require.NoError(t, err)
	assert.Contains(t, deps.Direct, mid.ChunkID)
	assert.Contains(t, deps.Transitive, leaf.ChunkID)
}

func TestIngestRejectsEmptyContent(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Ingest(context.Background(), []byte{}, "go", "sample")
	require.Error(t, err)
	assert.True(t, cadierrors.Is(err, cadierrors.InvalidInput))
}

func TestIngestRejectsOverLongContent(t *testing.T) {
	reg := newTestRegistry(t)
	reg.cfg.Storage.MaxContentBytes = 8
	_, err := reg.Ingest(context.Background(), []byte(goSource), "go", "sample")
	require.Error(t, err)
	assert.True(t, cadierrors.Is(err, cadierrors.InvalidInput))
}

func TestIngestDegradesInsteadOfAbortingOnProviderOutage(t *testing.T) {
	reg, provider := newTestRegistryWithProvider(t)
	provider.SetEmbedError(errors.New("provider down"))

	result, err := reg.Ingest(context.Background(), []byte(goSource), "go", "sample")
	require.NoError(t, err)
	assert.True(t, result.Interface.Degraded)

	view, err := reg.GetChunk(result.ChunkID, false)
	require.NoError(t, err)
	assert.Equal(t, "Greet", view.Interface.Name)
}

func TestAliasResolvesToIngestedChunk(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	result, err := reg.Ingest(ctx, []byte(goSource), "go", "sample")
	require.NoError(t, err)

	require.NoError(t, reg.aliases.Set("greeter", result.ChunkID))

	resolved, err := reg.ResolveAlias("greeter")
	require.NoError(t, err)
	assert.Equal(t, result.ChunkID, resolved)
}
