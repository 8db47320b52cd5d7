package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFindsMatchingName(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Upsert(Document{ChunkID: "c1", Name: "HashRouter", Summary: "routes http requests"}))
	require.NoError(t, idx.Upsert(Document{ChunkID: "c2", Name: "ParseConfig", Summary: "loads yaml config"}))

	results, err := idx.Search("HashRouter", "", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "c1", results[0].ChunkID)
}

func TestSearchBoostsNameOverSignature(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Upsert(Document{ChunkID: "named", Name: "cache", Summary: "irrelevant"}))
	require.NoError(t, idx.Upsert(Document{ChunkID: "signatured", Name: "irrelevant", Signatures: "func cache() error"}))

	results, err := idx.Search("cache", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "named", results[0].ChunkID)
}

func TestSearchFiltersByNamespace(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Upsert(Document{ChunkID: "a", Name: "widget", Namespace: "teamA"}))
	require.NoError(t, idx.Upsert(Document{ChunkID: "b", Name: "widget", Namespace: "teamB"}))

	results, err := idx.Search("widget", "teamA", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ChunkID)
}

func TestDeleteRemovesDocument(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Upsert(Document{ChunkID: "gone", Name: "ephemeral"}))
	require.NoError(t, idx.Delete("gone"))

	results, err := idx.Search("ephemeral", "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
