package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadi-dev/cadi/internal/cadierrors"
	"github.com/cadi-dev/cadi/internal/chunkstore"
	"github.com/cadi-dev/cadi/internal/storage"
)

func newTestStore(t *testing.T) (*chunkstore.Store, *Store) {
	t.Helper()
	db := storage.OpenTestDB(t, 8)
	return chunkstore.New(db), New(db)
}

func TestSetAndResolve(t *testing.T) {
	chunks, aliases := newTestStore(t)
	id, err := chunks.Put([]byte("func a(){}"), "go", "")
	require.NoError(t, err)

	require.NoError(t, aliases.Set("my-router", id))

	resolved, err := aliases.Resolve("my-router")
	require.NoError(t, err)
	assert.Equal(t, id, resolved)
}

func TestSetOverwritesExistingTarget(t *testing.T) {
	chunks, aliases := newTestStore(t)
	id1, err := chunks.Put([]byte("func a(){}"), "go", "")
	require.NoError(t, err)
	id2, err := chunks.Put([]byte("func b(){}"), "go", "")
	require.NoError(t, err)

	require.NoError(t, aliases.Set("thing", id1))
	require.NoError(t, aliases.Set("thing", id2))

	resolved, err := aliases.Resolve("thing")
	require.NoError(t, err)
	assert.Equal(t, id2, resolved)
}

func TestResolveNotFound(t *testing.T) {
	_, aliases := newTestStore(t)
	_, err := aliases.Resolve("missing")
	require.Error(t, err)
	assert.True(t, cadierrors.Is(err, cadierrors.NotFound))
}

func TestResolveAllListsAliasesForChunk(t *testing.T) {
	chunks, aliases := newTestStore(t)
	id, err := chunks.Put([]byte("func a(){}"), "go", "")
	require.NoError(t, err)

	require.NoError(t, aliases.Set("a", id))
	require.NoError(t, aliases.Set("b", id))

	all, err := aliases.ResolveAll(id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, all)
}

func TestDeleteRemovesAlias(t *testing.T) {
	chunks, aliases := newTestStore(t)
	id, err := chunks.Put([]byte("func a(){}"), "go", "")
	require.NoError(t, err)

	require.NoError(t, aliases.Set("temp", id))
	require.NoError(t, aliases.Delete("temp"))

	_, err = aliases.Resolve("temp")
	assert.True(t, cadierrors.Is(err, cadierrors.NotFound))
}
