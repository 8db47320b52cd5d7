package dedup

import (
	"database/sql"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadi-dev/cadi/internal/chunkstore"
	"github.com/cadi-dev/cadi/internal/graph"
	"github.com/cadi-dev/cadi/internal/storage"
)

func newTestEngine(t *testing.T) (*sql.DB, *chunkstore.Store, *graph.Store, *Engine) {
	t.Helper()
	db := storage.OpenTestDB(t, 8)
	chunks := chunkstore.New(db)
	gstore := graph.NewStore(db)
	return db, chunks, gstore, New(db, gstore)
}

func TestOnIngestLinksMatchingSemanticHash(t *testing.T) {
	db, chunks, gstore, engine := newTestEngine(t)
	_ = db

	_, err := chunks.PutWithHash([]byte("func a(){}"), "go", "", "hash-x")
	require.NoError(t, err)
	id2, err := chunks.PutWithHash([]byte("func b(){}"), "go", "", "hash-x")
	require.NoError(t, err)

	require.NoError(t, engine.OnIngest(id2, "go", "hash-x"))

	edges, err := gstore.LoadAll()
	require.NoError(t, err)
	require.NotEmpty(t, edges)
	assert.Equal(t, graph.EquivalentTo, edges[0].Type)
}

func TestOnIngestNoMatchCreatesNoEdge(t *testing.T) {
	_, chunks, gstore, engine := newTestEngine(t)

	id1, err := chunks.PutWithHash([]byte("func a(){}"), "go", "", "hash-a")
	require.NoError(t, err)

	require.NoError(t, engine.OnIngest(id1, "go", "hash-a"))

	edges, err := gstore.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestReconcileLinksAllMembersOfAGroup(t *testing.T) {
	db, _, gstore, engine := newTestEngine(t)

	for _, content := range []string{"func a(){}", "func b(){}", "func c(){}"} {
		id := chunkstore.ID([]byte(content), "go")
		_, err := sq.Insert("chunks").
			Columns("chunk_id", "content", "language", "semantic_hash", "namespace", "created_at").
			Values(id, []byte(content), "go", "shared-hash", nil, "2026-01-01T00:00:00Z").
			RunWith(db).Exec()
		require.NoError(t, err)
	}

	created, err := engine.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	edges, err := gstore.LoadAll()
	require.NoError(t, err)
	assert.Len(t, edges, 4) // 2 forward EQUIVALENT_TO + 2 materialized reverses
}

func TestReconcileIsIdempotent(t *testing.T) {
	db, _, gstore, engine := newTestEngine(t)

	for _, content := range []string{"func a(){}", "func b(){}"} {
		id := chunkstore.ID([]byte(content), "go")
		_, err := sq.Insert("chunks").
			Columns("chunk_id", "content", "language", "semantic_hash", "namespace", "created_at").
			Values(id, []byte(content), "go", "shared-hash", nil, "2026-01-01T00:00:00Z").
			RunWith(db).Exec()
		require.NoError(t, err)
	}

	_, err := engine.Reconcile()
	require.NoError(t, err)
	_, err = engine.Reconcile()
	require.NoError(t, err)

	edges, err := gstore.LoadAll()
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}
