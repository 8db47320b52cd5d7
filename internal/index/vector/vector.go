// Package vector implements the vector half of hybrid search: embedding
// text on first use (via an embedding.Provider, whose own cache absorbs
// repeats) and storing/querying the resulting vectors in sqlite-vec.
package vector

import (
	"context"
	"database/sql"

	"github.com/cadi-dev/cadi/internal/cadierrors"
	"github.com/cadi-dev/cadi/internal/embedding"
	"github.com/cadi-dev/cadi/internal/storage"
)

// Match is a single k-NN result, ordered by ascending cosine distance.
type Match struct {
	ChunkID  string
	Distance float64
}

// Index embeds text and stores/queries the resulting vectors against the
// chunk_vectors table.
type Index struct {
	db       *sql.DB
	provider embedding.Provider
}

// New wraps db's vector table with the given provider. CreateVectorIndex
// must already have been called with the provider's dimensionality.
func New(db *sql.DB, provider embedding.Provider) *Index {
	return &Index{db: db, provider: provider}
}

// Upsert embeds text and stores the resulting vector under chunkID,
// replacing any existing vector.
func (idx *Index) Upsert(ctx context.Context, chunkID, text string) error {
	vectors, err := idx.provider.Embed(ctx, []string{text})
	if err != nil {
		return cadierrors.Wrap(cadierrors.ProviderUnavailable, "embedding text for "+chunkID, err)
	}
	if err := storage.UpsertVector(idx.db, chunkID, vectors[0]); err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "storing vector for "+chunkID, err)
	}
	return nil
}

// Delete removes chunkID's vector, if present.
func (idx *Index) Delete(chunkID string) error {
	if err := storage.DeleteVector(idx.db, chunkID); err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "deleting vector for "+chunkID, err)
	}
	return nil
}

// Query embeds text and returns the limit nearest stored vectors by cosine
// distance.
func (idx *Index) Query(ctx context.Context, text string, limit int) ([]Match, error) {
	vectors, err := idx.provider.Embed(ctx, []string{text})
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.ProviderUnavailable, "embedding query text", err)
	}

	rows, err := storage.QueryVectorSimilarity(idx.db, vectors[0], limit)
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "querying vector index", err)
	}

	matches := make([]Match, len(rows))
	for i, r := range rows {
		matches[i] = Match{ChunkID: r.ChunkID, Distance: r.Distance}
	}
	return matches, nil
}
