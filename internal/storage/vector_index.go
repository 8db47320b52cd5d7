package storage

import (
	"database/sql"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// InitVectorExtension registers the sqlite-vec extension with the sqlite3
// driver. Must be called once before opening any database that uses vector
// search (Open calls this for you).
func InitVectorExtension() {
	sqlite_vec.Auto()
}

// CreateVectorIndex creates the vec0 virtual table backing k-NN search over
// chunk embeddings. Mirrors the chunk_id primary key so joins against
// `chunks`/`embeddings` are trivial.
func CreateVectorIndex(db *sql.DB, dimensions int) error {
	createSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunk_vectors USING vec0(
			chunk_id TEXT PRIMARY KEY,
			embedding float[%d]
		)
	`, dimensions)

	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}
	return nil
}

// UpsertVector inserts or replaces the vector for a chunk. sqlite-vec's vec0
// tables don't support INSERT OR REPLACE natively, so this deletes first.
func UpsertVector(exec Execer, chunkID string, embedding []float32) error {
	if _, err := exec.Exec("DELETE FROM chunk_vectors WHERE chunk_id = ?", chunkID); err != nil {
		return fmt.Errorf("failed to delete existing vector for %s: %w", chunkID, err)
	}

	embBytes, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return fmt.Errorf("failed to serialize embedding for %s: %w", chunkID, err)
	}

	if _, err := exec.Exec("INSERT INTO chunk_vectors (chunk_id, embedding) VALUES (?, ?)", chunkID, embBytes); err != nil {
		return fmt.Errorf("failed to insert vector for %s: %w", chunkID, err)
	}
	return nil
}

// DeleteVector removes the vector entry for a chunk, if present.
func DeleteVector(exec Execer, chunkID string) error {
	if _, err := exec.Exec("DELETE FROM chunk_vectors WHERE chunk_id = ?", chunkID); err != nil {
		return fmt.Errorf("failed to delete vector for %s: %w", chunkID, err)
	}
	return nil
}

// Execer is satisfied by both *sql.DB and *sql.Tx.
type Execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// VectorMatch is a single k-NN result.
type VectorMatch struct {
	ChunkID  string
	Distance float64 // cosine distance, lower is more similar
}

// QueryVectorSimilarity runs a k-NN cosine search, returning the closest
// limit chunk ids ordered by ascending distance.
func QueryVectorSimilarity(db *sql.DB, queryEmbedding []float32, limit int) ([]VectorMatch, error) {
	queryBytes, err := sqlite_vec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize query embedding: %w", err)
	}

	rows, err := db.Query(`
		SELECT chunk_id, vec_distance_cosine(embedding, ?) as distance
		FROM chunk_vectors
		ORDER BY distance
		LIMIT ?
	`, queryBytes, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}
	defer rows.Close()

	var results []VectorMatch
	for rows.Next() {
		var m VectorMatch
		if err := rows.Scan(&m.ChunkID, &m.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan vector result: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vector results: %w", err)
	}
	return results, nil
}
