package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateSchema creates all tables, indexes, and virtual tables for the CADI
// registry. Uses a transaction for atomicity — all schema creation succeeds
// or fails together, the way the teacher's CreateSchema does.
//
// Schema includes:
//   - chunks, interfaces, edges, aliases, embeddings, cache_metadata tables
//   - sqlite-vec virtual table for vector similarity search (chunk_vectors)
//   - foreign key constraints and indexes
//   - bootstrap metadata
//
// Must be called with PRAGMA foreign_keys = ON already set on db.
func CreateSchema(db *sql.DB, vectorDimensions int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"chunks", createChunksTable},
		{"interfaces", createInterfacesTable},
		{"edges", createEdgesTable},
		{"aliases", createAliasesTable},
		{"embeddings", createEmbeddingsTable},
		{"cache_metadata", createCacheMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	// Vector virtual tables must be created outside a transaction.
	if err := CreateVectorIndex(db, vectorDimensions); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	tx, err = db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin metadata transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT INTO cache_metadata (key, value, updated_at) VALUES
			('schema_version', '1.0', ?),
			('embedding_dimensions', ?, ?)
	`
	if _, err := tx.Exec(bootstrapSQL, now, fmt.Sprintf("%d", vectorDimensions), now); err != nil {
		return fmt.Errorf("failed to bootstrap cache_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metadata transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version, returning "0" for a brand
// new (pre-schema) database.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='cache_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check cache_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM cache_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in cache_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// UpdateSchemaVersion sets or updates the schema version.
func UpdateSchemaVersion(db *sql.DB, version string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO cache_metadata (key, value, updated_at)
		VALUES ('schema_version', ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := db.Exec(query, version, now)
	if err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

const createChunksTable = `
CREATE TABLE chunks (
    chunk_id      TEXT PRIMARY KEY,             -- chunk:sha256:<hex>
    content       BLOB NOT NULL,
    language      TEXT NOT NULL,
    semantic_hash TEXT NOT NULL,
    namespace     TEXT,
    created_at    TEXT NOT NULL
)
`

const createInterfacesTable = `
CREATE TABLE interfaces (
    chunk_id           TEXT PRIMARY KEY,
    name               TEXT NOT NULL,
    signature          TEXT NOT NULL,
    summary            TEXT NOT NULL,
    role               TEXT NOT NULL,
    inputs_json        TEXT NOT NULL,           -- []{name,type_signature,required}
    output             TEXT NOT NULL,
    methods_json       TEXT NOT NULL,           -- []{name,params,return}
    endpoints_json     TEXT NOT NULL,           -- []{http_method,path}
    dependencies_json  TEXT NOT NULL,           -- []string
    side_effects_json  TEXT NOT NULL,           -- []string
    usage_examples_json TEXT NOT NULL,          -- []string
    compatible_with_json TEXT NOT NULL,         -- []{chunk_id,mode}
    concepts_json      TEXT NOT NULL,           -- []string
    quality_usage_count INTEGER NOT NULL DEFAULT 0,
    quality_test_coverage REAL NOT NULL DEFAULT 0,
    quality_avg_score  REAL NOT NULL DEFAULT 0,
    degraded           INTEGER NOT NULL DEFAULT 0,
    confidence         REAL NOT NULL DEFAULT 1.0,
    normalizer_version TEXT NOT NULL,
    extractor_version  TEXT NOT NULL,
    FOREIGN KEY (chunk_id) REFERENCES chunks(chunk_id) ON DELETE CASCADE
)
`

const createEdgesTable = `
CREATE TABLE edges (
    edge_id        TEXT PRIMARY KEY,
    from_chunk_id  TEXT NOT NULL,
    to_chunk_id    TEXT NOT NULL,
    edge_type      TEXT NOT NULL,
    confidence     REAL NOT NULL DEFAULT 1.0,
    context_key    TEXT NOT NULL DEFAULT '',
    context_json   TEXT,
    created_at     TEXT NOT NULL,
    FOREIGN KEY (from_chunk_id) REFERENCES chunks(chunk_id) ON DELETE CASCADE,
    FOREIGN KEY (to_chunk_id) REFERENCES chunks(chunk_id) ON DELETE CASCADE,
    UNIQUE(from_chunk_id, to_chunk_id, edge_type, context_key)
)
`

const createAliasesTable = `
CREATE TABLE aliases (
    alias      TEXT PRIMARY KEY,
    chunk_id   TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (chunk_id) REFERENCES chunks(chunk_id) ON DELETE CASCADE
)
`

const createEmbeddingsTable = `
CREATE TABLE embeddings (
    chunk_id         TEXT PRIMARY KEY,
    provider_version TEXT NOT NULL,
    vector           BLOB NOT NULL,
    dimensions       INTEGER NOT NULL,
    created_at       TEXT NOT NULL,
    FOREIGN KEY (chunk_id) REFERENCES chunks(chunk_id) ON DELETE CASCADE
)
`

const createCacheMetadataTable = `
CREATE TABLE cache_metadata (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_chunks_language ON chunks(language)",
		"CREATE INDEX idx_chunks_semantic_hash ON chunks(semantic_hash)",
		"CREATE INDEX idx_chunks_namespace ON chunks(namespace)",

		"CREATE INDEX idx_interfaces_role ON interfaces(role)",
		"CREATE INDEX idx_interfaces_name ON interfaces(name)",

		"CREATE INDEX idx_edges_from ON edges(from_chunk_id)",
		"CREATE INDEX idx_edges_to ON edges(to_chunk_id)",
		"CREATE INDEX idx_edges_type ON edges(edge_type)",

		"CREATE INDEX idx_aliases_chunk_id ON aliases(chunk_id)",
	}
}
