// Package alias implements the namespace/tag alias store: a mutable,
// many-to-one mapping from human-friendly names to chunk ids.
package alias

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/cadi-dev/cadi/internal/cadierrors"
)

// Store is a thin squirrel-over-sqlite wrapper scoped to the aliases table.
type Store struct {
	db *sql.DB
}

// New wraps an already-open, schema-current database connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Set points alias at chunkID, overwriting any prior target.
func (s *Store) Set(alias, chunkID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := sq.Insert("aliases").
		Columns("alias", "chunk_id", "updated_at").
		Values(alias, chunkID, now).
		Suffix("ON CONFLICT(alias) DO UPDATE SET chunk_id=excluded.chunk_id, updated_at=excluded.updated_at").
		RunWith(s.db).
		Exec()
	if err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "setting alias", err)
	}
	return nil
}

// Resolve returns the chunk_id alias currently points at, or NotFound.
func (s *Store) Resolve(alias string) (string, error) {
	var chunkID string
	err := sq.Select("chunk_id").From("aliases").Where(sq.Eq{"alias": alias}).
		RunWith(s.db).QueryRow().Scan(&chunkID)
	if err == sql.ErrNoRows {
		return "", cadierrors.New(cadierrors.NotFound, "alias not found: "+alias)
	}
	if err != nil {
		return "", cadierrors.Wrap(cadierrors.IOFailure, "resolving alias", err)
	}
	return chunkID, nil
}

// ResolveAll returns every alias currently pointing at chunkID.
func (s *Store) ResolveAll(chunkID string) ([]string, error) {
	rows, err := sq.Select("alias").From("aliases").Where(sq.Eq{"chunk_id": chunkID}).
		RunWith(s.db).Query()
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "listing aliases", err)
	}
	defer rows.Close()

	var aliases []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, cadierrors.Wrap(cadierrors.IOFailure, "scanning alias", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "iterating aliases", err)
	}
	return aliases, nil
}

// Delete removes alias, if present. Deleting a nonexistent alias is a no-op.
func (s *Store) Delete(alias string) error {
	_, err := sq.Delete("aliases").Where(sq.Eq{"alias": alias}).RunWith(s.db).Exec()
	if err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "deleting alias", err)
	}
	return nil
}
