package chunkstore

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/cadi-dev/cadi/internal/cadierrors"
)

// Store is the Chunk Store: a thin, transactional wrapper over the shared
// SQLite connection scoped to the chunks table.
type Store struct {
	db *sql.DB
}

// New wraps an already-open, schema-current database connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Put persists content under language, returning its content-addressed id.
// If the chunk already exists, Put is a no-op and returns the existing id —
// put is a pure function of (content, language).
func (s *Store) Put(content []byte, language, namespace string) (string, error) {
	id := ID(content, language)

	exists, err := s.Exists(id)
	if err != nil {
		return "", err
	}
	if exists {
		return id, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = sq.Insert("chunks").
		Columns("chunk_id", "content", "language", "semantic_hash", "namespace", "created_at").
		Values(id, content, language, "", nullableString(namespace), now).
		RunWith(s.db).
		Exec()
	if err != nil {
		return "", cadierrors.Wrap(cadierrors.IOFailure, "inserting chunk", err)
	}
	return id, nil
}

// PutWithHash is like Put but also stores a precomputed semantic hash, used
// by the ingest pipeline once normalization has run.
func (s *Store) PutWithHash(content []byte, language, namespace, semanticHash string) (string, error) {
	id := ID(content, language)

	exists, err := s.Exists(id)
	if err != nil {
		return "", err
	}
	if exists {
		return id, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = sq.Insert("chunks").
		Columns("chunk_id", "content", "language", "semantic_hash", "namespace", "created_at").
		Values(id, content, language, semanticHash, nullableString(namespace), now).
		RunWith(s.db).
		Exec()
	if err != nil {
		return "", cadierrors.Wrap(cadierrors.IOFailure, "inserting chunk", err)
	}
	return id, nil
}

// Get returns the chunk identified by id, or NotFound.
func (s *Store) Get(id string) (*Chunk, error) {
	row := sq.Select("chunk_id", "content", "language", "namespace", "created_at").
		From("chunks").
		Where(sq.Eq{"chunk_id": id}).
		RunWith(s.db).
		QueryRow()

	var (
		chunkID, language, createdAtStr string
		content                         []byte
		namespace                       sql.NullString
	)
	if err := row.Scan(&chunkID, &content, &language, &namespace, &createdAtStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, cadierrors.New(cadierrors.NotFound, "chunk not found: "+id)
		}
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "reading chunk", err)
	}

	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "parsing chunk timestamp", err)
	}

	return &Chunk{
		ID:        chunkID,
		Content:   content,
		Language:  language,
		Namespace: namespace.String,
		CreatedAt: createdAt,
	}, nil
}

// Exists reports whether id is present, without loading content.
func (s *Store) Exists(id string) (bool, error) {
	var count int
	err := sq.Select("COUNT(*)").From("chunks").Where(sq.Eq{"chunk_id": id}).
		RunWith(s.db).QueryRow().Scan(&count)
	if err != nil {
		return false, cadierrors.Wrap(cadierrors.IOFailure, "checking chunk existence", err)
	}
	return count > 0, nil
}

// SemanticHash returns the stored semantic_hash for id, or NotFound.
func (s *Store) SemanticHash(id string) (string, error) {
	var hash string
	err := sq.Select("semantic_hash").From("chunks").Where(sq.Eq{"chunk_id": id}).
		RunWith(s.db).QueryRow().Scan(&hash)
	if err == sql.ErrNoRows {
		return "", cadierrors.New(cadierrors.NotFound, "chunk not found: "+id)
	}
	if err != nil {
		return "", cadierrors.Wrap(cadierrors.IOFailure, "reading semantic hash", err)
	}
	return hash, nil
}

// Delete removes a chunk, refusing with ReferenceHeld while any edge still
// points at it.
func (s *Store) Delete(id string) error {
	exists, err := s.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return cadierrors.New(cadierrors.NotFound, "chunk not found: "+id)
	}

	var refCount int
	err = sq.Select("COUNT(*)").From("edges").
		Where(sq.Or{sq.Eq{"from_chunk_id": id}, sq.Eq{"to_chunk_id": id}}).
		RunWith(s.db).QueryRow().Scan(&refCount)
	if err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "checking chunk references", err)
	}
	if refCount > 0 {
		return cadierrors.New(cadierrors.ReferenceHeld, "chunk referenced by edges: "+id)
	}

	_, err = sq.Delete("chunks").Where(sq.Eq{"chunk_id": id}).RunWith(s.db).Exec()
	if err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "deleting chunk", err)
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
