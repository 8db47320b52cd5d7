package graph

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/cadi-dev/cadi/internal/cadierrors"
)

// Store is the durable, SQLite-backed half of the graph: append-only edge
// persistence with symmetric materialization for EQUIVALENT_TO.
type Store struct {
	db *sql.DB
}

// NewStore wraps an already-open, schema-current database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateEdge appends an edge. Duplicates on (from, to, type, context_key)
// are a no-op, matching the append-only, collapse-duplicates invariant.
// EQUIVALENT_TO additionally materializes the reverse edge, since it is
// symmetric by construction.
func (s *Store) CreateEdge(e Edge) error {
	if err := s.insertEdge(e); err != nil {
		return err
	}
	if e.Type == EquivalentTo && e.From != e.To {
		reverse := e
		reverse.From, reverse.To = e.To, e.From
		if err := s.insertEdge(reverse); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertEdge(e Edge) error {
	if e.ID == "" {
		e.ID = "edge:" + uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := sq.Insert("edges").
		Columns("edge_id", "from_chunk_id", "to_chunk_id", "edge_type", "confidence", "context_key", "context_json", "created_at").
		Values(e.ID, e.From, e.To, string(e.Type), e.Confidence, e.ContextKey, nullableString(e.Context), e.CreatedAt.Format(time.RFC3339)).
		Suffix("ON CONFLICT(from_chunk_id, to_chunk_id, edge_type, context_key) DO NOTHING").
		RunWith(s.db).
		Exec()
	if err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "inserting edge", err)
	}
	return nil
}

// Outgoing returns direct successors of chunk, optionally filtered by type.
func (s *Store) Outgoing(chunk string, edgeType *EdgeType) ([]Edge, error) {
	q := sq.Select("edge_id", "from_chunk_id", "to_chunk_id", "edge_type", "confidence", "context_key", "context_json", "created_at").
		From("edges").
		Where(sq.Eq{"from_chunk_id": chunk})
	if edgeType != nil {
		q = q.Where(sq.Eq{"edge_type": string(*edgeType)})
	}

	rows, err := q.RunWith(s.db).Query()
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "querying outgoing edges", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// LoadAll returns every edge in the store, used to build the in-memory
// traversal graph.
func (s *Store) LoadAll() ([]Edge, error) {
	rows, err := sq.Select("edge_id", "from_chunk_id", "to_chunk_id", "edge_type", "confidence", "context_key", "context_json", "created_at").
		From("edges").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "loading edges", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func scanEdges(rows *sql.Rows) ([]Edge, error) {
	var edges []Edge
	for rows.Next() {
		var (
			e                       Edge
			edgeType, createdAtStr  string
			contextKey              sql.NullString
			contextJSON             sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.From, &e.To, &edgeType, &e.Confidence, &contextKey, &contextJSON, &createdAtStr); err != nil {
			return nil, cadierrors.Wrap(cadierrors.IOFailure, "scanning edge", err)
		}
		e.Type = EdgeType(edgeType)
		e.ContextKey = contextKey.String
		e.Context = contextJSON.String
		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, cadierrors.Wrap(cadierrors.IOFailure, "parsing edge timestamp", err)
		}
		e.CreatedAt = createdAt
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "iterating edges", err)
	}
	return edges, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
