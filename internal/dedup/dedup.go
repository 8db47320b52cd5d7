// Package dedup implements the Deduplication Engine: at ingest time, a new
// chunk whose semantic_hash matches an existing chunk's earns an
// EQUIVALENT_TO edge to that chunk rather than being treated as novel, and
// a periodic sweep reconciles any pairs ingest-time dedup missed.
package dedup

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/cadi-dev/cadi/internal/cadierrors"
	"github.com/cadi-dev/cadi/internal/graph"
)

// Engine materializes EQUIVALENT_TO edges between chunks sharing a
// semantic_hash within the same language.
type Engine struct {
	db         *sql.DB
	graphStore *graph.Store
}

// New wires a dedup engine against the shared database and graph store.
func New(db *sql.DB, graphStore *graph.Store) *Engine {
	return &Engine{db: db, graphStore: graphStore}
}

// OnIngest checks newChunkID's semantic_hash against existing chunks of the
// same language and, on a match, creates an EQUIVALENT_TO edge to the
// lowest chunk_id among matches (the stable canonical representative). The
// new chunk is never rejected; it is always stored, only linked.
func (e *Engine) OnIngest(newChunkID, language, semanticHash string) error {
	rows, err := sq.Select("chunk_id").
		From("chunks").
		Where(sq.Eq{"language": language, "semantic_hash": semanticHash}).
		Where(sq.NotEq{"chunk_id": newChunkID}).
		RunWith(e.db).
		Query()
	if err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "querying semantic hash matches", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return cadierrors.Wrap(cadierrors.IOFailure, "scanning semantic hash match", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return cadierrors.Wrap(cadierrors.IOFailure, "iterating semantic hash matches", err)
	}
	if len(matches) == 0 {
		return nil
	}

	canonical := matches[0]
	for _, id := range matches[1:] {
		if id < canonical {
			canonical = id
		}
	}

	return e.graphStore.CreateEdge(graph.Edge{
		From:       newChunkID,
		To:         canonical,
		Type:       graph.EquivalentTo,
		Confidence: 1.0,
	})
}

// Reconcile sweeps every (language, semantic_hash) group with more than one
// chunk and ensures every member has an EQUIVALENT_TO edge to the group's
// canonical representative. Safe to run repeatedly: edge creation is
// idempotent. Returns the number of non-canonical members it linked; a
// member that was already linked is counted again on a repeat sweep.
func (e *Engine) Reconcile() (int, error) {
	rows, err := sq.Select("language", "semantic_hash").
		From("chunks").
		Where(sq.NotEq{"semantic_hash": ""}).
		GroupBy("language", "semantic_hash").
		Having("COUNT(*) > 1").
		RunWith(e.db).
		Query()
	if err != nil {
		return 0, cadierrors.Wrap(cadierrors.IOFailure, "querying duplicate groups", err)
	}
	defer rows.Close()

	type group struct{ language, hash string }
	var groups []group
	for rows.Next() {
		var g group
		if err := rows.Scan(&g.language, &g.hash); err != nil {
			return 0, cadierrors.Wrap(cadierrors.IOFailure, "scanning duplicate group", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return 0, cadierrors.Wrap(cadierrors.IOFailure, "iterating duplicate groups", err)
	}

	created := 0
	for _, g := range groups {
		memberRows, err := sq.Select("chunk_id").
			From("chunks").
			Where(sq.Eq{"language": g.language, "semantic_hash": g.hash}).
			OrderBy("chunk_id").
			RunWith(e.db).
			Query()
		if err != nil {
			return created, cadierrors.Wrap(cadierrors.IOFailure, "querying group members", err)
		}

		var members []string
		for memberRows.Next() {
			var id string
			if err := memberRows.Scan(&id); err != nil {
				memberRows.Close()
				return created, cadierrors.Wrap(cadierrors.IOFailure, "scanning group member", err)
			}
			members = append(members, id)
		}
		memberRows.Close()
		if len(members) < 2 {
			continue
		}

		canonical := members[0]
		for _, id := range members[1:] {
			if err := e.graphStore.CreateEdge(graph.Edge{
				From:       id,
				To:         canonical,
				Type:       graph.EquivalentTo,
				Confidence: 1.0,
			}); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
