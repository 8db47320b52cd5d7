// Package storage owns the single SQLite database that backs the Chunk
// Store, ComponentInterface records, Edge table, alias table, and the
// embedding cache — one engine providing blob, relational, graph, and
// vector-similarity semantics per spec.md §6.2.
package storage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cadi-dev/cadi/internal/cadierrors"
)

// Open opens (creating if necessary) the SQLite database at path, enables
// foreign keys, initializes the sqlite-vec extension, and ensures the schema
// is current.
func Open(path string, vectorDimensions int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "opening database", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "enabling foreign keys", err)
	}

	InitVectorExtension()

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "checking schema version", err)
	}

	if version == "0" {
		if err := CreateSchema(db, vectorDimensions); err != nil {
			db.Close()
			return nil, cadierrors.Wrap(cadierrors.IOFailure, "creating schema", err)
		}
	}

	return db, nil
}

// wrapExec is a small helper that turns a raw driver error into an
// IOFailure, used by writers throughout this package.
func wrapExec(action string, err error) error {
	if err == nil {
		return nil
	}
	return cadierrors.Wrap(cadierrors.IOFailure, action, err)
}
