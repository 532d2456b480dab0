// Package storage implements the storage engine for CoralDB: the
// catalog of databases, their tables and rows, automatic hash indexes,
// and JSON-document persistence.
//
// # Layout
//
// A Store owns every database. A Database owns tables; a Table owns
// rows and one hash Index per PRIMARY KEY, UNIQUE or REFERENCES
// column. Mutations validate types and constraints before touching
// rows or indexes, so a failed statement never leaves partial state.
//
// # Persistence
//
// Each database serializes to one JSON document. Flush writes changed
// documents to a temporary file and renames it into place; loading
// rebuilds every index from the persisted rows.
//
//	store, err := storage.NewFileStore("/var/lib/coraldb")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Flush("shutdown")
//
// For tests and throwaway sessions, NewMemoryStore keeps everything on
// an in-memory filesystem.
//
// # History
//
// An optional History records every flushed state as a git commit,
// giving an audit trail queryable by snapshot:
//
//	history, _ := storage.NewMemoryHistory(core.Identity{Name: "amy"})
//	store.SetHistory(history)
package storage
