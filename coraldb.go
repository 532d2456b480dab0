package coraldb

import (
	"github.com/coraldb/coraldb/core"
	"github.com/coraldb/coraldb/db"
	"github.com/coraldb/coraldb/storage"
)

// Instance is an opened CoralDB catalog.
type Instance struct {
	Store *storage.Store
}

// Open wraps an already-constructed store.
func Open(store *storage.Store) *Instance {
	return &Instance{
		Store: store,
	}
}

// OpenMemory creates an in-memory instance with an in-memory snapshot
// history. Nothing survives the process.
func OpenMemory() (*Instance, error) {
	store := storage.NewMemoryStore()
	history, err := storage.NewMemoryHistory(core.Identity{})
	if err != nil {
		return nil, err
	}
	store.SetHistory(history)
	return Open(store), nil
}

// OpenFile opens (or creates) an instance persisted under baseDir,
// with the snapshot history stored alongside the data.
func OpenFile(baseDir string) (*Instance, error) {
	store, err := storage.NewFileStore(baseDir)
	if err != nil {
		return nil, err
	}
	history, err := storage.NewFileHistory(baseDir, core.Identity{})
	if err != nil {
		return nil, err
	}
	store.SetHistory(history)
	return Open(store), nil
}

// Engine returns a SQL engine executing as the given identity. Each
// engine carries its own session state, so concurrent callers should
// hold one engine each.
func (instance *Instance) Engine(identity core.Identity) *db.Engine {
	return db.NewEngine(instance.Store, identity)
}
