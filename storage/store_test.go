package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coraldb/coraldb/core"
)

func seedStore(t *testing.T, store *Store) {
	t.Helper()
	database, err := store.CreateDatabase("shop")
	require.NoError(t, err)

	items, err := database.CreateTable("items", []core.Column{
		{Name: "id", Type: core.IntType, PrimaryKey: true},
		{Name: "name", Type: core.StringType},
		{Name: "price", Type: core.FloatType},
		{Name: "in_stock", Type: core.BoolType},
	})
	require.NoError(t, err)

	_, err = items.Insert([]core.Value{core.NewInt(1), core.NewString("mug"), core.NewFloat(4.5), core.NewBool(true)})
	require.NoError(t, err)
	_, err = items.Insert([]core.Value{core.NewInt(2), core.Null(), core.Null(), core.NewBool(false)})
	require.NoError(t, err)
}

func TestFlushAndReload(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	seedStore(t, store)
	require.NoError(t, store.Flush("seed", core.Identity{}))

	reloaded, err := NewFileStore(dir)
	require.NoError(t, err)

	database, err := reloaded.Database("shop")
	require.NoError(t, err)
	items, err := database.Table("items")
	require.NoError(t, err)

	rows := items.Rows()
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Values[0].Equal(core.NewInt(1)))
	assert.True(t, rows[0].Values[2].Equal(core.NewFloat(4.5)))
	assert.True(t, rows[1].Values[1].IsNull())

	// Indexes must be rebuilt from the reloaded rows.
	idx, ok := items.Index("id")
	require.True(t, ok)
	assert.True(t, idx.Contains(core.NewInt(2)))
}

func TestFlushLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	seedStore(t, store)
	require.NoError(t, store.Flush("seed", core.Identity{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.Equal(t, ".json", filepath.Ext(entry.Name()), "unexpected file %s", entry.Name())
	}
}

func TestFlushRemovesDroppedDatabaseDocument(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	seedStore(t, store)
	require.NoError(t, store.Flush("seed", core.Identity{}))

	require.NoError(t, store.DropDatabase("shop"))
	require.NoError(t, store.Flush("drop shop", core.Identity{}))

	_, err = os.Stat(filepath.Join(dir, "shop.json"))
	assert.True(t, os.IsNotExist(err), "dropped database document still on disk")
}

func TestMemoryStoreFlush(t *testing.T) {
	store := NewMemoryStore()
	seedStore(t, store)
	require.NoError(t, store.Flush("seed", core.Identity{}))

	_, err := store.Database("nope")
	var notFound DatabaseNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestFlushRecordsHistory(t *testing.T) {
	history, err := NewMemoryHistory(core.Identity{Name: "amy", Email: "amy@example.com"})
	require.NoError(t, err)

	store := NewMemoryStore()
	store.SetHistory(history)
	seedStore(t, store)
	require.NoError(t, store.Flush("seed shop", core.Identity{}))
	require.NoError(t, store.Flush("second state", core.Identity{}))

	snapshots, err := history.Snapshots()
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "second state", snapshots[0].Message)
	assert.Equal(t, "amy", snapshots[0].Author)

	document, err := history.Document(snapshots[1].ID, "shop.json")
	require.NoError(t, err)
	database, err := decodeDatabase(document)
	require.NoError(t, err)
	assert.Equal(t, "shop", database.Name)
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewMemoryStore()
	seedStore(t, store)

	path := filepath.Join(dir, "shop-export.json")
	require.NoError(t, store.Export("shop", path, nil))

	other := NewMemoryStore()
	database, err := other.Import(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "shop", database.Name)

	items, err := database.Table("items")
	require.NoError(t, err)
	assert.Len(t, items.Rows(), 2)

	// A second import collides with the existing database.
	_, err = other.Import(path, nil)
	assert.Error(t, err)
}
