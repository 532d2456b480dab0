package storage

import "github.com/coraldb/coraldb/core"

// Index is a hash index over one column, mapping canonical value
// encodings to the ids of the rows holding that value. NULL values are
// never indexed; constraint checks and lookups skip them.
type Index struct {
	Column  string
	Unique  bool
	entries map[string][]int64
}

func NewIndex(column string, unique bool) *Index {
	return &Index{
		Column:  column,
		Unique:  unique,
		entries: make(map[string][]int64),
	}
}

// Insert records rowID under the given value. NULLs are ignored.
func (idx *Index) Insert(value core.Value, rowID int64) {
	if value.IsNull() {
		return
	}
	key := value.Key()
	idx.entries[key] = append(idx.entries[key], rowID)
}

// Delete removes rowID from the entry for the given value.
func (idx *Index) Delete(value core.Value, rowID int64) {
	if value.IsNull() {
		return
	}
	key := value.Key()
	ids := idx.entries[key]
	for i, id := range ids {
		if id == rowID {
			idx.entries[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(idx.entries[key]) == 0 {
		delete(idx.entries, key)
	}
}

// Lookup returns the ids of the rows holding the given value. A NULL
// value matches nothing.
func (idx *Index) Lookup(value core.Value) []int64 {
	if value.IsNull() {
		return nil
	}
	return idx.entries[value.Key()]
}

// Contains reports whether any row holds the given value.
func (idx *Index) Contains(value core.Value) bool {
	return len(idx.Lookup(value)) > 0
}

func (idx *Index) clear() {
	idx.entries = make(map[string][]int64)
}
