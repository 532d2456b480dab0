package storage

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"

	"github.com/coraldb/coraldb/core"
)

// Store is the catalog: the full set of databases plus the filesystem
// they persist to. Every database lives in its own JSON document named
// <database>.json; Flush rewrites changed documents by writing to a
// temporary file and renaming it over the old one, so a crash mid-write
// never leaves a torn document behind.
type Store struct {
	fs      billy.Filesystem
	mu      sync.RWMutex
	order   []string
	byName  map[string]*Database
	history *History
}

// NewMemoryStore builds a store over an in-memory filesystem. Used by
// tests and throwaway sessions.
func NewMemoryStore() *Store {
	return &Store{
		fs:     memfs.New(),
		byName: make(map[string]*Database),
	}
}

// NewFileStore opens a store rooted at baseDir, loading any database
// documents already present.
func NewFileStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	store := &Store{
		fs:     osfs.New(baseDir),
		byName: make(map[string]*Database),
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

// History returns the attached snapshot history, or nil.
func (s *Store) History() *History {
	return s.history
}

// SetHistory attaches a snapshot history; every Flush records one
// snapshot of the changed documents.
func (s *Store) SetHistory(history *History) {
	s.history = history
}

func (s *Store) load() error {
	entries, err := s.fs.ReadDir(".")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := s.readFile(name)
		if err != nil {
			return err
		}
		database, err := decodeDatabase(data)
		if err != nil {
			return err
		}
		s.order = append(s.order, database.Name)
		s.byName[database.Name] = database
	}
	return nil
}

func (s *Store) readFile(name string) ([]byte, error) {
	file, err := s.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// CreateDatabase adds an empty database to the catalog.
func (s *Store) CreateDatabase(name string) (*Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[name]; exists {
		return nil, fmt.Errorf("database %q already exists", name)
	}
	database := NewDatabase(name)
	s.order = append(s.order, name)
	s.byName[name] = database
	return database, nil
}

// DropDatabase removes a database and, on the next Flush, its document.
func (s *Store) DropDatabase(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[name]; !exists {
		return DatabaseNotFoundError{Database: name}
	}
	delete(s.byName, name)
	for i, existing := range s.order {
		if existing == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Database returns the named database.
func (s *Store) Database(name string) (*Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	database, ok := s.byName[name]
	if !ok {
		return nil, DatabaseNotFoundError{Database: name}
	}
	return database, nil
}

// Databases returns every database in creation order.
func (s *Store) Databases() []*Database {
	s.mu.RLock()
	defer s.mu.RUnlock()
	databases := make([]*Database, 0, len(s.order))
	for _, name := range s.order {
		databases = append(databases, s.byName[name])
	}
	return databases
}

// Flush persists every database document atomically and removes the
// documents of dropped databases. When a history is attached, the new
// catalog state is also recorded as one snapshot authored by the given
// identity.
func (s *Store) Flush(message string, author core.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	documents := make(map[string][]byte, len(s.order))
	for _, name := range s.order {
		data, err := encodeDatabase(s.byName[name])
		if err != nil {
			return err
		}
		documents[name+".json"] = data
	}

	for name, data := range documents {
		if err := s.writeAtomic(name, data); err != nil {
			return err
		}
	}

	// Remove documents whose database no longer exists.
	entries, err := s.fs.ReadDir(".")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, live := documents[name]; !live {
			if err := s.fs.Remove(name); err != nil {
				return err
			}
		}
	}

	if s.history != nil {
		if _, err := s.history.Record(documents, message, author); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeAtomic(name string, data []byte) error {
	tmp := name + ".tmp"
	file, err := s.fs.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return s.fs.Rename(tmp, name)
}
