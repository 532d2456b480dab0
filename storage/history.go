package storage

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"

	"github.com/coraldb/coraldb/core"
)

// History records every flushed catalog state as a git commit holding
// the database documents, giving an audit trail of who changed what and
// when. Objects are written straight into the object store; no
// worktree checkout is involved.
type History struct {
	repo     *git.Repository
	identity core.Identity
}

// Snapshot describes one recorded catalog state.
type Snapshot struct {
	ID      string
	Message string
	Author  string
	When    time.Time
}

// NewMemoryHistory keeps the audit trail in memory only.
func NewMemoryHistory(identity core.Identity) (*History, error) {
	repo, err := git.Init(memory.NewStorage(), git.WithWorkTree(memfs.New()))
	if err != nil {
		return nil, err
	}
	return &History{repo: repo, identity: identity}, nil
}

// NewFileHistory stores the audit trail under baseDir.
func NewFileHistory(baseDir string, identity core.Identity) (*History, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	wt := osfs.New(baseDir)
	dotgit, err := wt.Chroot(".git")
	if err != nil {
		return nil, err
	}
	storer := filesystem.NewStorageWithOptions(
		dotgit,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	repo, err := git.Open(storer, wt)
	if err != nil {
		repo, err = git.Init(storer, git.WithWorkTree(wt))
		if err != nil {
			return nil, err
		}
	}
	return &History{repo: repo, identity: identity}, nil
}

// Record commits one catalog state. documents maps file names to their
// serialized contents. A zero author falls back to the history's own
// identity.
func (h *History) Record(documents map[string][]byte, message string, author core.Identity) (Snapshot, error) {
	entries := make([]object.TreeEntry, 0, len(documents))
	for name, data := range documents {
		blobHash, err := h.createBlob(data)
		if err != nil {
			return Snapshot{}, err
		}
		entries = append(entries, object.TreeEntry{
			Name: name,
			Mode: filemode.Regular,
			Hash: blobHash,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	treeHash, err := h.createTree(entries)
	if err != nil {
		return Snapshot{}, err
	}
	if author.Name == "" && author.Email == "" {
		author = h.identity
	}
	return h.createCommit(treeHash, message, author)
}

// Snapshots returns the recorded states, newest first.
func (h *History) Snapshots() ([]Snapshot, error) {
	headRef, err := h.repo.Head()
	if err != nil {
		return nil, nil // nothing recorded yet
	}

	var snapshots []Snapshot
	hash := headRef.Hash()
	for hash != plumbing.ZeroHash {
		commit, err := object.GetCommit(h.repo.Storer, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot %s: %w", hash, err)
		}
		snapshots = append(snapshots, Snapshot{
			ID:      commit.Hash.String(),
			Message: commit.Message,
			Author:  commit.Author.Name,
			When:    commit.Author.When,
		})
		if len(commit.ParentHashes) == 0 {
			break
		}
		hash = commit.ParentHashes[0]
	}
	return snapshots, nil
}

// Document returns the named database document as it was at the given
// snapshot.
func (h *History) Document(snapshotID, name string) ([]byte, error) {
	commit, err := object.GetCommit(h.repo.Storer, plumbing.NewHash(snapshotID))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s not found: %w", snapshotID, err)
	}
	tree, err := object.GetTree(h.repo.Storer, commit.TreeHash)
	if err != nil {
		return nil, err
	}
	file, err := tree.File(name)
	if err != nil {
		return nil, fmt.Errorf("document %q not in snapshot %s: %w", name, snapshotID, err)
	}
	reader, err := file.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (h *History) createBlob(data []byte) (plumbing.Hash, error) {
	obj := h.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to create blob writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("failed to write blob data: %w", err)
	}
	writer.Close()

	hash, err := h.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store blob: %w", err)
	}
	return hash, nil
}

func (h *History) createTree(entries []object.TreeEntry) (plumbing.Hash, error) {
	tree := &object.Tree{Entries: entries}
	obj := h.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode tree: %w", err)
	}
	hash, err := h.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store tree: %w", err)
	}
	return hash, nil
}

func (h *History) createCommit(treeHash plumbing.Hash, message string, author core.Identity) (Snapshot, error) {
	var parents []plumbing.Hash
	headRef, err := h.repo.Head()
	if err == nil {
		parents = []plumbing.Hash{headRef.Hash()}
	}

	sig := object.Signature{
		Name:  author.Name,
		Email: author.Email,
		When:  time.Now(),
	}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: parents,
	}

	obj := h.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode commit: %w", err)
	}
	commitHash, err := h.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to store commit: %w", err)
	}

	branch := plumbing.Master
	if headRef != nil && headRef.Name().IsBranch() {
		branch = headRef.Name()
	}
	ref := plumbing.NewHashReference(branch, commitHash)
	if err := h.repo.Storer.SetReference(ref); err != nil {
		return Snapshot{}, fmt.Errorf("failed to update HEAD: %w", err)
	}

	return Snapshot{
		ID:      commitHash.String(),
		Message: message,
		Author:  sig.Name,
		When:    sig.When,
	}, nil
}
