package test

import (
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Entry is a tree entry written by WriteTree.
type Entry struct {
	Name string
	Mode filemode.FileMode
	Hash plumbing.Hash
}

// File returns a regular file entry.
func File(name string, id plumbing.Hash) Entry {
	return Entry{Name: name, Mode: filemode.Regular, Hash: id}
}

// Dir returns a subdirectory entry.
func Dir(name string, id plumbing.Hash) Entry {
	return Entry{Name: name, Mode: filemode.Dir, Hash: id}
}

// Symlink returns a symbolic link entry. id is the blob holding the target.
func Symlink(name string, id plumbing.Hash) Entry {
	return Entry{Name: name, Mode: filemode.Symlink, Hash: id}
}

// Submodule returns a gitlink entry pointing at commit id of another
// repository.
func Submodule(name string, id plumbing.Hash) Entry {
	return Entry{Name: name, Mode: filemode.Submodule, Hash: id}
}

// WriteBlob stores content as a blob and returns its id. The work tree is
// not touched.
func (r *Repo) WriteBlob(content string) plumbing.Hash {
	r.t.Helper()
	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		r.t.Fatalf("write blob: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		r.t.Fatalf("write blob: %v", err)
	}
	if err := w.Close(); err != nil {
		r.t.Fatalf("write blob: %v", err)
	}
	return r.store(obj)
}

// WriteTree stores a tree holding entries, in git order, and returns its id.
func (r *Repo) WriteTree(entries ...Entry) plumbing.Hash {
	r.t.Helper()
	key := func(e Entry) string {
		if e.Mode == filemode.Dir {
			return e.Name + "/"
		}
		return e.Name
	}
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.Compare(key(sorted[i]), key(sorted[j])) < 0
	})

	t := &object.Tree{}
	for _, e := range sorted {
		t.Entries = append(t.Entries, object.TreeEntry{Name: e.Name, Mode: e.Mode, Hash: e.Hash})
	}
	obj := r.repo.Storer.NewEncodedObject()
	if err := t.Encode(obj); err != nil {
		r.t.Fatalf("encode tree: %v", err)
	}
	return r.store(obj)
}

// CommitTree stores a commit of tree with the given parents, moves the
// current branch to it and returns its id.
func (r *Repo) CommitTree(msg string, tree plumbing.Hash, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	sig := object.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  r.when,
	}
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg,
		TreeHash:     tree,
		ParentHashes: parents,
	}
	obj := r.repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		r.t.Fatalf("encode commit: %v", err)
	}
	id := r.store(obj)

	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		r.t.Fatalf("read HEAD: %v", err)
	}
	branch := head.Target()
	if head.Type() == plumbing.HashReference {
		branch = plumbing.Master
	}
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(branch, id)); err != nil {
		r.t.Fatalf("update %s: %v", branch, err)
	}
	r.when = r.when.Add(time.Hour)
	return id
}

func (r *Repo) store(obj plumbing.EncodedObject) plumbing.Hash {
	r.t.Helper()
	id, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		r.t.Fatalf("store %s: %v", obj.Type(), err)
	}
	return id
}
