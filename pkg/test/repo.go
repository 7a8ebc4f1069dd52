package test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Epoch is the author time of the first commit made by a Repo.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// Repo is a git repository on disk built for tests. Commits get
// deterministic authors and times, one hour apart.
type Repo struct {
	Path string

	t    testing.TB
	repo *gogit.Repository
	wt   *gogit.Worktree
	when time.Time
}

// NewRepo initializes a repository in a temporary directory.
func NewRepo(t testing.TB) *Repo {
	t.Helper()
	return InitRepo(t, t.TempDir())
}

// InitRepo initializes a repository at path.
func InitRepo(t testing.TB, path string) *Repo {
	t.Helper()
	repo, err := gogit.PlainInit(path, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("open worktree: %v", err)
	}
	return &Repo{
		Path: path,
		t:    t,
		repo: repo,
		wt:   wt,
		when: Epoch,
	}
}

// OpenRepo opens an existing work tree created by InitRepo, continuing the
// commit clock after its latest commit.
func OpenRepo(t testing.TB, path string) *Repo {
	t.Helper()
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("open worktree: %v", err)
	}
	when := Epoch
	if head, err := repo.Head(); err == nil {
		if c, err := repo.CommitObject(head.Hash()); err == nil {
			when = c.Committer.When.Add(time.Hour)
		}
	}
	return &Repo{
		Path: path,
		t:    t,
		repo: repo,
		wt:   wt,
		when: when,
	}
}

// WriteFile writes a file in the work tree, creating parent directories.
func (r *Repo) WriteFile(name, content string) {
	r.t.Helper()
	p := filepath.Join(r.Path, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		r.t.Fatalf("create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
}

// Remove deletes a tracked file or directory from the work tree and the
// index.
func (r *Repo) Remove(name string) {
	r.t.Helper()
	if _, err := r.wt.Remove(name); err != nil {
		r.t.Fatalf("remove %s: %v", name, err)
	}
}

// Commit stages every change in the work tree and commits it.
func (r *Repo) Commit(msg string) plumbing.Hash {
	r.t.Helper()
	h, err := CommitAll(r.wt, msg, r.when)
	if err != nil {
		r.t.Fatalf("commit %q: %v", msg, err)
	}
	r.when = r.when.Add(time.Hour)
	return h
}

// CommitAt commits every change with the given author and committer time.
func (r *Repo) CommitAt(msg string, when time.Time) plumbing.Hash {
	r.t.Helper()
	h, err := CommitAll(r.wt, msg, when)
	if err != nil {
		r.t.Fatalf("commit %q: %v", msg, err)
	}
	return h
}

// Git returns the underlying go-git repository.
func (r *Repo) Git() *gogit.Repository {
	return r.repo
}

// CommitAll stages every change in wt and commits it at when.
func CommitAll(wt *gogit.Worktree, msg string, when time.Time) (plumbing.Hash, error) {
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return plumbing.ZeroHash, err
	}
	sig := &object.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  when,
	}
	return wt.Commit(msg, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
}
