package git

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the default number of decoded commits and trees kept in
// memory.
const DefaultCacheSize = 4096

// Repository is a read-only view of an on-disk git repository. It owns the
// object cache for its lifetime and is safe for concurrent use.
type Repository struct {
	// Path is the absolute path the repository was opened from.
	Path string
	// GitDir is the absolute path of the object database and reference store.
	GitDir string
	// IsBare is true when Path is the git directory itself.
	IsBare bool

	repo   *gogit.Repository
	logger *log.Logger

	// mu serializes access to the go-git storer, which is not safe for
	// concurrent reads of packfiles.
	mu      sync.Mutex
	objects *lru.Cache[Hash, any]
	fill    singleflight.Group

	metaOnce sync.Once
	meta     Metadata
}

type options struct {
	cacheSize int
	logger    *log.Logger
}

// Option configures Open.
type Option func(*options)

// WithCacheSize sets the number of decoded commits and trees kept in memory.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Open opens the git repository at path. The path may be a work tree
// containing a .git directory (or a .git file pointing elsewhere) or a bare
// repository.
func Open(path string, opts ...Option) (*Repository, error) {
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize <= 0 {
		o.cacheSize = 1
	}
	if o.logger == nil {
		o.logger = log.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRepositoryNotFound, path, err)
	}

	gitDir, bare, err := findGitDir(abs)
	if err != nil {
		return nil, err
	}

	st := filesystem.NewStorage(osfs.New(gitDir), cache.NewObjectLRUDefault())
	repo, err := gogit.Open(st, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptRepository, abs, err)
	}

	objects, err := lru.New[Hash, any](o.cacheSize)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("opened repository", "path", abs, "git-dir", gitDir, "bare", bare)

	return &Repository{
		Path:    abs,
		GitDir:  gitDir,
		IsBare:  bare,
		repo:    repo,
		logger:  o.logger,
		objects: objects,
	}, nil
}

// findGitDir locates the object database for path.
func findGitDir(path string) (string, bool, error) {
	if isGitDir(path) {
		return path, true, nil
	}

	dotgit := filepath.Join(path, ".git")
	fi, err := os.Stat(dotgit)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s", ErrRepositoryNotFound, path)
	}

	if fi.IsDir() {
		if isGitDir(dotgit) {
			return dotgit, false, nil
		}
		return "", false, fmt.Errorf("%w: %s", ErrRepositoryNotFound, path)
	}

	// A .git file points to the real git directory, e.g. for submodules.
	bts, err := os.ReadFile(dotgit)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %w", ErrRepositoryNotFound, path, err)
	}
	line := strings.TrimSpace(string(bts))
	target, ok := strings.CutPrefix(line, "gitdir:")
	if !ok {
		return "", false, fmt.Errorf("%w: %s: malformed .git file", ErrRepositoryNotFound, path)
	}
	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(path, target)
	}
	if !isGitDir(target) {
		return "", false, fmt.Errorf("%w: %s", ErrRepositoryNotFound, target)
	}
	return filepath.Clean(target), false, nil
}

// Returns true if path is a directory containing an `objects` directory and a
// `HEAD` file.
func isGitDir(path string) bool {
	stat, err := os.Stat(filepath.Join(path, "objects"))
	if err != nil {
		return false
	}
	if !stat.IsDir() {
		return false
	}

	stat, err = os.Stat(filepath.Join(path, "HEAD"))
	if err != nil {
		return false
	}
	if stat.IsDir() {
		return false
	}

	return true
}

// Name returns the name of the repository.
func (r *Repository) Name() string {
	name := filepath.Base(r.Path)
	if r.IsBare {
		name = strings.TrimSuffix(name, ".git")
	}
	return name
}

// ReadCommit returns the commit with the given id.
func (r *Repository) ReadCommit(id Hash) (*Commit, error) {
	v, err := r.cached(id, func() (any, error) {
		return r.decodeCommit(id)
	})
	if err != nil {
		return nil, err
	}
	c, ok := v.(*Commit)
	if !ok {
		return nil, corrupt("commit", id, errors.New("not a commit"))
	}
	return c, nil
}

// ReadTree returns the tree with the given id.
func (r *Repository) ReadTree(id Hash) (*Tree, error) {
	v, err := r.cached(id, func() (any, error) {
		return r.decodeTree(id)
	})
	if err != nil {
		return nil, err
	}
	t, ok := v.(*Tree)
	if !ok {
		return nil, corrupt("tree", id, errors.New("not a tree"))
	}
	return t, nil
}

// ReadBlob returns the blob with the given id. Blobs are not cached.
func (r *Repository) ReadBlob(id Hash) (*Blob, error) {
	content, err := r.readObject(id, plumbing.BlobObject)
	if err != nil {
		return nil, corrupt("blob", id, err)
	}
	return &Blob{ID: id, Content: content}, nil
}

// ObjectSize returns the size of the object payload without reading it.
func (r *Repository) ObjectSize(id Hash) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, err := r.repo.Storer.EncodedObject(plumbing.AnyObject, id)
	if err != nil {
		return 0, corrupt("object", id, err)
	}
	return obj.Size(), nil
}

// TreeAt returns the tree at the slash separated path below root.
func (r *Repository) TreeAt(root Hash, path string) (*Tree, error) {
	t, err := r.ReadTree(root)
	if err != nil {
		return nil, err
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return t, nil
	}
	for _, name := range strings.Split(path, "/") {
		e, ok := t.Entry(name)
		if !ok || !e.IsTree() {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		t, err = r.ReadTree(e.Hash)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// cached returns the cached value for id or fills it with load. Concurrent
// misses for the same id share a single load.
func (r *Repository) cached(id Hash, load func() (any, error)) (any, error) {
	if v, ok := r.objects.Get(id); ok {
		return v, nil
	}
	v, err, _ := r.fill.Do(id.String(), func() (any, error) {
		if v, ok := r.objects.Get(id); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		r.objects.Add(id, v)
		return v, nil
	})
	return v, err
}

// readObject reads the payload of the object id and verifies its type and
// digest.
func (r *Repository) readObject(id Hash, want plumbing.ObjectType) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, err := r.repo.Storer.EncodedObject(plumbing.AnyObject, id)
	if err != nil {
		return nil, err
	}
	if obj.Type() != want {
		return nil, fmt.Errorf("expected %s, found %s", want, obj.Type())
	}

	rd, err := obj.Reader()
	if err != nil {
		return nil, err
	}
	defer rd.Close() // nolint: errcheck

	content, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	if int64(len(content)) != obj.Size() {
		return nil, fmt.Errorf("size mismatch: header says %d, read %d", obj.Size(), len(content))
	}
	if sum := plumbing.ComputeHash(want, content); sum != id {
		return nil, fmt.Errorf("digest mismatch: content hashes to %s", sum)
	}

	return content, nil
}

func memoryObject(t plumbing.ObjectType, content []byte) *plumbing.MemoryObject {
	mo := &plumbing.MemoryObject{}
	mo.SetType(t)
	mo.Write(content) // nolint: errcheck
	return mo
}

func (r *Repository) decodeCommit(id Hash) (*Commit, error) {
	content, err := r.readObject(id, plumbing.CommitObject)
	if err != nil {
		return nil, corrupt("commit", id, err)
	}
	c, err := object.DecodeCommit(r.repo.Storer, memoryObject(plumbing.CommitObject, content))
	if err != nil {
		return nil, corrupt("commit", id, err)
	}
	parents := make([]Hash, len(c.ParentHashes))
	copy(parents, c.ParentHashes)
	return &Commit{
		ID:      id,
		Parents: parents,
		Author: Signature{
			Name:  c.Author.Name,
			Email: c.Author.Email,
			When:  c.Author.When,
		},
		Committer: Signature{
			Name:  c.Committer.Name,
			Email: c.Committer.Email,
			When:  c.Committer.When,
		},
		Message: c.Message,
		Tree:    c.TreeHash,
	}, nil
}

func (r *Repository) decodeTree(id Hash) (*Tree, error) {
	content, err := r.readObject(id, plumbing.TreeObject)
	if err != nil {
		return nil, corrupt("tree", id, err)
	}
	t, err := object.DecodeTree(r.repo.Storer, memoryObject(plumbing.TreeObject, content))
	if err != nil {
		return nil, corrupt("tree", id, err)
	}
	return newTree(id, t.Entries)
}

// newTree validates and sorts decoded tree entries.
func newTree(id Hash, decoded []object.TreeEntry) (*Tree, error) {
	entries := make([]TreeEntry, 0, len(decoded))
	for _, e := range decoded {
		if !validName(e.Name) {
			return nil, corrupt("tree", id, fmt.Errorf("invalid entry name %q", e.Name))
		}
		kind, ok := kindOf(e.Mode)
		if !ok {
			return nil, corrupt("tree", id, fmt.Errorf("entry %q has unknown mode %o", e.Name, uint32(e.Mode)))
		}
		entries = append(entries, TreeEntry{
			Name: e.Name,
			Mode: e.Mode,
			Kind: kind,
			Hash: e.Hash,
		})
	}

	// Git orders directories as if their name ended in a slash. Plain name
	// order is what every consumer of Tree relies on.
	sortEntries(entries)
	for i := 1; i < len(entries); i++ {
		if entries[i].Name == entries[i-1].Name {
			return nil, corrupt("tree", id, fmt.Errorf("duplicate entry %q", entries[i].Name))
		}
	}

	return &Tree{ID: id, Entries: entries}, nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, "/\x00")
}

func corrupt(kind string, id Hash, err error) error {
	if errors.Is(err, ErrCorruptObject) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", ErrCorruptObject, kind, id, err)
}
