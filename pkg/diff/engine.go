package diff

import (
	"context"
	"fmt"
	"path"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/git"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// DefaultMaxEdits bounds the edit distance computed for a single file.
const DefaultMaxEdits = 2000

// Reader reads trees and blobs by id.
type Reader interface {
	ReadTree(id git.Hash) (*git.Tree, error)
	ReadBlob(id git.Hash) (*git.Blob, error)
}

// Engine computes diffs between trees.
type Engine struct {
	repo     Reader
	context  int
	maxEdits int
	logger   *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithContextLines sets the number of context lines around each change.
func WithContextLines(n int) Option {
	return func(e *Engine) {
		e.context = n
	}
}

// WithMaxEdits sets the edit distance above which a file is reported as a
// replacement of its differing lines.
func WithMaxEdits(n int) Option {
	return func(e *Engine) {
		e.maxEdits = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New returns an Engine reading objects from repo.
func New(repo Reader, opts ...Option) *Engine {
	e := &Engine{
		repo:     repo,
		context:  DefaultContextLines,
		maxEdits: DefaultMaxEdits,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e
}

// Diff returns the changes between the trees from and to. A zero from means
// there is no old tree and every file in to is added.
func (e *Engine) Diff(ctx context.Context, from, to git.Hash) (*Diff, error) {
	var oldEntries, newEntries []git.TreeEntry
	if !from.IsZero() {
		t, err := e.repo.ReadTree(from)
		if err != nil {
			return nil, err
		}
		oldEntries = t.Entries
	}
	if !to.IsZero() {
		t, err := e.repo.ReadTree(to)
		if err != nil {
			return nil, err
		}
		newEntries = t.Entries
	}

	d := &Diff{From: from, To: to}
	if err := e.diffEntries(ctx, "", oldEntries, newEntries, &d.Files); err != nil {
		return nil, err
	}
	return d, nil
}

// diffEntries merge-joins two name sorted entry lists.
func (e *Engine) diffEntries(ctx context.Context, prefix string, old, new []git.TreeEntry, out *[]*FileChange) error {
	i, j := 0, 0
	for i < len(old) || j < len(new) {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch {
		case j == len(new) || (i < len(old) && old[i].Name < new[j].Name):
			err = e.one(ctx, prefix, old[i], Deleted, out)
			i++
		case i == len(old) || new[j].Name < old[i].Name:
			err = e.one(ctx, prefix, new[j], Added, out)
			j++
		default:
			err = e.both(ctx, prefix, old[i], new[j], out)
			i++
			j++
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// one records an entry present on a single side. Subtrees expand to every
// file below them.
func (e *Engine) one(ctx context.Context, prefix string, entry git.TreeEntry, status Status, out *[]*FileChange) error {
	p := path.Join(prefix, entry.Name)

	if entry.Kind == git.KindTree {
		t, err := e.repo.ReadTree(entry.Hash)
		if err != nil {
			return err
		}
		if status == Added {
			return e.diffEntries(ctx, p, nil, t.Entries, out)
		}
		return e.diffEntries(ctx, p, t.Entries, nil, out)
	}

	fc := &FileChange{
		Path:   p,
		Status: status,
		Kind:   entry.Kind,
	}
	var oldContent, newContent []byte
	switch status {
	case Added:
		fc.NewHash, fc.NewMode = entry.Hash, entry.Mode
	case Deleted:
		fc.OldHash, fc.OldMode = entry.Hash, entry.Mode
	}

	if entry.Kind == git.KindSubmodule {
		return e.finish(fc, nil, nil, out)
	}

	b, err := e.repo.ReadBlob(entry.Hash)
	if err != nil {
		return err
	}
	if status == Added {
		newContent = b.Content
	} else {
		oldContent = b.Content
	}
	return e.finish(fc, oldContent, newContent, out)
}

// both compares two entries with the same name.
func (e *Engine) both(ctx context.Context, prefix string, oe, ne git.TreeEntry, out *[]*FileChange) error {
	if oe.Kind != ne.Kind {
		if err := e.one(ctx, prefix, oe, Deleted, out); err != nil {
			return err
		}
		return e.one(ctx, prefix, ne, Added, out)
	}
	if oe.Hash == ne.Hash {
		return nil
	}

	p := path.Join(prefix, oe.Name)
	if oe.Kind == git.KindTree {
		ot, err := e.repo.ReadTree(oe.Hash)
		if err != nil {
			return err
		}
		nt, err := e.repo.ReadTree(ne.Hash)
		if err != nil {
			return err
		}
		return e.diffEntries(ctx, p, ot.Entries, nt.Entries, out)
	}

	fc := &FileChange{
		Path:    p,
		Status:  Modified,
		Kind:    oe.Kind,
		OldHash: oe.Hash,
		NewHash: ne.Hash,
		OldMode: oe.Mode,
		NewMode: ne.Mode,
	}
	if oe.Kind == git.KindSubmodule {
		return e.finish(fc, nil, nil, out)
	}

	ob, err := e.repo.ReadBlob(oe.Hash)
	if err != nil {
		return err
	}
	nb, err := e.repo.ReadBlob(ne.Hash)
	if err != nil {
		return err
	}
	return e.finish(fc, ob.Content, nb.Content, out)
}

// finish computes the hunks of fc and appends it to out.
func (e *Engine) finish(fc *FileChange, oldContent, newContent []byte, out *[]*FileChange) error {
	switch {
	case fc.Kind == git.KindSubmodule:
		script, _ := lineScript(submoduleLines(fc.OldHash), submoduleLines(fc.NewHash), 0)
		fc.Hunks = buildHunks(script, e.context)
	case git.IsBinaryContent(oldContent) || git.IsBinaryContent(newContent):
		fc.Binary = true
	default:
		script, ok := lineScript(splitLines(string(oldContent)), splitLines(string(newContent)), e.maxEdits)
		if !ok {
			e.logger.Debug("edit distance too large, replacing file", "path", fc.Path, "max-edits", e.maxEdits)
		}
		fc.Hunks = buildHunks(script, e.context)
	}
	*out = append(*out, fc)
	return nil
}

// submoduleLines is how git shows a gitlink in a diff.
func submoduleLines(id git.Hash) []string {
	if id.IsZero() {
		return nil
	}
	return []string{fmt.Sprintf("Subproject commit %s\n", id)}
}

// Mode returns the octal mode string git prints for m.
func Mode(m filemode.FileMode) string {
	return fmt.Sprintf("%06o", uint32(m))
}
