package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	// HEAD represents the name of the HEAD reference.
	HEAD = "HEAD"
	// RefsHeads represents the prefix for branch references.
	RefsHeads = "refs/heads/"
	// RefsTags represents the prefix for tag references.
	RefsTags = "refs/tags/"
)

// maxPeel bounds the length of a tag chain.
const maxPeel = 16

// ResolveHead returns the id of the commit HEAD points to.
func (r *Repository) ResolveHead() (Hash, error) {
	return r.Resolve(HEAD)
}

// Resolve returns the id of the commit the named reference points to. The
// name may be HEAD, a full reference name, a short branch or tag name, or a
// full commit id. Annotated tags are peeled.
func (r *Repository) Resolve(name string) (Hash, error) {
	if name == "" {
		name = HEAD
	}

	if plumbing.IsHash(name) {
		h, err := r.peel(NewHash(name))
		if err != nil {
			return ZeroHash, fmt.Errorf("%w: resolve %s: %w", ErrCorruptRepository, name, err)
		}
		return h, nil
	}

	ref, err := r.reference(name)
	if err != nil {
		return ZeroHash, fmt.Errorf("%w: resolve %s: %w", ErrCorruptRepository, name, err)
	}

	h, err := r.peel(ref.Hash())
	if err != nil {
		return ZeroHash, fmt.Errorf("%w: resolve %s: %w", ErrCorruptRepository, name, err)
	}

	r.logger.Debug("resolved reference", "name", name, "ref", ref.Name(), "commit", h)
	return h, nil
}

func (r *Repository) reference(name string) (*plumbing.Reference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidates := []string{name}
	if name != HEAD && !strings.HasPrefix(name, "refs/") {
		candidates = append(candidates, RefsHeads+name, RefsTags+name)
	}

	var lastErr error
	for _, c := range candidates {
		ref, err := r.repo.Reference(plumbing.ReferenceName(c), true)
		if err == nil {
			return ref, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (r *Repository) peel(h Hash) (Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < maxPeel; i++ {
		obj, err := r.repo.Storer.EncodedObject(plumbing.AnyObject, h)
		if err != nil {
			return ZeroHash, fmt.Errorf("%s: %w", h, err)
		}
		switch obj.Type() {
		case plumbing.CommitObject:
			return h, nil
		case plumbing.TagObject:
			tag, err := object.DecodeTag(r.repo.Storer, obj)
			if err != nil {
				return ZeroHash, fmt.Errorf("%s: %w", h, err)
			}
			h = tag.Target
		default:
			return ZeroHash, fmt.Errorf("%s is a %s, not a commit", h, obj.Type())
		}
	}
	return ZeroHash, errors.New("tag chain too long")
}

// Metadata is optional information about the repository owner.
type Metadata struct {
	Name        string
	Description string
	URL         string
}

// ReadMetadata returns the repository name, description and clone URL.
// Missing control files yield empty strings.
func (r *Repository) ReadMetadata() Metadata {
	r.metaOnce.Do(func() {
		r.meta = Metadata{
			Name:        r.Name(),
			Description: r.readControlFile("description"),
			URL:         r.readControlFile("url"),
		}
		if r.meta.URL == "" {
			r.meta.URL = r.originURL()
		}
	})
	return r.meta
}

// readControlFile reads a text file from the git directory. Whitespace is
// trimmed, and errors yield an empty string.
func (r *Repository) readControlFile(name string) string {
	bts, err := os.ReadFile(filepath.Join(r.GitDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(bts))
}

func (r *Repository) originURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	remote, err := r.repo.Remote("origin")
	if err != nil {
		return ""
	}
	if urls := remote.Config().URLs; len(urls) > 0 {
		return urls[0]
	}
	return ""
}
