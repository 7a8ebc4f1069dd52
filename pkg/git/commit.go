package git

import (
	"bytes"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// Hash is a content-derived object identifier.
type Hash = plumbing.Hash

// ZeroHash is the zero hash. It stands for "no object", e.g. the parent tree
// of a root commit.
var ZeroHash = plumbing.ZeroHash

// NewHash parses a hex object id.
func NewHash(s string) Hash {
	return plumbing.NewHash(s)
}

// Signature identifies who created a commit and when.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit is a decoded commit object.
type Commit struct {
	ID        Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Message   string
	Tree      Hash
}

// Summary returns the first line of the commit message.
func (c *Commit) Summary() string {
	s, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return strings.TrimSpace(s)
}

// Body returns the commit message without its summary line.
func (c *Commit) Body() string {
	_, b, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return strings.TrimSpace(b)
}

// IsRoot returns true if the commit has no parents.
func (c *Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// IsMerge returns true if the commit has more than one parent.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// Commits is a list of commits.
type Commits []*Commit

// Len implements sort.Interface.
func (cl Commits) Len() int { return len(cl) }

// Swap implements sort.Interface.
func (cl Commits) Swap(i, j int) { cl[i], cl[j] = cl[j], cl[i] }

// Less implements sort.Interface. Newer commits sort first, ties are broken
// by ascending identifier.
func (cl Commits) Less(i, j int) bool {
	return newer(cl[i], cl[j])
}

func newer(a, b *Commit) bool {
	ta, tb := a.Committer.When, b.Committer.When
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func older(a, b *Commit) bool {
	ta, tb := a.Committer.When, b.Committer.When
	if !ta.Equal(tb) {
		return ta.Before(tb)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}
