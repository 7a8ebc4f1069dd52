package git

import (
	"bufio"
	"bytes"
	"io"
	"sort"

	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// EntryKind is the kind of object a tree entry points to.
type EntryKind int

const (
	// KindFile is a regular or executable file.
	KindFile EntryKind = iota
	// KindTree is a subdirectory.
	KindTree
	// KindLink is a symbolic link. Its blob holds the link target.
	KindLink
	// KindSubmodule is a commit in another repository.
	KindSubmodule
)

// String implements fmt.Stringer.
func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindTree:
		return "tree"
	case KindLink:
		return "link"
	case KindSubmodule:
		return "submodule"
	}
	return "unknown"
}

func kindOf(m filemode.FileMode) (EntryKind, bool) {
	switch m {
	case filemode.Dir:
		return KindTree, true
	case filemode.Regular, filemode.Executable, filemode.Deprecated:
		return KindFile, true
	case filemode.Symlink:
		return KindLink, true
	case filemode.Submodule:
		return KindSubmodule, true
	}
	return 0, false
}

// TreeEntry is a single named entry of a tree.
type TreeEntry struct {
	Name string
	Mode filemode.FileMode
	Kind EntryKind
	Hash Hash
}

// IsTree returns true if the entry is a subdirectory.
func (e *TreeEntry) IsTree() bool { return e.Kind == KindTree }

// IsExecutable returns true if the entry is an executable file.
func (e *TreeEntry) IsExecutable() bool { return e.Mode == filemode.Executable }

// Tree is a decoded tree object. Entries are sorted by name.
type Tree struct {
	ID      Hash
	Entries []TreeEntry
}

// Entry returns the entry with the given name.
func (t *Tree) Entry(name string) (*TreeEntry, bool) {
	i := sort.Search(len(t.Entries), func(i int) bool {
		return t.Entries[i].Name >= name
	})
	if i < len(t.Entries) && t.Entries[i].Name == name {
		return &t.Entries[i], true
	}
	return nil, false
}

// Blob is raw file content.
type Blob struct {
	ID      Hash
	Content []byte
}

// Size returns the size of the blob in bytes.
func (b *Blob) Size() int64 {
	return int64(len(b.Content))
}

// IsBinary returns true if the blob looks like binary data.
func (b *Blob) IsBinary() bool {
	return IsBinaryContent(b.Content)
}

// SniffLen is the number of leading bytes inspected for binary detection.
const SniffLen = 8 << 10

// IsBinary detects if data is a binary value based on:
// http://git.kernel.org/cgit/git/git.git/tree/xdiff-interface.c?id=HEAD#n198
func IsBinary(r io.Reader) (bool, error) {
	reader := bufio.NewReader(r)
	c := 0
	for c < SniffLen {
		b, err := reader.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, err
		}

		if b == byte(0) {
			return true, nil
		}

		c++
	}

	return false, nil
}

// IsBinaryContent is IsBinary over an in-memory buffer.
func IsBinaryContent(b []byte) bool {
	if len(b) > SniffLen {
		b = b[:SniffLen]
	}
	return bytes.IndexByte(b, 0) >= 0
}

func sortEntries(es []TreeEntry) {
	sort.Slice(es, func(i, j int) bool {
		return es[i].Name < es[j].Name
	})
}
