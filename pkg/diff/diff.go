package diff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/soft-pages/pkg/git"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// ErrPatchMismatch is returned by Apply when a hunk does not match the content
// it is applied to.
var ErrPatchMismatch = errors.New("patch does not apply")

// Status is the kind of change made to a path.
type Status int

const (
	// Added means the path exists only in the new tree.
	Added Status = iota
	// Modified means the path exists in both trees with different content.
	Modified
	// Deleted means the path exists only in the old tree.
	Deleted
)

func (s Status) String() string {
	switch s {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Op is the operation of a single diff line.
type Op int

const (
	// OpContext is a line present in both versions.
	OpContext Op = iota
	// OpAdd is a line present only in the new version.
	OpAdd
	// OpDelete is a line present only in the old version.
	OpDelete
)

// Prefix returns the character git prints before a line with this operation.
func (o Op) Prefix() string {
	switch o {
	case OpAdd:
		return "+"
	case OpDelete:
		return "-"
	default:
		return " "
	}
}

// Line is a single line of a hunk. Text keeps its line terminator, if any.
type Line struct {
	Op   Op
	Text string
}

// Hunk is a contiguous span of changes with surrounding context. Start
// positions are 1-based line numbers; when a side has no lines its start is
// the line before the hunk, as git prints it.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Header returns the hunk header line, e.g. "@@ -1,3 +1,4 @@".
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", hunkRange(h.OldStart, h.OldLines), hunkRange(h.NewStart, h.NewLines))
}

func hunkRange(start, lines int) string {
	if lines == 1 {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d,%d", start, lines)
}

// FileChange is the change made to a single path between two trees.
type FileChange struct {
	Path    string
	Status  Status
	Kind    git.EntryKind
	OldHash git.Hash
	NewHash git.Hash
	OldMode filemode.FileMode
	NewMode filemode.FileMode
	// Binary is set when either side is binary. Binary changes have no
	// hunks.
	Binary bool
	Hunks  []Hunk
}

// Additions returns the number of added lines.
func (f *FileChange) Additions() int {
	return f.count(OpAdd)
}

// Deletions returns the number of deleted lines.
func (f *FileChange) Deletions() int {
	return f.count(OpDelete)
}

func (f *FileChange) count(op Op) int {
	var n int
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			if l.Op == op {
				n++
			}
		}
	}
	return n
}

// Diff is the set of changes between two trees, ordered by path.
type Diff struct {
	// From is the old tree, ZeroHash for none.
	From  git.Hash
	To    git.Hash
	Files []*FileChange
}

// Stats is a summary of a diff.
type Stats struct {
	Files     int
	Additions int
	Deletions int
}

// Stats returns the number of changed files and lines.
func (d *Diff) Stats() Stats {
	s := Stats{Files: len(d.Files)}
	for _, f := range d.Files {
		s.Additions += f.Additions()
		s.Deletions += f.Deletions()
	}
	return s
}

// splitLines splits content into lines, keeping line terminators.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
