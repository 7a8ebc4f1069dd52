package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Segment is part of a line in an inline diff. Changed marks the words that
// differ from the paired line.
type Segment struct {
	Text    string
	Changed bool
}

// InlineDiff computes a word level diff between a deleted line and the line
// added in its place. It returns the segments of each side.
func InlineDiff(del, add string) (old, new []Segment) {
	dmp := diffmatchpatch.New()
	dmp.DiffEditCost = 100
	// No deadline, so that output does not depend on machine speed.
	dmp.DiffTimeout = 0

	diffs := dmp.DiffMain(del, add, true)
	diffs = dmp.DiffCleanupEfficiency(diffs)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			old = appendSegment(old, d.Text, false)
			new = appendSegment(new, d.Text, false)
		case diffmatchpatch.DiffDelete:
			old = appendSegment(old, d.Text, true)
		case diffmatchpatch.DiffInsert:
			new = appendSegment(new, d.Text, true)
		}
	}
	return old, new
}

func appendSegment(segs []Segment, text string, changed bool) []Segment {
	if text == "" {
		return segs
	}
	if n := len(segs); n > 0 && segs[n-1].Changed == changed {
		segs[n-1].Text += text
		return segs
	}
	return append(segs, Segment{Text: text, Changed: changed})
}

// Inline returns the inline segments of every line in the hunk. A run of
// deleted lines directly followed by a run of added lines of the same length
// is paired line by line; other lines have nil segments.
func (h Hunk) Inline() [][]Segment {
	segs := make([][]Segment, len(h.Lines))
	for i := 0; i < len(h.Lines); {
		if h.Lines[i].Op != OpDelete {
			i++
			continue
		}
		d := i
		for i < len(h.Lines) && h.Lines[i].Op == OpDelete {
			i++
		}
		a := i
		for i < len(h.Lines) && h.Lines[i].Op == OpAdd {
			i++
		}
		n := a - d
		if i-a != n {
			continue
		}
		for j := 0; j < n; j++ {
			segs[d+j], segs[a+j] = InlineDiff(h.Lines[d+j].Text, h.Lines[a+j].Text)
		}
	}
	return segs
}
