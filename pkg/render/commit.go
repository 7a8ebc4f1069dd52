package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/soft-pages/pkg/diff"
	"github.com/charmbracelet/soft-pages/pkg/git"
	"github.com/charmbracelet/soft-pages/pkg/page"
)

// LogEntry is a row of the commit log.
type LogEntry struct {
	Commit *git.Commit
	Stats  diff.Stats
}

type logContent struct {
	Entries []LogEntry
	Total   int
}

// Log renders the commit log. Entries are listed in the given order; total is
// the number of commits in the history, which may exceed len(entries).
func (r *Renderer) Log(entries []LogEntry, total int) (*page.Page, error) {
	v := r.newView(page.Log, "", "Commits")
	v.Content = &logContent{Entries: entries, Total: total}
	body, err := r.execute("log", v)
	if err != nil {
		return nil, err
	}
	return &page.Page{Kind: page.Log, Title: "Commits", Body: body}, nil
}

type lineView struct {
	Class     string
	Old, New  string
	Prefix    string
	Text      string
	Segments  []diff.Segment
	NoNewline bool
}

type hunkView struct {
	Header string
	Lines  []lineView
}

type fileView struct {
	Path       string
	Status     diff.Status
	Binary     bool
	ModeChange bool
	OldMode    string
	NewMode    string
	Additions  int
	Deletions  int
	Hunks      []hunkView
}

type commitContent struct {
	Commit *git.Commit
	Stats  diff.Stats
	Files  []fileView
}

// Commit renders the detail page of c, showing d, its changes against its
// first parent.
func (r *Renderer) Commit(c *git.Commit, d *diff.Diff) (*page.Page, error) {
	title := c.Summary()
	v := r.newView(page.Commit, c.ID.String(), title)
	content := &commitContent{
		Commit: c,
		Stats:  d.Stats(),
		Files:  make([]fileView, 0, len(d.Files)),
	}
	for _, fc := range d.Files {
		content.Files = append(content.Files, newFileView(fc))
	}
	v.Content = content

	body, err := r.execute("commit", v)
	if err != nil {
		return nil, err
	}
	return &page.Page{Kind: page.Commit, Path: c.ID.String(), Title: title, Body: body}, nil
}

// Patch renders c and d as a patch that git am accepts.
func (r *Renderer) Patch(c *git.Commit, d *diff.Diff) *page.Page {
	return &page.Page{
		Kind:  page.Patch,
		Path:  c.ID.String(),
		Title: c.Summary(),
		Body:  []byte(diff.FormatPatch(c, d)),
	}
}

func newFileView(fc *diff.FileChange) fileView {
	fv := fileView{
		Path:      fc.Path,
		Status:    fc.Status,
		Binary:    fc.Binary,
		Additions: fc.Additions(),
		Deletions: fc.Deletions(),
		Hunks:     make([]hunkView, 0, len(fc.Hunks)),
	}
	if fc.Status == diff.Modified && fc.OldMode != fc.NewMode {
		fv.ModeChange = true
		fv.OldMode = diff.Mode(fc.OldMode)
		fv.NewMode = diff.Mode(fc.NewMode)
	}

	for _, h := range fc.Hunks {
		hv := hunkView{Header: h.Header(), Lines: make([]lineView, 0, len(h.Lines))}
		segs := h.Inline()
		oldNo, newNo := h.OldStart, h.NewStart
		if h.OldLines == 0 {
			oldNo++
		}
		if h.NewLines == 0 {
			newNo++
		}
		for i, l := range h.Lines {
			lv := lineView{
				Prefix:    l.Op.Prefix(),
				Text:      strings.TrimSuffix(l.Text, "\n"),
				NoNewline: !strings.HasSuffix(l.Text, "\n"),
			}
			if segs[i] != nil {
				lv.Segments = trimSegments(segs[i])
			}
			switch l.Op {
			case diff.OpContext:
				lv.Class = "ctx"
				lv.Old, lv.New = strconv.Itoa(oldNo), strconv.Itoa(newNo)
				oldNo++
				newNo++
			case diff.OpDelete:
				lv.Class = "del"
				lv.Old = strconv.Itoa(oldNo)
				oldNo++
			case diff.OpAdd:
				lv.Class = "add"
				lv.New = strconv.Itoa(newNo)
				newNo++
			}
			hv.Lines = append(hv.Lines, lv)
		}
		fv.Hunks = append(fv.Hunks, hv)
	}
	return fv
}

// trimSegments drops the line terminator from the last segment.
func trimSegments(segs []diff.Segment) []diff.Segment {
	out := make([]diff.Segment, 0, len(segs))
	for i, s := range segs {
		if i == len(segs)-1 {
			s.Text = strings.TrimSuffix(s.Text, "\n")
			if s.Text == "" {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
