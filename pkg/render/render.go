// Package render turns commits, diffs and trees into HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/git"
	"github.com/charmbracelet/soft-pages/pkg/highlight"
	"github.com/charmbracelet/soft-pages/pkg/markdown"
	"github.com/charmbracelet/soft-pages/pkg/page"
	"github.com/charmbracelet/soft-pages/pkg/stats"
	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
)

//go:embed templates/*.tmpl
var templates embed.FS

//go:embed static/style.css
var styleCSS string

// Reader reads trees and blobs by id.
type Reader interface {
	ReadTree(id git.Hash) (*git.Tree, error)
	ReadBlob(id git.Hash) (*git.Blob, error)
	ObjectSize(id git.Hash) (int64, error)
}

// Renderer renders pages. It is safe for concurrent use.
type Renderer struct {
	repo    Reader
	meta    git.Metadata
	hl      *highlight.Highlighter
	md      *markdown.Renderer
	exclude []glob.Glob
	stats   *stats.Stats
	logger  *log.Logger
	pages   map[string]*template.Template
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHighlighter sets the highlighter used for file pages.
func WithHighlighter(h *highlight.Highlighter) Option {
	return func(r *Renderer) {
		r.hl = h
	}
}

// WithExclude sets globs matching repository paths that are listed but get
// no page.
func WithExclude(globs []glob.Glob) Option {
	return func(r *Renderer) {
		r.exclude = globs
	}
}

// WithStats sets the run statistics.
func WithStats(s *stats.Stats) Option {
	return func(r *Renderer) {
		r.stats = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05 -0700")
	},
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
}

// New returns a Renderer for the repository described by meta.
func New(repo Reader, meta git.Metadata, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		repo:  repo,
		meta:  meta,
		md:    markdown.New(),
		pages: map[string]*template.Template{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if r.hl == nil {
		r.hl = highlight.New(highlight.WithLogger(r.logger))
	}

	base, err := template.New("").Funcs(funcs).ParseFS(templates, "templates/base.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, name := range []string{"log", "commit", "tree", "file"} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templates, "templates/"+name+".tmpl"); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// view is the data every page template is executed with. Its URL methods
// return links relative to the page being rendered.
type view struct {
	Title   string
	Repo    git.Metadata
	Content any

	here string
}

func (r *Renderer) newView(kind page.Kind, p, title string) *view {
	return &view{
		Title: title,
		Repo:  r.meta,
		here:  page.Location(kind, p),
	}
}

func (v *view) link(kind page.Kind, p string) string {
	return page.Rel(v.here, page.Location(kind, p))
}

// CloneURL returns the repository URL as a link target. scp-like addresses
// and unknown schemes are not linked.
func (v *view) CloneURL() template.URL {
	u, err := url.Parse(v.Repo.URL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https", "git", "ssh":
		return template.URL(u.String()) // nolint: gosec
	}
	return ""
}

// StyleURL returns the link to the stylesheet.
func (v *view) StyleURL() string { return v.link(page.Asset, StylesheetPath) }

// LogURL returns the link to the commit log.
func (v *view) LogURL() string { return v.link(page.Log, "") }

// CommitURL returns the link to a commit page.
func (v *view) CommitURL(id git.Hash) string { return v.link(page.Commit, id.String()) }

// PatchURL returns the link to a commit patch.
func (v *view) PatchURL(id git.Hash) string { return v.link(page.Patch, id.String()) }

// TreeURL returns the link to a directory listing.
func (v *view) TreeURL(p string) string { return v.link(page.Tree, p) }

// FileURL returns the link to a file page.
func (v *view) FileURL(p string) string { return v.link(page.File, p) }

// RawURL returns the link to the raw content of a file.
func (v *view) RawURL(p string) string { return v.link(page.Raw, p) }

func (r *Renderer) execute(name string, v *view) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.pages[name].ExecuteTemplate(&buf, "base", v); err != nil {
		return nil, fmt.Errorf("render %s page %s: %w", name, v.here, err)
	}
	return buf.Bytes(), nil
}

// StylesheetPath is the logical path of the stylesheet.
const StylesheetPath = "style.css"

// Stylesheet returns the site stylesheet, including the highlighting style.
func (r *Renderer) Stylesheet() (*page.Page, error) {
	css, err := r.hl.CSS()
	if err != nil {
		return nil, err
	}
	return &page.Page{
		Kind:  page.Asset,
		Path:  StylesheetPath,
		Title: StylesheetPath,
		Body:  []byte(styleCSS + "\n" + css),
	}, nil
}

type crumb struct {
	Name string
	URL  string
}

// crumbs returns the breadcrumbs of a repository path, starting with the
// repository root. The last crumb is not linked.
func (r *Renderer) crumbs(v *view, p string) []crumb {
	name := r.meta.Name
	if name == "" {
		name = "/"
	}
	out := []crumb{{Name: name}}
	if p == "" {
		return out
	}
	out[0].URL = v.TreeURL("")
	parts := strings.Split(p, "/")
	for i, part := range parts {
		c := crumb{Name: part}
		if i < len(parts)-1 {
			c.URL = v.TreeURL(path.Join(parts[:i+1]...))
		}
		out = append(out, c)
	}
	return out
}

func (r *Renderer) excluded(p string) bool {
	for _, g := range r.exclude {
		if g.Match(p) {
			return true
		}
	}
	return false
}
