package render

import (
	"context"
	"html/template"
	"path"

	"github.com/charmbracelet/soft-pages/pkg/diff"
	"github.com/charmbracelet/soft-pages/pkg/git"
	"github.com/charmbracelet/soft-pages/pkg/markdown"
	"github.com/charmbracelet/soft-pages/pkg/page"
	"github.com/dustin/go-humanize"
)

type treeRow struct {
	Name   string
	Kind   string
	Mode   string
	Size   string
	URL    string
	Target string
}

type treeContent struct {
	Path   string
	Crumbs []crumb
	Rows   []treeRow
	Readme template.HTML
}

type fileContent struct {
	Path     string
	Crumbs   []crumb
	Size     string
	Language string
	Link     bool
	RawURL   string
	HTML     template.HTML
}

// Tree renders the tree at prefix and everything below it, passing every
// page to yield as soon as it is rendered: the listing of the directory
// itself, then the pages of its entries in entry order. An error returned by
// yield stops the walk.
func (r *Renderer) Tree(ctx context.Context, t *git.Tree, prefix string, yield func(*page.Page) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	listing, err := r.treePage(t, prefix)
	if err != nil {
		return err
	}
	if err := yield(listing); err != nil {
		return err
	}

	for _, e := range t.Entries {
		full := path.Join(prefix, e.Name)
		if r.excluded(full) {
			r.logger.Debug("excluded", "path", full)
			continue
		}

		switch e.Kind {
		case git.KindTree:
			sub, err := r.repo.ReadTree(e.Hash)
			if err != nil {
				return err
			}
			if err := r.Tree(ctx, sub, full, yield); err != nil {
				return err
			}
		case git.KindFile, git.KindLink:
			pages, err := r.filePages(e, full)
			if err != nil {
				return err
			}
			for _, p := range pages {
				if err := yield(p); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (r *Renderer) treePage(t *git.Tree, prefix string) (*page.Page, error) {
	title := prefix
	if title == "" {
		title = "Files"
	}
	v := r.newView(page.Tree, prefix, title)
	c := &treeContent{
		Path:   prefix,
		Crumbs: r.crumbs(v, prefix),
		Rows:   make([]treeRow, 0, len(t.Entries)),
	}

	names := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		full := path.Join(prefix, e.Name)
		row := treeRow{
			Name: e.Name,
			Kind: e.Kind.String(),
			Mode: diff.Mode(e.Mode),
		}
		excluded := r.excluded(full)
		switch e.Kind {
		case git.KindTree:
			if !excluded {
				row.URL = v.TreeURL(full)
			}
		case git.KindFile, git.KindLink:
			size, err := r.repo.ObjectSize(e.Hash)
			if err != nil {
				return nil, err
			}
			row.Size = humanize.IBytes(uint64(size))
			if !excluded {
				row.URL = v.FileURL(full)
			}
			names = append(names, e.Name)
		case git.KindSubmodule:
			row.Target = e.Hash.String()
		}
		c.Rows = append(c.Rows, row)
	}

	if name, ok := markdown.Readme(names); ok {
		readme, err := r.readme(t, name)
		if err != nil {
			return nil, err
		}
		c.Readme = readme
	}

	v.Content = c
	body, err := r.execute("tree", v)
	if err != nil {
		return nil, err
	}
	return &page.Page{Kind: page.Tree, Path: prefix, Title: title, Body: body}, nil
}

func (r *Renderer) readme(t *git.Tree, name string) (template.HTML, error) {
	e, _ := t.Entry(name)
	if e.Kind != git.KindFile {
		return "", nil
	}
	b, err := r.repo.ReadBlob(e.Hash)
	if err != nil {
		return "", err
	}
	if b.IsBinary() {
		return "", nil
	}
	if markdown.IsMarkdown(name) {
		out, err := r.md.Render(b.Content)
		if err == nil {
			return out, nil
		}
		r.logger.Debug("rendering readme failed, using plain text", "name", name, "err", err)
		r.stats.HighlightFallback()
	}
	return r.hl.Highlight(b.Content, "").HTML, nil
}

// filePages renders the page of a file or link, and for binary files the raw
// content page.
func (r *Renderer) filePages(e git.TreeEntry, full string) ([]*page.Page, error) {
	b, err := r.repo.ReadBlob(e.Hash)
	if err != nil {
		return nil, err
	}

	v := r.newView(page.File, full, full)
	c := &fileContent{
		Path:   full,
		Crumbs: r.crumbs(v, full),
		Size:   humanize.IBytes(uint64(b.Size())),
		Link:   e.Kind == git.KindLink,
	}

	name := full
	if c.Link {
		// A link's blob is its target path, not code.
		name = ""
	}
	res := r.hl.Highlight(b.Content, name)
	c.HTML = res.HTML
	c.Language = res.Language
	if res.Fallback {
		r.stats.HighlightFallback()
	}

	pages := make([]*page.Page, 0, 2)
	if res.Binary {
		r.stats.BinaryFile()
		c.RawURL = v.RawURL(full)
		pages = append(pages, &page.Page{Kind: page.Raw, Path: full, Title: full, Body: b.Content})
	}

	v.Content = c
	body, err := r.execute("file", v)
	if err != nil {
		return nil, err
	}
	return append([]*page.Page{{Kind: page.File, Path: full, Title: full, Body: body}}, pages...), nil
}
