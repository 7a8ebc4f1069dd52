// Package page defines the rendered pages of a site and where they live.
package page

import (
	"net/url"
	"path"
	"strings"
)

// Kind is the kind of a page.
type Kind int

const (
	// Log is the commit history page.
	Log Kind = iota
	// Commit is the detail page of a single commit.
	Commit
	// Patch is the email formatted patch of a single commit.
	Patch
	// Tree is the listing of a directory.
	Tree
	// File is the highlighted content of a file.
	File
	// Raw is the unmodified content of a file.
	Raw
	// Asset is a static file such as the stylesheet.
	Asset
)

var kindNames = [...]string{
	Log:    "log",
	Commit: "commit",
	Patch:  "patch",
	Tree:   "tree",
	File:   "file",
	Raw:    "raw",
	Asset:  "asset",
}

// Kinds lists every page kind.
var Kinds = []Kind{Log, Commit, Patch, Tree, File, Raw, Asset}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Page is a rendering unit. Path is the logical path of the page: a commit
// id for Commit and Patch pages, a slash separated repository path for Tree,
// File and Raw pages, and a file name for Asset pages.
type Page struct {
	Kind  Kind
	Path  string
	Title string
	Body  []byte
}

// Location returns the slash separated output path of a page relative to the
// site root. Distinct pages always get distinct locations.
func Location(kind Kind, p string) string {
	p = strings.Trim(p, "/")
	switch kind {
	case Log:
		return "log.html"
	case Commit:
		return "commit/" + p + ".html"
	case Patch:
		return "commit/" + p + ".patch"
	case Tree:
		if p == "" {
			return "tree/index.html"
		}
		return "tree/" + escapeDirs(p) + "/index.html"
	case File:
		dir, name := path.Split(p)
		if dir != "" {
			dir = escapeDirs(strings.TrimSuffix(dir, "/")) + "/"
		}
		return "blob/" + dir + name + ".html"
	case Raw:
		return "raw/" + p
	default:
		return p
	}
}

// escapeDirs escapes the directory segments of p so that none of them ends
// in ".html". Generated page names all end in ".html", so a directory can
// never share a location with a page.
func escapeDirs(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = escapeDir(s)
	}
	return strings.Join(segs, "/")
}

func escapeDir(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	if strings.HasSuffix(s, ".html") {
		s = strings.TrimSuffix(s, ".html") + "%2Ehtml"
	}
	return s
}

// KindOf returns the kind of the page at loc, an output path as returned by
// Location.
func KindOf(loc string) (Kind, bool) {
	switch {
	case loc == "log.html":
		return Log, true
	case strings.HasPrefix(loc, "commit/") && strings.HasSuffix(loc, ".patch"):
		return Patch, true
	case strings.HasPrefix(loc, "commit/") && strings.HasSuffix(loc, ".html"):
		return Commit, true
	case strings.HasPrefix(loc, "tree/") && path.Base(loc) == "index.html":
		return Tree, true
	case strings.HasPrefix(loc, "blob/") && strings.HasSuffix(loc, ".html"):
		return File, true
	case strings.HasPrefix(loc, "raw/"):
		return Raw, true
	case loc != "" && !strings.Contains(loc, "/"):
		return Asset, true
	}
	return 0, false
}

// Location returns the output path of the page.
func (p *Page) Location() string {
	return Location(p.Kind, p.Path)
}

// Rel returns a relative, URL escaped link from the page at location from
// to the location to. Both are output paths as returned by Location.
func Rel(from, to string) string {
	fromDir := strings.Split(path.Dir(from), "/")
	if fromDir[0] == "." {
		fromDir = nil
	}
	target := strings.Split(to, "/")

	// Drop the common directories.
	var n int
	for n < len(fromDir) && n < len(target)-1 && fromDir[n] == target[n] {
		n++
	}

	parts := make([]string, 0, len(fromDir)-n+len(target)-n)
	for range fromDir[n:] {
		parts = append(parts, "..")
	}
	for _, s := range target[n:] {
		parts = append(parts, url.PathEscape(s))
	}

	rel := strings.Join(parts, "/")
	// A colon in the first segment would be read as a URL scheme.
	if first, _, _ := strings.Cut(rel, "/"); strings.Contains(first, ":") {
		rel = "./" + rel
	}
	return rel
}
