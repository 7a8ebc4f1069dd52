// Package markdown renders README files to sanitized HTML.
package markdown

import (
	"bytes"
	"html/template"
	"path"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a Renderer for GitHub flavored markdown.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render renders source and strips anything unsafe from the result.
func (r *Renderer) Render(source []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return "", err
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil // nolint: gosec
}

// IsMarkdown returns true if the file name has a markdown extension.
func IsMarkdown(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown", ".mkd", ".mkdn":
		return true
	}
	return false
}

// Readme returns the name of the first readme among names, in order of
// preference.
func Readme(names []string) (string, bool) {
	for _, want := range []string{"readme.md", "readme.markdown", "readme"} {
		for _, n := range names {
			if strings.EqualFold(n, want) {
				return n, true
			}
		}
	}
	return "", false
}
