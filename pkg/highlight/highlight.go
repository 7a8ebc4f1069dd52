// Package highlight renders file content as syntax highlighted HTML.
package highlight

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/git"
)

const (
	// DefaultStyle is the chroma style used when none is configured.
	DefaultStyle = "github"
	// DefaultTabWidth is the number of spaces a tab expands to.
	DefaultTabWidth = 4
)

// Placeholder is rendered instead of the content of binary files.
const Placeholder template.HTML = `<p class="binary-placeholder">Binary file not shown.</p>`

// Result is the outcome of highlighting a file.
type Result struct {
	HTML template.HTML
	// Language is the lexer used, empty for plain text.
	Language string
	// Binary is set when the content was not rendered because it is binary.
	Binary bool
	// Fallback is set when highlighting failed and the content was rendered
	// as plain text instead.
	Fallback bool
}

// Highlighter renders file content. It is safe for concurrent use.
type Highlighter struct {
	style       *chroma.Style
	formatter   *html.Formatter
	lineNumbers bool
	tabWidth    int
	logger      *log.Logger
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithStyle sets the chroma style. Unknown styles fall back to chroma's
// default.
func WithStyle(name string) Option {
	return func(h *Highlighter) {
		h.style = styles.Get(name)
	}
}

// WithLineNumbers enables or disables line numbers.
func WithLineNumbers(enabled bool) Option {
	return func(h *Highlighter) {
		h.lineNumbers = enabled
	}
}

// WithTabWidth sets the tab width.
func WithTabWidth(n int) Option {
	return func(h *Highlighter) {
		if n > 0 {
			h.tabWidth = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Highlighter) {
		h.logger = l
	}
}

// New returns a new Highlighter.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{
		style:       styles.Get(DefaultStyle),
		lineNumbers: true,
		tabWidth:    DefaultTabWidth,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = log.Default()
	}
	h.formatter = html.New(
		html.WithClasses(true),
		html.WithLineNumbers(h.lineNumbers),
		html.WithLinkableLineNumbers(h.lineNumbers, "L"),
		html.TabWidth(h.tabWidth),
	)
	return h
}

// Highlight renders content as HTML, choosing a lexer from filename. It never
// fails: binary content yields the Placeholder, unknown languages and
// highlighting failures yield escaped plain text.
func (h *Highlighter) Highlight(content []byte, filename string) Result {
	if git.IsBinaryContent(content) {
		return Result{HTML: Placeholder, Binary: true}
	}

	text := string(content)
	if !utf8.ValidString(text) {
		h.logger.Debug("invalid utf-8, rendering as plain text", "file", filename)
		return Result{HTML: h.plain(strings.ToValidUTF8(text, "�")), Fallback: true}
	}

	lang := Language(filename)
	if lang == "" {
		return Result{HTML: h.plain(text)}
	}

	out, err := h.format(lang, text)
	if err != nil {
		h.logger.Debug("highlighting failed, rendering as plain text", "file", filename, "lang", lang, "err", err)
		return Result{HTML: h.plain(text), Language: lang, Fallback: true}
	}
	return Result{HTML: out, Language: lang}
}

func (h *Highlighter) format(lang, text string) (out template.HTML, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lexer %s panicked: %v", lang, r)
		}
	}()

	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", fmt.Errorf("no lexer named %q", lang)
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, it); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil // nolint: gosec
}

// plain renders escaped text in the same structure chroma uses.
func (h *Highlighter) plain(text string) template.HTML {
	text = strings.ReplaceAll(text, "\t", strings.Repeat(" ", h.tabWidth))
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var sb strings.Builder
	sb.WriteString(`<pre class="chroma plain"><code>`)
	for i, l := range lines {
		if h.lineNumbers {
			fmt.Fprintf(&sb, `<span class="line" id="L%[1]d"><span class="lnt"><a class="lnlinks" href="#L%[1]d">%[1]d</a></span><span class="cl">`, i+1)
		} else {
			sb.WriteString(`<span class="line"><span class="cl">`)
		}
		sb.WriteString(template.HTMLEscapeString(l))
		sb.WriteString(`</span></span>`)
	}
	sb.WriteString(`</code></pre>`)
	return template.HTML(sb.String()) // nolint: gosec
}

// CSS returns the stylesheet for the configured style.
func (h *Highlighter) CSS() (string, error) {
	var buf bytes.Buffer
	if err := h.formatter.WriteCSS(&buf, h.style); err != nil {
		return "", err
	}
	return buf.String(), nil
}
