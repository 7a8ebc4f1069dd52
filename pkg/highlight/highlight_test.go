package highlight

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestLanguage(t *testing.T) {
	cases := map[string]string{
		"main.go":        "go",
		"src/lib.RS":     "rust",
		"Makefile":       "makefile",
		"a/b/Dockerfile": "docker",
		"README":         "",
		"notes.txt":      "",
		"x.unknownext":   "",
		".yml":           "yaml",
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(Language(name), want)
		})
	}
}

func TestHighlightGo(t *testing.T) {
	is := is.New(t)
	h := New()
	res := h.Highlight([]byte("package main\n\nfunc main() {}\n"), "main.go")
	is.Equal(res.Language, "go")
	is.True(!res.Binary)
	is.True(!res.Fallback)
	is.True(strings.Contains(string(res.HTML), `class="chroma"`))
	is.True(strings.Contains(string(res.HTML), `id="L3"`))

	// Same input, same output.
	again := h.Highlight([]byte("package main\n\nfunc main() {}\n"), "main.go")
	is.Equal(again.HTML, res.HTML)
}

func TestHighlightPlain(t *testing.T) {
	is := is.New(t)
	h := New()
	res := h.Highlight([]byte("<b>hello</b>\n\tworld\n"), "notes.txt")
	is.Equal(res.Language, "")
	is.True(!res.Fallback)
	out := string(res.HTML)
	is.True(strings.Contains(out, "&lt;b&gt;hello&lt;/b&gt;"))
	is.True(!strings.Contains(out, "<b>"))
	is.True(strings.Contains(out, `id="L2"`))
	is.True(strings.Contains(out, "    world"))
}

func TestHighlightBinary(t *testing.T) {
	is := is.New(t)
	h := New()
	content := append([]byte("PNG"), 0, 1, 2)
	res := h.Highlight(content, "main.go")
	is.True(res.Binary)
	is.Equal(res.HTML, Placeholder)
	is.True(strings.Contains(string(res.HTML), `class="binary-placeholder"`))

	// A NUL past the sniffing window is not binary.
	late := append(bytes.Repeat([]byte("a"), 8<<10), 0)
	res = h.Highlight(late, "a.txt")
	is.True(!res.Binary)
}

func TestHighlightInvalidUTF8(t *testing.T) {
	is := is.New(t)
	res := New().Highlight([]byte("caf\xe9\n"), "a.go")
	is.True(res.Fallback)
	is.True(strings.Contains(string(res.HTML), "caf�"))
}

func TestCSS(t *testing.T) {
	is := is.New(t)
	css, err := New(WithStyle("monokai")).CSS()
	is.NoErr(err)
	is.True(strings.Contains(css, ".chroma"))
}

func TestNoLineNumbers(t *testing.T) {
	is := is.New(t)
	res := New(WithLineNumbers(false)).Highlight([]byte("x\n"), "a.txt")
	is.True(!strings.Contains(string(res.HTML), `id="L1"`))
}
