package site

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/soft-pages/pkg/config"
	"github.com/charmbracelet/soft-pages/pkg/git"
	"github.com/charmbracelet/soft-pages/pkg/test"
	"github.com/matryer/is"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Workers = 4
	return cfg
}

func read(t *testing.T, dir, name string) string {
	t.Helper()
	bts, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatal(err)
	}
	return string(bts)
}

// files returns the contents of every file under dir keyed by slash path.
func files(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	out := map[string][]byte{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		bts, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = bts
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestGenerateTwoCommits(t *testing.T) {
	is := is.New(t)
	tr := test.NewRepo(t)
	tr.WriteFile("a.txt", "hello\n")
	c1 := tr.Commit("add a")
	tr.WriteFile("a.txt", "hello world\n")
	c2 := tr.Commit("change a")

	out := t.TempDir()
	g := New(context.Background(), testConfig())
	is.NoErr(g.Generate(context.Background(), tr.Path, out))

	logPage := read(t, out, "log.html")
	is.Equal(strings.Count(logPage, `<tr class="commit">`), 2)
	is.True(strings.Index(logPage, "change a") < strings.Index(logPage, "add a"))
	is.True(strings.Contains(logPage, `href="commit/`+c2.String()+`.html"`))

	second := read(t, out, "commit/"+c2.String()+".html")
	is.True(strings.Contains(second, `<span class="status modified">modified</span> a.txt`))
	is.Equal(strings.Count(second, `<tr class="hunk">`), 1)
	is.True(strings.Contains(second, "-hello"))

	first := read(t, out, "commit/"+c1.String()+".html")
	is.True(strings.Contains(first, `<span class="status added">added</span> a.txt`))

	patch := read(t, out, "commit/"+c2.String()+".patch")
	is.True(strings.Contains(patch, "-hello\n+hello world\n"))

	is.True(strings.Contains(read(t, out, "blob/a.txt.html"), "hello world"))
	is.True(strings.Contains(read(t, out, "tree/index.html"), `href="../blob/a.txt.html"`))
	is.True(strings.Contains(read(t, out, "style.css"), ".chroma"))

	sum := g.Stats().Summary()
	is.Equal(sum.Commits, int64(2))
	is.Equal(sum.Unchanged, int64(0))
	// log, style, 2 commit pages, 2 patches, listing, file.
	is.Equal(sum.Pages, int64(8))
}

func TestGenerateNavigation(t *testing.T) {
	is := is.New(t)
	tr := test.NewRepo(t)
	tr.WriteFile("src/main.txt", "main\n")
	tr.WriteFile("README.md", "# Demo\n")
	tr.Commit("initial")

	out := t.TempDir()
	is.NoErr(New(context.Background(), testConfig()).Generate(context.Background(), tr.Path, out))

	root := read(t, out, "tree/index.html")
	is.True(strings.Contains(root, `href="src/index.html"`))
	is.True(strings.Contains(root, `<h1 id="demo">Demo</h1>`))

	src := read(t, out, "tree/src/index.html")
	is.True(strings.Contains(src, `href="../../blob/src/main.txt.html"`))

	file := read(t, out, "blob/src/main.txt.html")
	is.True(strings.Contains(file, `href="../../tree/src/index.html"`))
	is.True(strings.Contains(file, `href="../../style.css"`))
}

func TestGenerateReservedNames(t *testing.T) {
	is := is.New(t)
	tr := test.NewRepo(t)
	tr.WriteFile("index.html/x.txt", "x\n")
	tr.WriteFile("a", "a\n")
	tr.WriteFile("a.html/b", "b\n")
	tr.WriteFile("a.html/index.html", "<p>page</p>\n")
	tr.Commit("reserved names")

	out := t.TempDir()
	g := New(context.Background(), testConfig())
	is.NoErr(g.Generate(context.Background(), tr.Path, out))

	root := read(t, out, "tree/index.html")
	is.True(strings.Contains(root, `href="index%252Ehtml/index.html"`))
	is.True(strings.Contains(root, `href="a%252Ehtml/index.html"`))
	is.True(strings.Contains(root, `href="../blob/a.html"`))

	is.True(strings.Contains(read(t, out, "tree/index%2Ehtml/index.html"), `href="../../blob/index%252Ehtml/x.txt.html"`))
	is.True(strings.Contains(read(t, out, "blob/index%2Ehtml/x.txt.html"), "x"))
	is.True(strings.Contains(read(t, out, "blob/a.html"), "a"))
	is.True(strings.Contains(read(t, out, "blob/a%2Ehtml/b.html"), "b"))
	is.True(strings.Contains(read(t, out, "blob/a%2Ehtml/index.html.html"), "page"))
	is.True(strings.Contains(read(t, out, "tree/a%2Ehtml/index.html"), `href="../../blob/a%252Ehtml/b.html"`))
}

func TestGenerateLinksAndSubmodules(t *testing.T) {
	is := is.New(t)
	tr := test.NewRepo(t)
	notes := tr.WriteBlob("notes\n")
	v1 := git.NewHash("1111111111111111111111111111111111111111")
	v2 := git.NewHash("2222222222222222222222222222222222222222")
	c1 := tr.CommitTree("add lib", tr.WriteTree(
		test.File("notes.txt", notes),
		test.Submodule("lib", v1),
	))
	c2 := tr.CommitTree("bump lib", tr.WriteTree(
		test.File("notes.txt", notes),
		test.Symlink("latest", tr.WriteBlob("notes.txt")),
		test.Submodule("lib", v2),
	), c1)

	out := t.TempDir()
	is.NoErr(New(context.Background(), testConfig()).Generate(context.Background(), tr.Path, out))

	second := read(t, out, "commit/"+c2.String()+".html")
	is.True(strings.Contains(second, "Subproject commit "))
	is.True(strings.Contains(second, v2.String()))
	is.True(strings.Contains(second, `<span class="status added">added</span> latest`))
	is.True(strings.Contains(read(t, out, "commit/"+c2.String()+".patch"), "+Subproject commit "+v2.String()+"\n"))

	is.True(strings.Contains(read(t, out, "tree/index.html"), "lib @ "+v2.String()))
	is.True(strings.Contains(read(t, out, "blob/latest.html"), "symbolic link"))
	_, err := os.Stat(filepath.Join(out, "blob", "lib.html"))
	is.True(errors.Is(err, fs.ErrNotExist))
}

func TestGenerateDeterministic(t *testing.T) {
	is := is.New(t)
	tr := test.NewRepo(t)
	tr.WriteFile("a.go", "package a\n\nfunc A() {}\n")
	tr.WriteFile("docs/guide.md", "# Guide\n")
	tr.WriteFile("bin/tool", "\x7fELF\x00\x00")
	tr.Commit("initial")
	tr.WriteFile("a.go", "package a\n\nfunc A() int { return 1 }\n")
	tr.Remove("docs/guide.md")
	tr.Commit("second")
	tr.WriteFile("b.go", "package a\n")
	tr.Commit("third")

	one, two := t.TempDir(), t.TempDir()
	is.NoErr(New(context.Background(), testConfig()).Generate(context.Background(), tr.Path, one))
	cfg := testConfig()
	cfg.Workers = 1
	is.NoErr(New(context.Background(), cfg).Generate(context.Background(), tr.Path, two))

	a, b := files(t, one), files(t, two)
	is.Equal(len(a), len(b))
	for name, bts := range a {
		is.True(bytes.Equal(bts, b[name])) // same bytes for every file
	}
	_, ok := a["raw/bin/tool"]
	is.True(ok)
}

func TestGenerateUnchanged(t *testing.T) {
	is := is.New(t)
	tr := test.NewRepo(t)
	tr.WriteFile("a.txt", "a\n")
	tr.Commit("initial")

	out := t.TempDir()
	g := New(context.Background(), testConfig())
	is.NoErr(g.Generate(context.Background(), tr.Path, out))
	written := g.Stats().Summary().Pages

	is.NoErr(g.Generate(context.Background(), tr.Path, out))
	sum := g.Stats().Summary()
	is.Equal(sum.Pages, int64(0))
	is.Equal(sum.Unchanged, written)
}

func TestGenerateMaxCommits(t *testing.T) {
	is := is.New(t)
	tr := test.NewRepo(t)
	var ids []git.Hash
	for _, msg := range []string{"one", "two", "three"} {
		tr.WriteFile("a.txt", msg+"\n")
		ids = append(ids, tr.Commit(msg))
	}

	out := t.TempDir()
	cfg := testConfig()
	cfg.MaxCommits = 2
	is.NoErr(New(context.Background(), cfg).Generate(context.Background(), tr.Path, out))

	logPage := read(t, out, "log.html")
	is.Equal(strings.Count(logPage, `<tr class="commit">`), 2)
	is.True(strings.Contains(logPage, "Showing the 2 most recent of 3 commits."))

	_, err := os.Stat(filepath.Join(out, "commit", ids[0].String()+".html"))
	is.True(errors.Is(err, fs.ErrNotExist))
	// The oldest rendered commit is still diffed against its parent.
	second := read(t, out, "commit/"+ids[1].String()+".html")
	is.True(strings.Contains(second, `<span class="status modified">modified</span> a.txt`))
}

func TestGenerateRefAndOverrides(t *testing.T) {
	is := is.New(t)
	tr := test.NewRepo(t)
	tr.WriteFile("a.txt", "a\n")
	first := tr.Commit("first")
	tr.WriteFile("b.txt", "b\n")
	tr.Commit("second")

	out := t.TempDir()
	cfg := testConfig()
	cfg.Ref = first.String()
	cfg.Name = "override"
	cfg.Stats.Path = filepath.Join(t.TempDir(), "soft-pages.prom")
	is.NoErr(New(context.Background(), cfg).Generate(context.Background(), tr.Path, out))

	_, err := os.Stat(filepath.Join(out, "blob", "b.txt.html"))
	is.True(errors.Is(err, fs.ErrNotExist))
	is.True(strings.Contains(read(t, out, "log.html"), "override"))

	prom, err := os.ReadFile(cfg.Stats.Path)
	is.NoErr(err)
	is.True(strings.Contains(string(prom), "soft_pages_site_commits_total 1"))
}

func TestGenerateErrors(t *testing.T) {
	is := is.New(t)
	err := New(context.Background(), testConfig()).Generate(context.Background(), t.TempDir(), t.TempDir())
	is.True(errors.Is(err, git.ErrRepositoryNotFound))

	tr := test.NewRepo(t)
	tr.WriteFile("a.txt", "a\n")
	tr.Commit("initial")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = New(ctx, testConfig()).Generate(ctx, tr.Path, t.TempDir())
	is.True(errors.Is(err, context.Canceled))

	cfg := testConfig()
	cfg.Ref = "nope"
	err = New(context.Background(), cfg).Generate(context.Background(), tr.Path, t.TempDir())
	is.True(err != nil)
}
