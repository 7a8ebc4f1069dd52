package emit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/soft-pages/pkg/page"
	"github.com/charmbracelet/soft-pages/pkg/stats"
	"github.com/charmbracelet/soft-pages/pkg/storage"
	"github.com/matryer/is"
)

func TestEmit(t *testing.T) {
	is := is.New(t)
	root := t.TempDir()
	st := stats.New()
	e := New(storage.NewLocalStorage(root), st, nil)
	ctx := context.Background()

	pages := []*page.Page{
		{Kind: page.Log, Body: []byte("log")},
		{Kind: page.Commit, Path: "abc", Body: []byte("commit")},
		{Kind: page.Tree, Path: "src", Body: []byte("tree")},
		{Kind: page.File, Path: "src/main.txt", Body: []byte("file")},
	}
	for _, p := range pages {
		is.NoErr(e.Emit(ctx, p))
	}
	for _, want := range []string{"log.html", "commit/abc.html", "tree/src/index.html", "blob/src/main.txt.html"} {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(want)))
		is.NoErr(err)
	}
	is.Equal(st.Summary().Pages, int64(4))

	// Emitting the same pages again writes nothing.
	for _, p := range pages {
		is.NoErr(e.Emit(ctx, p))
	}
	is.Equal(st.Summary().Pages, int64(4))
	is.Equal(st.Summary().Unchanged, int64(4))

	// A changed body of the same size is rewritten.
	is.NoErr(e.Emit(ctx, &page.Page{Kind: page.Log, Body: []byte("LOG")}))
	bts, err := os.ReadFile(filepath.Join(root, "log.html"))
	is.NoErr(err)
	is.Equal(string(bts), "LOG")
}

func TestEmitFailure(t *testing.T) {
	is := is.New(t)
	root := t.TempDir()
	// A file where a directory is needed.
	is.NoErr(os.WriteFile(filepath.Join(root, "commit"), []byte("x"), 0o644))

	e := New(storage.NewLocalStorage(root), nil, nil)
	err := e.Emit(context.Background(), &page.Page{Kind: page.Commit, Path: "abc", Body: []byte("x")})
	is.True(errors.Is(err, ErrOutputWrite))

	err = e.Emit(context.Background(), &page.Page{Kind: page.Raw, Path: "../../escape", Body: []byte("x")})
	is.True(errors.Is(err, ErrOutputWrite))
	is.True(errors.Is(err, storage.ErrOutsideRoot))
}
