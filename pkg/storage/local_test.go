package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/matryer/is"
)

func TestLocalStorage(t *testing.T) {
	is := is.New(t)
	root := t.TempDir()
	s := NewLocalStorage(root)

	ok, err := s.Exists("a/b/c.html")
	is.NoErr(err)
	is.True(!ok)

	n, err := s.Put("a/b/c.html", strings.NewReader("hello"))
	is.NoErr(err)
	is.Equal(n, int64(5))

	ok, err = s.Exists("a/b/c.html")
	is.NoErr(err)
	is.True(ok)

	fi, err := s.Stat("a/b/c.html")
	is.NoErr(err)
	is.Equal(fi.Size(), int64(5))
	is.Equal(fi.Mode().Perm(), os.FileMode(0o644))

	f, err := s.Open("a/b/c.html")
	is.NoErr(err)
	bts, err := io.ReadAll(f)
	is.NoErr(err)
	is.NoErr(f.Close())
	is.Equal(string(bts), "hello")

	// Overwrite in place and leave no temporary files behind.
	_, err = s.Put("a/b/c.html", strings.NewReader("bye"))
	is.NoErr(err)
	entries, err := os.ReadDir(filepath.Join(root, "a", "b"))
	is.NoErr(err)
	is.Equal(len(entries), 1)
	bts, err = os.ReadFile(filepath.Join(root, "a", "b", "c.html"))
	is.NoErr(err)
	is.Equal(string(bts), "bye")
}

func TestLocalStorageOutsideRoot(t *testing.T) {
	is := is.New(t)
	s := NewLocalStorage(t.TempDir())
	for _, name := range []string{"../x", "a/../../x", "/etc/passwd"} {
		_, err := s.Put(name, strings.NewReader("x"))
		is.True(errors.Is(err, ErrOutsideRoot))
	}
	// Names that merely start with dots are fine.
	_, err := s.Put("..a/x", strings.NewReader("x"))
	is.NoErr(err)
}

func TestLocalStorageConcurrentDirs(t *testing.T) {
	is := is.New(t)
	s := NewLocalStorage(t.TempDir())
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Put(filepath.ToSlash(filepath.Join("deep", "shared", "dir", string(rune('a'+i))+".html")), strings.NewReader("x"))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		is.NoErr(err)
	}
}
