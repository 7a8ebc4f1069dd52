package git_test

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/soft-pages/pkg/git"
	"github.com/charmbracelet/soft-pages/pkg/test"
	"github.com/matryer/is"
)

type fakeReader map[git.Hash]*git.Commit

func (f fakeReader) ReadCommit(id git.Hash) (*git.Commit, error) {
	c, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: commit %s", git.ErrCorruptObject, id)
	}
	return c, nil
}

func hashOf(n int) git.Hash {
	return git.NewHash(fmt.Sprintf("%040x", n))
}

func (f fakeReader) add(n int, when time.Time, parents ...int) {
	c := &git.Commit{
		ID:        hashOf(n),
		Committer: git.Signature{When: when},
	}
	for _, p := range parents {
		c.Parents = append(c.Parents, hashOf(p))
	}
	f[c.ID] = c
}

func ids(t *testing.T, it *git.CommitIter) []git.Hash {
	t.Helper()
	var out []git.Hash
	for {
		c, err := it.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, c.ID)
	}
}

func TestWalkMerge(t *testing.T) {
	is := is.New(t)
	f := fakeReader{}
	base := test.Epoch
	f.add(1, base)
	f.add(2, base.Add(1*time.Hour), 1)
	f.add(3, base.Add(2*time.Hour), 1)
	f.add(4, base.Add(3*time.Hour), 2, 3)

	it, err := git.Walk(f, hashOf(4), git.OrderNewestFirst)
	is.NoErr(err)
	is.Equal(it.Len(), 4) // the shared root is visited once
	is.Equal(ids(t, it), []git.Hash{hashOf(4), hashOf(3), hashOf(2), hashOf(1)})

	it, err = git.Walk(f, hashOf(4), git.OrderOldestFirst)
	is.NoErr(err)
	is.Equal(ids(t, it), []git.Hash{hashOf(1), hashOf(2), hashOf(3), hashOf(4)})
}

func TestWalkTimeTies(t *testing.T) {
	is := is.New(t)
	f := fakeReader{}
	f.add(1, test.Epoch)
	f.add(9, test.Epoch, 1)
	f.add(5, test.Epoch, 1)
	f.add(7, test.Epoch, 9, 5)

	it, err := git.Walk(f, hashOf(7), git.OrderNewestFirst)
	is.NoErr(err)
	is.Equal(ids(t, it), []git.Hash{hashOf(1), hashOf(5), hashOf(7), hashOf(9)})
}

func TestWalkCycle(t *testing.T) {
	is := is.New(t)
	f := fakeReader{}
	f.add(1, test.Epoch, 3)
	f.add(2, test.Epoch, 1)
	f.add(3, test.Epoch, 2)

	_, err := git.Walk(f, hashOf(3), git.OrderNewestFirst)
	is.True(errors.Is(err, git.ErrGraphCycleDetected))

	// A self-referencing commit is the smallest cycle.
	f = fakeReader{}
	f.add(1, test.Epoch, 1)
	_, err = git.Walk(f, hashOf(1), git.OrderNewestFirst)
	is.True(errors.Is(err, git.ErrGraphCycleDetected))
}

func TestWalkMissingParent(t *testing.T) {
	is := is.New(t)
	f := fakeReader{}
	f.add(2, test.Epoch, 1)
	_, err := git.Walk(f, hashOf(2), git.OrderNewestFirst)
	is.True(errors.Is(err, git.ErrCorruptObject))
}

func TestWalkForEachStop(t *testing.T) {
	is := is.New(t)
	f := fakeReader{}
	f.add(1, test.Epoch)
	f.add(2, test.Epoch.Add(time.Hour), 1)
	f.add(3, test.Epoch.Add(2*time.Hour), 2)

	it, err := git.Walk(f, hashOf(3), git.OrderNewestFirst)
	is.NoErr(err)
	var seen int
	err = it.ForEach(func(*git.Commit) error {
		seen++
		if seen == 2 {
			return git.ErrStop
		}
		return nil
	})
	is.NoErr(err)
	is.Equal(seen, 2)

	boom := errors.New("boom")
	it, err = git.Walk(f, hashOf(3), git.OrderNewestFirst)
	is.NoErr(err)
	is.Equal(it.ForEach(func(*git.Commit) error { return boom }), boom)
}

func TestRepositoryWalk(t *testing.T) {
	is := is.New(t)
	tr := test.NewRepo(t)
	tr.WriteFile("a.txt", "one\n")
	first := tr.Commit("first")
	tr.WriteFile("a.txt", "two\n")
	second := tr.Commit("second")

	r, err := git.Open(tr.Path)
	is.NoErr(err)
	head, err := r.ResolveHead()
	is.NoErr(err)
	it, err := r.Walk(head, git.OrderNewestFirst)
	is.NoErr(err)
	is.Equal(ids(t, it), []git.Hash{second, first})
}
