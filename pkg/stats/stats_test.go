package stats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/soft-pages/pkg/page"
	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStats(t *testing.T) {
	is := is.New(t)
	s := New()
	s.PageWritten(page.Commit, 10)
	s.PageWritten(page.Commit, 5)
	s.PageWritten(page.Log, 1)
	s.PageUnchanged(page.Tree)
	s.CommitRendered()
	s.HighlightFallback()
	s.BinaryFile()

	is.Equal(s.Summary(), Summary{
		Pages:     3,
		Unchanged: 1,
		Bytes:     16,
		Commits:   1,
		Fallbacks: 1,
		Binaries:  1,
	})
	is.Equal(testutil.ToFloat64(s.pages.WithLabelValues("commit")), 2.0)

	path := filepath.Join(t.TempDir(), "soft-pages.prom")
	is.NoErr(s.WriteFile(path))
	bts, err := os.ReadFile(path)
	is.NoErr(err)
	is.True(strings.Contains(string(bts), `soft_pages_site_pages_written_total{kind="commit"} 2`))
	is.True(strings.Contains(string(bts), "soft_pages_site_bytes_written_total 16"))
}

func TestStatsNil(t *testing.T) {
	is := is.New(t)
	var s *Stats
	s.PageWritten(page.Log, 1)
	s.CommitRendered()
	is.Equal(s.Summary(), Summary{})
	is.NoErr(s.WriteFile(filepath.Join(t.TempDir(), "x")))
}

func TestStatsIsolated(t *testing.T) {
	is := is.New(t)
	a, b := New(), New()
	a.CommitRendered()
	is.Equal(b.Summary().Commits, int64(0))
}
