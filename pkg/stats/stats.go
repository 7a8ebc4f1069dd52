// Package stats counts what a site generation run did.
package stats

import (
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/soft-pages/pkg/page"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stats holds the counters of a single run. Each run owns its own registry.
// A nil *Stats is valid and counts nothing.
type Stats struct {
	reg *prometheus.Registry

	pages     *prometheus.CounterVec
	unchanged *prometheus.CounterVec
	bytes     prometheus.Counter
	commits   prometheus.Counter
	fallbacks prometheus.Counter
	binaries  prometheus.Counter

	summary struct {
		pages, unchanged, bytes, commits, fallbacks, binaries atomic.Int64
	}
}

// New returns a Stats with a fresh registry.
func New() *Stats {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Stats{
		reg: reg,
		pages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soft_pages",
			Subsystem: "site",
			Name:      "pages_written_total",
			Help:      "The total number of pages written",
		}, []string{"kind"}),
		unchanged: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soft_pages",
			Subsystem: "site",
			Name:      "pages_unchanged_total",
			Help:      "The total number of pages already up to date",
		}, []string{"kind"}),
		bytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "soft_pages",
			Subsystem: "site",
			Name:      "bytes_written_total",
			Help:      "The total number of bytes written",
		}),
		commits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "soft_pages",
			Subsystem: "site",
			Name:      "commits_total",
			Help:      "The total number of commits rendered",
		}),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "soft_pages",
			Subsystem: "highlight",
			Name:      "fallbacks_total",
			Help:      "The total number of files rendered as plain text after highlighting failed",
		}),
		binaries: f.NewCounter(prometheus.CounterOpts{
			Namespace: "soft_pages",
			Subsystem: "highlight",
			Name:      "binary_files_total",
			Help:      "The total number of binary files not rendered",
		}),
	}
}

// Registry returns the registry holding the counters.
func (s *Stats) Registry() *prometheus.Registry {
	if s == nil {
		return nil
	}
	return s.reg
}

// PageWritten counts a written page of n bytes.
func (s *Stats) PageWritten(kind page.Kind, n int64) {
	if s == nil {
		return
	}
	s.pages.WithLabelValues(kind.String()).Inc()
	s.bytes.Add(float64(n))
	s.summary.pages.Add(1)
	s.summary.bytes.Add(n)
}

// PageUnchanged counts a page whose output was already up to date.
func (s *Stats) PageUnchanged(kind page.Kind) {
	if s == nil {
		return
	}
	s.unchanged.WithLabelValues(kind.String()).Inc()
	s.summary.unchanged.Add(1)
}

// CommitRendered counts a rendered commit.
func (s *Stats) CommitRendered() {
	if s == nil {
		return
	}
	s.commits.Inc()
	s.summary.commits.Add(1)
}

// HighlightFallback counts a file rendered as plain text after a failure.
func (s *Stats) HighlightFallback() {
	if s == nil {
		return
	}
	s.fallbacks.Inc()
	s.summary.fallbacks.Add(1)
}

// BinaryFile counts a binary file rendered as a placeholder.
func (s *Stats) BinaryFile() {
	if s == nil {
		return
	}
	s.binaries.Inc()
	s.summary.binaries.Add(1)
}

// Summary is a point in time copy of the counters.
type Summary struct {
	Pages     int64
	Unchanged int64
	Bytes     int64
	Commits   int64
	Fallbacks int64
	Binaries  int64
}

// Summary returns the current counter values.
func (s *Stats) Summary() Summary {
	if s == nil {
		return Summary{}
	}
	return Summary{
		Pages:     s.summary.pages.Load(),
		Unchanged: s.summary.unchanged.Load(),
		Bytes:     s.summary.bytes.Load(),
		Commits:   s.summary.commits.Load(),
		Fallbacks: s.summary.fallbacks.Load(),
		Binaries:  s.summary.binaries.Load(),
	}
}

// WriteFile writes the counters to path in the Prometheus text format, as
// read by the node exporter textfile collector.
func (s *Stats) WriteFile(path string) error {
	if s == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.reg); err != nil {
		return fmt.Errorf("write stats to %s: %w", path, err)
	}
	return nil
}
