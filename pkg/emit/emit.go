// Package emit writes rendered pages to their output locations.
package emit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/page"
	"github.com/charmbracelet/soft-pages/pkg/stats"
	"github.com/charmbracelet/soft-pages/pkg/storage"
)

// ErrOutputWrite is returned when a page cannot be written.
var ErrOutputWrite = errors.New("output write failure")

// Emitter writes pages to a storage. It is safe for concurrent use as long
// as concurrent pages have distinct locations.
type Emitter struct {
	store  storage.Storage
	stats  *stats.Stats
	logger *log.Logger
}

// New returns an Emitter writing to store. stats may be nil.
func New(store storage.Storage, st *stats.Stats, logger *log.Logger) *Emitter {
	if logger == nil {
		logger = log.Default()
	}
	return &Emitter{
		store:  store,
		stats:  st,
		logger: logger,
	}
}

// Emit writes the page to its location. A page whose output already holds
// the same bytes is left untouched.
func (e *Emitter) Emit(ctx context.Context, p *page.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	loc := p.Location()
	same, err := e.unchanged(loc, p.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, loc, err)
	}
	if same {
		e.stats.PageUnchanged(p.Kind)
		return nil
	}

	n, err := e.store.Put(loc, bytes.NewReader(p.Body))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, loc, err)
	}
	e.stats.PageWritten(p.Kind, n)
	e.logger.Debug("wrote page", "kind", p.Kind, "path", loc, "size", n)
	return nil
}

func (e *Emitter) unchanged(loc string, body []byte) (bool, error) {
	ok, err := e.store.Exists(loc)
	if err != nil || !ok {
		return false, err
	}
	fi, err := e.store.Stat(loc)
	if err != nil {
		return false, err
	}
	if !fi.Mode().IsRegular() {
		return false, fmt.Errorf("%s is not a regular file", loc)
	}
	if fi.Size() != int64(len(body)) {
		return false, nil
	}

	f, err := e.store.Open(loc)
	if err != nil {
		return false, err
	}
	defer f.Close() // nolint: errcheck
	cur, err := io.ReadAll(f)
	if err != nil {
		return false, err
	}
	return bytes.Equal(cur, body), nil
}
