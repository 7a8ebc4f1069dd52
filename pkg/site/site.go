// Package site generates the static site of a repository.
package site

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/config"
	"github.com/charmbracelet/soft-pages/pkg/diff"
	"github.com/charmbracelet/soft-pages/pkg/emit"
	"github.com/charmbracelet/soft-pages/pkg/git"
	"github.com/charmbracelet/soft-pages/pkg/highlight"
	"github.com/charmbracelet/soft-pages/pkg/page"
	"github.com/charmbracelet/soft-pages/pkg/render"
	"github.com/charmbracelet/soft-pages/pkg/stats"
	"github.com/charmbracelet/soft-pages/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// Generator generates sites. A Generator must not run two generations at
// the same time.
type Generator struct {
	cfg    *config.Config
	logger *log.Logger
	stats  *stats.Stats
}

// New returns a Generator using cfg, or the default config when cfg is nil.
// The logger is taken from ctx.
func New(ctx context.Context, cfg *config.Config) *Generator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Generator{
		cfg:    cfg,
		logger: log.FromContext(ctx).WithPrefix("site"),
		stats:  stats.New(),
	}
}

// Stats returns the counters of the last generation.
func (g *Generator) Stats() *stats.Stats {
	return g.stats
}

// Generate renders the repository at repoPath into outDir. The first fatal
// error cancels the remaining work and is returned.
func (g *Generator) Generate(ctx context.Context, repoPath, outDir string) error {
	start := time.Now()
	g.stats = stats.New()
	cfg := g.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, err := git.Open(repoPath,
		git.WithCacheSize(cfg.Cache.Size),
		git.WithLogger(g.logger.WithPrefix("git")),
	)
	if err != nil {
		return err
	}

	head, err := g.resolve(repo)
	if err != nil {
		return err
	}
	headCommit, err := repo.ReadCommit(head)
	if err != nil {
		return err
	}
	root, err := repo.ReadTree(headCommit.Tree)
	if err != nil {
		return err
	}

	iter, err := repo.Walk(head, git.OrderNewestFirst)
	if err != nil {
		return err
	}
	total := iter.Len()
	commits := make([]*git.Commit, 0, total)
	if err := iter.ForEach(func(c *git.Commit) error {
		if cfg.MaxCommits > 0 && len(commits) >= cfg.MaxCommits {
			return git.ErrStop
		}
		commits = append(commits, c)
		return nil
	}); err != nil {
		return err
	}
	g.logger.Debug("walked history", "head", head, "commits", total, "rendering", len(commits))

	renderer, err := g.renderer(repo)
	if err != nil {
		return err
	}
	engine := diff.New(repo,
		diff.WithContextLines(cfg.Diff.ContextLines),
		diff.WithMaxEdits(cfg.Diff.MaxEdits),
		diff.WithLogger(g.logger.WithPrefix("diff")),
	)
	emitter := emit.New(storage.NewLocalStorage(outDir), g.stats, g.logger.WithPrefix("emit"))

	entries := make([]render.LogEntry, len(commits))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)

	eg.Go(func() error {
		return renderer.Tree(ectx, root, "", func(p *page.Page) error {
			return emitter.Emit(ectx, p)
		})
	})

	for i, c := range commits {
		if ectx.Err() != nil {
			break
		}
		i, c := i, c
		eg.Go(func() error {
			st, err := g.commit(ectx, repo, engine, renderer, emitter, c)
			if err != nil {
				return err
			}
			entries[i] = render.LogEntry{Commit: c, Stats: st}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	logPage, err := renderer.Log(entries, total)
	if err != nil {
		return err
	}
	if err := emitter.Emit(ctx, logPage); err != nil {
		return err
	}
	style, err := renderer.Stylesheet()
	if err != nil {
		return err
	}
	if err := emitter.Emit(ctx, style); err != nil {
		return err
	}

	if cfg.Stats.Path != "" {
		if err := g.stats.WriteFile(cfg.Stats.Path); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
	}

	sum := g.stats.Summary()
	g.logger.Info("generated site",
		"repo", repo.Name(),
		"commits", sum.Commits,
		"pages", sum.Pages,
		"unchanged", sum.Unchanged,
		"took", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func (g *Generator) resolve(repo *git.Repository) (git.Hash, error) {
	if g.cfg.Ref == "" {
		return repo.ResolveHead()
	}
	return repo.Resolve(g.cfg.Ref)
}

func (g *Generator) renderer(repo *git.Repository) (*render.Renderer, error) {
	meta := repo.ReadMetadata()
	if g.cfg.Name != "" {
		meta.Name = g.cfg.Name
	}
	if g.cfg.Description != "" {
		meta.Description = g.cfg.Description
	}
	if g.cfg.URL != "" {
		meta.URL = g.cfg.URL
	}

	globs, err := g.cfg.ExcludeGlobs()
	if err != nil {
		return nil, err
	}
	hl := highlight.New(
		highlight.WithStyle(g.cfg.Highlight.Style),
		highlight.WithLineNumbers(g.cfg.Highlight.LineNumbers),
		highlight.WithTabWidth(g.cfg.Highlight.TabWidth),
		highlight.WithLogger(g.logger.WithPrefix("highlight")),
	)
	return render.New(repo, meta,
		render.WithHighlighter(hl),
		render.WithExclude(globs),
		render.WithStats(g.stats),
		render.WithLogger(g.logger.WithPrefix("render")),
	)
}

// commit diffs c against its first parent and emits its pages.
func (g *Generator) commit(
	ctx context.Context,
	repo *git.Repository,
	engine *diff.Engine,
	renderer *render.Renderer,
	emitter *emit.Emitter,
	c *git.Commit,
) (diff.Stats, error) {
	from := git.ZeroHash
	if len(c.Parents) > 0 {
		parent, err := repo.ReadCommit(c.Parents[0])
		if err != nil {
			return diff.Stats{}, err
		}
		from = parent.Tree
	}

	d, err := engine.Diff(ctx, from, c.Tree)
	if err != nil {
		return diff.Stats{}, fmt.Errorf("diff commit %s: %w", c.ID, err)
	}
	p, err := renderer.Commit(c, d)
	if err != nil {
		return diff.Stats{}, err
	}
	if err := emitter.Emit(ctx, p); err != nil {
		return diff.Stats{}, err
	}
	if err := emitter.Emit(ctx, renderer.Patch(c, d)); err != nil {
		return diff.Stats{}, err
	}
	g.stats.CommitRendered()
	return d.Stats(), nil
}
