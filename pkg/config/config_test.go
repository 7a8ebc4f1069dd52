package config

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/matryer/is"
)

func TestParseFile(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseFile("testdata/config.yaml"))
	is.Equal(cfg.Name, "Test site")
	is.Equal(cfg.Workers, 2)
	is.Equal(cfg.MaxCommits, 50)
	is.Equal(cfg.Exclude, []string{"vendor"})
	is.Equal(cfg.Highlight.Style, "monokai")
	is.Equal(cfg.Highlight.TabWidth, 8)
	// Unset keys keep their defaults.
	is.True(cfg.Highlight.LineNumbers)
	is.Equal(cfg.Diff.ContextLines, 3)
}

func TestParseEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("SOFT_PAGES_WORKERS", "3")
	t.Setenv("SOFT_PAGES_DIFF_CONTEXT_LINES", "5")
	t.Setenv("SOFT_PAGES_HIGHLIGHT_LINE_NUMBERS", "false")
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.Workers, 3)
	is.Equal(cfg.Diff.ContextLines, 5)
	is.True(!cfg.Highlight.LineNumbers)
}

func TestMergeExclude(t *testing.T) {
	is := is.New(t)
	t.Setenv("SOFT_PAGES_EXCLUDE", "**.min.js,dist")
	cfg := DefaultConfig()
	is.NoErr(cfg.Parse("testdata/config.yaml"))
	is.Equal(cfg.Exclude, []string{"vendor", "**.min.js", "dist"})

	globs, err := cfg.ExcludeGlobs()
	is.NoErr(err)
	is.Equal(len(globs), 3)
	is.True(globs[1].Match("static/js/app.min.js"))
	is.True(!globs[2].Match("src/dist"))
}

func TestParseMissingFile(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.NoErr(cfg.Parse(filepath.Join(t.TempDir(), "nope.yaml")))
	is.Equal(cfg.Workers, runtime.GOMAXPROCS(0))
}

func TestWriteConfig(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "sub", "soft-pages.yaml")
	cfg := DefaultConfig()
	cfg.Name = "Written"
	cfg.MaxCommits = 7
	is.NoErr(cfg.WriteConfig(path))

	got := DefaultConfig()
	is.NoErr(got.ParseFile(path))
	is.Equal(got.Name, "Written")
	is.Equal(got.MaxCommits, 7)
	is.Equal(got.Highlight, cfg.Highlight)
	is.Equal(got.Preview, cfg.Preview)
}

func TestCustomConfigLocation(t *testing.T) {
	is := is.New(t)
	is.Equal(DefaultConfigPath(), "soft-pages.yaml")
	t.Setenv("SOFT_PAGES_CONFIG_LOCATION", "testdata/config.yaml")
	is.Equal(DefaultConfigPath(), "testdata/config.yaml")
	cfg := DefaultConfig()
	is.NoErr(cfg.Parse(DefaultConfigPath()))
	is.Equal(cfg.Name, "Test site")
}

func TestValidate(t *testing.T) {
	for name, mut := range map[string]func(*Config){
		"negative max commits": func(c *Config) { c.MaxCommits = -1 },
		"negative context":     func(c *Config) { c.Diff.ContextLines = -1 },
		"negative max edits":   func(c *Config) { c.Diff.MaxEdits = -2 },
		"negative cache":       func(c *Config) { c.Cache.Size = -1 },
		"bad log format":       func(c *Config) { c.Log.Format = "xml" },
		"bad glob":             func(c *Config) { c.Exclude = []string{"[a"} },
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			cfg := DefaultConfig()
			mut(cfg)
			err := cfg.Validate()
			is.True(errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestDebugVerbose(t *testing.T) {
	is := is.New(t)
	t.Setenv("SOFT_PAGES_VERBOSE", "true")
	is.True(!IsVerbose())
	t.Setenv("SOFT_PAGES_DEBUG", "1")
	is.True(IsDebug())
	is.True(IsVerbose())
}

func TestEnviron(t *testing.T) {
	is := is.New(t)
	is.Equal(len((*Config)(nil).Environ()), 0)
	env := DefaultConfig().Environ()
	is.True(len(env) > 0)
	for _, e := range env {
		is.True(len(e) > len("SOFT_PAGES_"))
	}
}
