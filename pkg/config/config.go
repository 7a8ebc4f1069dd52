package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// ErrNilConfig is returned when a nil config is passed to a function.
var ErrNilConfig = errors.New("nil config")

// ErrInvalidConfig is returned when a config fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	// Format must be described in Golang's time format.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`
}

// HighlightConfig is the syntax highlighting configuration.
type HighlightConfig struct {
	// Style is the chroma style name.
	Style string `env:"STYLE" yaml:"style"`

	// LineNumbers adds linkable line numbers to file pages.
	LineNumbers bool `env:"LINE_NUMBERS" yaml:"line_numbers"`

	// TabWidth is the number of columns a tab expands to.
	TabWidth int `env:"TAB_WIDTH" yaml:"tab_width"`
}

// DiffConfig is the diff configuration.
type DiffConfig struct {
	// ContextLines is the number of unchanged lines shown around a change.
	ContextLines int `env:"CONTEXT_LINES" yaml:"context_lines"`

	// MaxEdits bounds the line diff of a single file. Files needing more
	// edits are shown as a wholesale replacement.
	MaxEdits int `env:"MAX_EDITS" yaml:"max_edits"`
}

// CacheConfig is the object cache configuration.
type CacheConfig struct {
	// Size is the number of decoded objects kept in memory.
	Size int `env:"SIZE" yaml:"size"`
}

// StatsConfig is the configuration for the run statistics.
type StatsConfig struct {
	// Path is a file the run counters are written to in the Prometheus
	// text format. Empty disables it.
	Path string `env:"PATH" yaml:"path"`
}

// PreviewConfig is the configuration for the preview server.
type PreviewConfig struct {
	// ListenAddr is the address on which the preview server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// Config is the configuration for Soft Pages.
type Config struct {
	// Name overrides the repository name shown in page headers.
	Name string `env:"NAME" yaml:"name"`

	// Description overrides the repository description.
	Description string `env:"DESCRIPTION" yaml:"description"`

	// URL overrides the clone URL.
	URL string `env:"URL" yaml:"url"`

	// Ref is the branch, tag or commit the site is generated from.
	// Empty means HEAD.
	Ref string `env:"REF" yaml:"ref"`

	// Workers is the number of commits rendered concurrently.
	// Zero means GOMAXPROCS.
	Workers int `env:"WORKERS" yaml:"workers"`

	// MaxCommits bounds the number of commits listed and rendered.
	// Zero means all of them.
	MaxCommits int `env:"MAX_COMMITS" yaml:"max_commits"`

	// Exclude is a list of globs matching repository paths that are listed
	// but get no page.
	Exclude []string `env:"EXCLUDE" envSeparator:"," yaml:"exclude"`

	// Log is the logger configuration.
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// Highlight is the syntax highlighting configuration.
	Highlight HighlightConfig `envPrefix:"HIGHLIGHT_" yaml:"highlight"`

	// Diff is the diff configuration.
	Diff DiffConfig `envPrefix:"DIFF_" yaml:"diff"`

	// Cache is the object cache configuration.
	Cache CacheConfig `envPrefix:"CACHE_" yaml:"cache"`

	// Stats is the configuration for the run statistics.
	Stats StatsConfig `envPrefix:"STATS_" yaml:"stats"`

	// Preview is the configuration for the preview server.
	Preview PreviewConfig `envPrefix:"PREVIEW_" yaml:"preview"`
}

// Environ returns the config as a list of environment variables.
func (c *Config) Environ() []string {
	if c == nil {
		return nil
	}

	return []string{
		fmt.Sprintf("SOFT_PAGES_NAME=%s", c.Name),
		fmt.Sprintf("SOFT_PAGES_DESCRIPTION=%s", c.Description),
		fmt.Sprintf("SOFT_PAGES_URL=%s", c.URL),
		fmt.Sprintf("SOFT_PAGES_REF=%s", c.Ref),
		fmt.Sprintf("SOFT_PAGES_WORKERS=%d", c.Workers),
		fmt.Sprintf("SOFT_PAGES_MAX_COMMITS=%d", c.MaxCommits),
		fmt.Sprintf("SOFT_PAGES_EXCLUDE=%s", strings.Join(c.Exclude, ",")),
		fmt.Sprintf("SOFT_PAGES_LOG_FORMAT=%s", c.Log.Format),
		fmt.Sprintf("SOFT_PAGES_LOG_TIME_FORMAT=%s", c.Log.TimeFormat),
		fmt.Sprintf("SOFT_PAGES_LOG_PATH=%s", c.Log.Path),
		fmt.Sprintf("SOFT_PAGES_HIGHLIGHT_STYLE=%s", c.Highlight.Style),
		fmt.Sprintf("SOFT_PAGES_HIGHLIGHT_LINE_NUMBERS=%t", c.Highlight.LineNumbers),
		fmt.Sprintf("SOFT_PAGES_HIGHLIGHT_TAB_WIDTH=%d", c.Highlight.TabWidth),
		fmt.Sprintf("SOFT_PAGES_DIFF_CONTEXT_LINES=%d", c.Diff.ContextLines),
		fmt.Sprintf("SOFT_PAGES_DIFF_MAX_EDITS=%d", c.Diff.MaxEdits),
		fmt.Sprintf("SOFT_PAGES_CACHE_SIZE=%d", c.Cache.Size),
		fmt.Sprintf("SOFT_PAGES_STATS_PATH=%s", c.Stats.Path),
		fmt.Sprintf("SOFT_PAGES_PREVIEW_LISTEN_ADDR=%s", c.Preview.ListenAddr),
	}
}

// IsDebug returns true if debug logging is enabled.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("SOFT_PAGES_DEBUG"))
	return debug
}

// IsVerbose returns true if verbose logging is enabled.
// Verbose mode is only enabled if debug mode is enabled.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv("SOFT_PAGES_VERBOSE"))
	return IsDebug() && verbose
}

// parseFile parses the given file as a configuration file.
// The file must be in YAML format.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return cfg.Validate()
}

// ParseFile parses the config from the given file path.
// This also calls Validate() on the config.
func (c *Config) ParseFile(path string) error {
	return parseFile(c, path)
}

// parseEnv parses the environment variables as a configuration file.
func parseEnv(cfg *Config) error {
	// Globs from the file and the environment are merged.
	exclude := append([]string{}, cfg.Exclude...)

	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix: "SOFT_PAGES_",
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	if os.Getenv("SOFT_PAGES_EXCLUDE") != "" {
		cfg.Exclude = append(exclude, cfg.Exclude...)
	}

	return cfg.Validate()
}

// ParseEnv parses the config from the environment variables.
// This also calls Validate() on the config.
func (c *Config) ParseEnv() error {
	return parseEnv(c)
}

// Parse parses the config from the given file path, when it exists, and the
// environment variables.
// This also calls Validate() on the config.
func (c *Config) Parse(path string) error {
	if path != "" && exist(path) {
		if err := c.ParseFile(path); err != nil {
			return err
		}
	}

	return c.ParseEnv()
}

// writeConfig writes the configuration to the given file.
func writeConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(newConfigFile(cfg)), 0o644) // nolint: errcheck, gosec
}

// WriteConfig writes the configuration to the given file.
func (c *Config) WriteConfig(path string) error {
	return writeConfig(c, path)
}

// DefaultConfigPath returns the path to the config file.
// It uses the SOFT_PAGES_CONFIG_LOCATION environment variable if set,
// otherwise it uses "soft-pages.yaml".
func DefaultConfigPath() string {
	if p := os.Getenv("SOFT_PAGES_CONFIG_LOCATION"); p != "" {
		return p
	}
	return "soft-pages.yaml"
}

func exist(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DefaultConfig returns the default Config.
// Use Validate() to fill in the values derived from the environment.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
		},
		Highlight: HighlightConfig{
			Style:       "github",
			LineNumbers: true,
			TabWidth:    4,
		},
		Diff: DiffConfig{
			ContextLines: 3,
			MaxEdits:     2000,
		},
		Cache: CacheConfig{
			Size: 4096,
		},
		Preview: PreviewConfig{
			ListenAddr: "localhost:23234",
		},
	}
}

// Validate validates the configuration.
// It fills in the worker count and rejects malformed values.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}

	switch {
	case c.MaxCommits < 0:
		return fmt.Errorf("%w: max_commits must not be negative", ErrInvalidConfig)
	case c.Diff.ContextLines < 0:
		return fmt.Errorf("%w: diff.context_lines must not be negative", ErrInvalidConfig)
	case c.Diff.MaxEdits < 0:
		return fmt.Errorf("%w: diff.max_edits must not be negative", ErrInvalidConfig)
	case c.Highlight.TabWidth < 0:
		return fmt.Errorf("%w: highlight.tab_width must not be negative", ErrInvalidConfig)
	case c.Cache.Size < 0:
		return fmt.Errorf("%w: cache.size must not be negative", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}

	if _, err := c.ExcludeGlobs(); err != nil {
		return err
	}

	return nil
}

// ExcludeGlobs compiles the exclude patterns. Patterns match full repository
// paths, with "/" as the separator.
func (c *Config) ExcludeGlobs() ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(c.Exclude))
	for _, p := range c.Exclude {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: exclude %q: %w", ErrInvalidConfig, p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}
