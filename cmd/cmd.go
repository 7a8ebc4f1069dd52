// Package cmd holds the helpers shared by the soft-pages commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/config"
	logr "github.com/charmbracelet/soft-pages/pkg/log"
	"github.com/spf13/cobra"
)

// logFileKey is the context key of the open log file.
var logFileKey = struct{ string }{"logfile"}

// InitContext loads the config and builds the logger, then stores both in
// the command context. The config is read from the --config flag, or the
// default location when the flag is not set, and from the environment.
func InitContext(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	cfg := config.DefaultConfig()

	path := config.DefaultConfigPath()
	if f := c.Flags().Lookup("config"); f != nil && f.Changed {
		path = f.Value.String()
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
	}
	if err := cfg.Parse(path); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	logger, f, err := logr.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	log.SetDefault(logger)

	ctx = config.WithContext(ctx, cfg)
	ctx = log.WithContext(ctx, logger)
	if f != nil {
		ctx = contextWithFile(ctx, f)
	}
	c.SetContext(ctx)

	return nil
}

// CloseContext closes the log file opened by InitContext.
func CloseContext(c *cobra.Command, _ []string) error {
	if f := fileFromContext(c.Context()); f != nil {
		if err := f.Close(); err != nil {
			return fmt.Errorf("close log file: %w", err)
		}
	}

	return nil
}

// Config returns the config stored by InitContext.
func Config(c *cobra.Command) (*config.Config, error) {
	cfg := config.FromContext(c.Context())
	if cfg == nil {
		return nil, config.ErrNilConfig
	}
	return cfg, nil
}
