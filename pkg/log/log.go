// Package log builds the soft-pages logger.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/config"
)

// NewLogger returns a logger writing to stderr, or to the configured log file.
// The returned file, when not nil, must be closed by the caller.
func NewLogger(cfg *config.Config) (*log.Logger, *os.File, error) {
	if cfg == nil {
		return nil, nil, config.ErrNilConfig
	}

	var f *os.File
	var w io.Writer = os.Stderr
	if cfg.Log.Path != "" {
		var err error
		f, err = os.OpenFile(cfg.Log.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
		if err != nil {
			return nil, nil, err //nolint:wrapcheck
		}
		w = f
	}

	return New(w, cfg), f, nil
}

// New returns a logger writing to w, with the level taken from the
// environment and the format from cfg.
func New(w io.Writer, cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateOnly,
	})

	switch {
	case config.IsVerbose():
		logger.SetReportCaller(true)
		fallthrough
	case config.IsDebug():
		logger.SetLevel(log.DebugLevel)
	}

	if cfg == nil {
		return logger
	}

	if cfg.Log.TimeFormat != "" {
		logger.SetTimeFormat(cfg.Log.TimeFormat)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	case "text":
		logger.SetFormatter(log.TextFormatter)
	}

	return logger
}
