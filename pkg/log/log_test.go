package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/soft-pages/pkg/config"
	"github.com/matryer/is"
)

func TestGoodNewLogger(t *testing.T) {
	for _, c := range []*config.Config{
		config.DefaultConfig(),
		{},
		{Log: config.LogConfig{Path: filepath.Join(t.TempDir(), "logfile.txt")}},
	} {
		_, f, err := NewLogger(c)
		if err != nil {
			t.Errorf("NewLogger(%v) => _, _, %v, want _, _, nil", c, err)
		}
		if f != nil {
			f.Close()
		}
	}
}

func TestBadNewLogger(t *testing.T) {
	for _, c := range []*config.Config{
		nil,
		{Log: config.LogConfig{Path: "\x00"}},
	} {
		_, f, err := NewLogger(c)
		if err == nil {
			t.Errorf("NewLogger(%v) => _, _, nil, want _, _, %v", c, err)
		}
		if f != nil {
			f.Close()
		}
	}
}

func TestLogFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "soft-pages.log")
	logger, f, err := NewLogger(&config.Config{Log: config.LogConfig{Path: path, Format: "logfmt"}})
	is.NoErr(err)
	logger.Info("generated", "pages", 3)
	is.NoErr(f.Close())

	bts, err := os.ReadFile(path)
	is.NoErr(err)
	is.True(strings.Contains(string(bts), "msg=generated pages=3"))
}

func TestFormats(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	New(&buf, &config.Config{Log: config.LogConfig{Format: "json"}}).Info("hi")
	is.True(strings.Contains(buf.String(), `"msg":"hi"`))

	buf.Reset()
	New(&buf, nil).Debug("hidden")
	is.Equal(buf.Len(), 0)

	t.Setenv("SOFT_PAGES_DEBUG", "true")
	buf.Reset()
	New(&buf, nil).Debug("shown")
	is.True(strings.Contains(buf.String(), "shown"))
}
