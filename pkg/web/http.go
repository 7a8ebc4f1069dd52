package web

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/config"
)

// Server is the preview http server.
type Server struct {
	ctx context.Context
	cfg *config.Config

	Server *http.Server
}

// NewServer creates a new preview server for the site generated in root.
// The listen address is taken from the config in ctx.
func NewServer(ctx context.Context, root string) (*Server, error) {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, config.ErrNilConfig
	}
	logger := log.FromContext(ctx)
	s := &Server{
		ctx: ctx,
		cfg: cfg,
		Server: &http.Server{
			Addr:              cfg.Preview.ListenAddr,
			Handler:           NewRouter(ctx, root),
			ReadHeaderTimeout: time.Second * 10,
			IdleTimeout:       time.Second * 10,
			MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
			ErrorLog:          logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
		},
	}

	return s, nil
}

// Close closes the server.
func (s *Server) Close() error {
	return s.Server.Close()
}

// ListenAndServe starts the server.
func (s *Server) ListenAndServe() error {
	return s.Server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
