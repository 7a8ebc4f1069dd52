package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/storage"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter returns a new HTTP router serving the site generated in root.
func NewRouter(ctx context.Context, root string) http.Handler {
	logger := log.FromContext(ctx).WithPrefix("http")
	router := mux.NewRouter()
	store := storage.NewLocalStorage(root)

	// Health routes
	HealthController(ctx, router, store)

	// Metrics routes
	MetricsController(ctx, router)

	// Site routes
	SiteController(ctx, router, store)

	router.NotFoundHandler = http.HandlerFunc(renderNotFound)

	// Context handler
	// Adds context to the request
	h := NewLoggingMiddleware(router, logger)
	h = NewContextHandler(ctx)(h)
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler()(h)

	return h
}
