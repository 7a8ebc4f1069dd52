package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/page"
	"github.com/charmbracelet/soft-pages/pkg/storage"
	"github.com/gorilla/mux"
)

// HealthController registers the health check routes for the web server.
func HealthController(_ context.Context, r *mux.Router, store storage.Storage) {
	r.HandleFunc("/livez", getLiveness)
	r.HandleFunc("/readyz", getReadiness(store))
}

func getLiveness(w http.ResponseWriter, _ *http.Request) {
	renderStatus(http.StatusOK)(w, nil)
}

// getReadiness reports ready once a site has been generated.
func getReadiness(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := store.Exists(page.Location(page.Log, ""))
		if err != nil {
			log.FromContext(r.Context()).Error("readiness check failed", "err", err)
		}
		if !ok {
			renderStatus(http.StatusServiceUnavailable)(w, nil)
			return
		}

		renderStatus(http.StatusOK)(w, nil)
	}
}
