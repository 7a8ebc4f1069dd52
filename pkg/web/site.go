package web

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/page"
	"github.com/charmbracelet/soft-pages/pkg/storage"
	"github.com/gorilla/mux"
)

// SiteController registers the routes serving the generated pages.
func SiteController(_ context.Context, r *mux.Router, store storage.Storage) {
	r.Handle("/", http.RedirectHandler("/"+page.Location(page.Log, ""), http.StatusFound)).
		Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/").Handler(withMethods(serveSite(store), http.MethodGet, http.MethodHead))
}

func withMethods(next http.Handler, methods ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, m := range methods {
			if r.Method == m {
				next.ServeHTTP(w, r)
				return
			}
		}
		renderMethodNotAllowed(w, r)
	})
}

// serveSite serves a file of the site. Directory requests are answered with
// their index.html.
func serveSite(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context())
		upath := r.URL.Path
		name := strings.TrimPrefix(path.Clean("/"+upath), "/")
		if strings.HasSuffix(upath, "/") {
			name = path.Join(name, "index.html")
		}

		fi, err := store.Stat(name)
		switch {
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, storage.ErrOutsideRoot):
			renderNotFound(w, r)
			return
		case err != nil:
			logger.Error("stat file", "name", name, "err", err)
			renderInternalServerError(w, r)
			return
		case fi.IsDir():
			http.Redirect(w, r, upath+"/", http.StatusMovedPermanently)
			return
		}

		obj, err := store.Open(name)
		if err != nil {
			logger.Error("open file", "name", name, "err", err)
			renderInternalServerError(w, r)
			return
		}
		defer obj.Close() // nolint: errcheck

		setServed(r.Context(), name)
		if path.Ext(name) == ".patch" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		http.ServeContent(w, r, name, fi.ModTime(), obj)
	}
}
