package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/pkg/page"
	"github.com/dustin/go-humanize"
)

// logWriter is a wrapper around http.ResponseWriter that allows us to capture
// the HTTP status code and bytes written to the response.
type logWriter struct {
	http.ResponseWriter
	code, bytes int
}

var _ http.ResponseWriter = (*logWriter)(nil)

var _ http.Flusher = (*logWriter)(nil)

// Write implements http.ResponseWriter.
func (r *logWriter) Write(p []byte) (int, error) {
	written, err := r.ResponseWriter.Write(p)
	r.bytes += written
	return written, err
}

// Note this is generally only called when sending an HTTP error, so it's
// important to set the `code` value to 200 as a default.
func (r *logWriter) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap returns the underlying http.ResponseWriter.
func (r *logWriter) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Flush implements http.Flusher.
func (r *logWriter) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

var servedKey = struct{ string }{"served"}

// served records the page a request was answered with.
type served struct {
	kind page.Kind
	ok   bool
}

// setServed records that the request in ctx is answered with the site file
// at loc.
func setServed(ctx context.Context, loc string) {
	if s, ok := ctx.Value(servedKey).(*served); ok {
		s.kind, s.ok = page.KindOf(loc)
	}
}

// NewLoggingMiddleware returns a new logging middleware. Responses for site
// files are logged with the kind of page served.
func NewLoggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		writer := &logWriter{code: http.StatusOK, ResponseWriter: w}
		logger.Debug("request",
			"method", r.Method,
			"path", r.URL,
			"addr", r.RemoteAddr)

		var s served
		next.ServeHTTP(writer, r.WithContext(context.WithValue(r.Context(), servedKey, &s)))
		elapsed := time.Since(start)
		countRequest(r.Method, writer.code)

		kv := []interface{}{
			"status", fmt.Sprintf("%d %s", writer.code, http.StatusText(writer.code)),
			"bytes", humanize.Bytes(uint64(writer.bytes)), //nolint:gosec
			"time", elapsed,
		}
		if s.ok {
			kv = append(kv, "page", s.kind)
		}
		logger.Debug("response", kv...)
	})
}
