package web

import (
	"context"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var requestCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "soft_pages",
	Subsystem: "preview",
	Name:      "requests_total",
	Help:      "The total number of preview requests",
}, []string{"method", "code"})

// MetricsController registers the Prometheus metrics route.
func MetricsController(_ context.Context, r *mux.Router) {
	r.Handle("/metrics", promhttp.Handler())
}

func countRequest(method string, code int) {
	requestCounter.WithLabelValues(method, strconv.Itoa(code)).Inc()
}
