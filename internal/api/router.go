package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matrixforge/matrix-node/internal/metrics"
)

// NewRouter wires the public endpoints, each wrapped in the metrics
// middleware, plus the Prometheus exposition endpoint.
func NewRouter(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/health", metrics.Middleware(http.HandlerFunc(h.HandleHealth), "/health"))
	mux.Handle("/add", metrics.Middleware(http.HandlerFunc(h.HandleAdd), "/add"))
	mux.Handle("/gpu-info", metrics.Middleware(http.HandlerFunc(h.HandleGPUInfo), "/gpu-info"))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
