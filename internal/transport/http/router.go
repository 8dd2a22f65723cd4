// Package httptransport assembles the public HTTP surface: routing,
// cross-cutting middleware, health and metrics endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"immersion/internal/platform/metrics"
	"immersion/internal/platform/middleware"
	"immersion/internal/search/handler"
	"immersion/pkg/platform/middleware/requestid"
	"immersion/pkg/platform/middleware/requesttime"
)

// NewRouter wires all public endpoints behind the shared middleware chain.
func NewRouter(
	searchHandler *handler.Handler,
	httpMetrics *metrics.Metrics,
	jwtSigningKey []byte,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(httpMetrics.Instrument)
	r.Use(middleware.IdentifyConsumer(jwtSigningKey, logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	searchHandler.Register(r)

	return r
}
