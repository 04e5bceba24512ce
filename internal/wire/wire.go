// Package wire assembles each service binary: repositories, peer
// clients, usecases, handlers and the chi router.
package wire

import (
	"net/http"

	"ev-service-center/internal/metrics"
	"ev-service-center/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// newRouter builds the base router every service shares: request
// logging, panic recovery, CORS, health and metrics endpoints.
func newRouter(logger *zap.Logger) *chi.Mux {
	metrics.Register()

	r := chi.NewRouter()
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
