package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mekongmart/search-service/pkg/health"
	"github.com/mekongmart/search-service/pkg/middleware"
)

// NewRouter assembles the service's HTTP surface: health probes, metrics,
// the public search API, and the admin maintenance API.
func NewRouter(
	search *SearchHandler,
	admin *AdminHandler,
	healthHandler *health.Handler,
	serviceName string,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(middleware.Recovery(log))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.PrometheusMetrics(serviceName))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/search", func(r chi.Router) {
		r.Get("/", search.Global)
		r.Get("/products", search.Products)
		r.Get("/posts", search.Posts)
		r.Get("/users", search.Users)
		r.Get("/suggest", search.Suggest)
		r.Get("/inspect", search.Inspect)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/products", admin.IndexProduct)
			r.Delete("/{kind}/{id}", admin.RemoveDocument)
			r.Post("/reindex", admin.Reindex)
		})
	})

	return r
}
