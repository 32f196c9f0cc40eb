package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"courthouse/internal/audit"
	courthandler "courthouse/internal/court/handler"
	"courthouse/internal/platform/health"
	"courthouse/pkg/platform/middleware/admin"
	request "courthouse/pkg/platform/middleware/request"
	"courthouse/pkg/validation"
)

// RouterDeps collects what the router mounts.
type RouterDeps struct {
	Court      *courthandler.Handler
	Audit      *audit.Handler
	Health     *health.Handler
	CourtToken string
	Logger     *slog.Logger
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	Metrics  *request.Metrics
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(deps.Logger))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(request.Latency(deps.Metrics, routePattern))

	deps.Health.Register(r)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)
		deps.Court.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(admin.RequireToken(deps.CourtToken, deps.Logger))
			deps.Court.RegisterClerk(r)
			if deps.Audit != nil {
				deps.Audit.Register(r)
			}
		})
	})

	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
