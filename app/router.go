package app

import (
	"net/http"

	tripdomain "github.com/Black-And-White-Club/tripscore/app/modules/trip/domain"
	triphandlers "github.com/Black-And-White-Club/tripscore/app/modules/trip/infrastructure/handlers"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/config"
	"github.com/Black-And-White-Club/tripscore/internal/httpx"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// newHTTPRouter builds the root router with the shared middleware, health,
// metrics and trip endpoints. Modules mount their own routes on it.
func newHTTPRouter(cfg *config.Config, obs observability.Observability, calendar *competition.Calendar) chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		httpx.CorrelationID,
		middleware.Recoverer,
		httpx.CORS(cfg.HTTP.AllowedOrigins),
	)
	if cfg.HTTP.RateLimit > 0 {
		r.Use(httpx.RateLimit(httpx.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if obs.Registry != nil && cfg.MetricsEnabled() {
		r.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))
	}

	trip := triphandlers.NewTripHandlers(tripdomain.NewInfo(cfg.Trip, calendar))
	r.Get("/api/trip", trip.HandleGetTrip)
	return r
}
