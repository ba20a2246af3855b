package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cartsync/internal/config"
	"github.com/noah-isme/cartsync/internal/health"
	sessionmw "github.com/noah-isme/cartsync/internal/http/middleware"
	"github.com/noah-isme/cartsync/internal/listing"
	"github.com/noah-isme/cartsync/internal/obs"
	"github.com/noah-isme/cartsync/internal/ratelimit"
	"github.com/noah-isme/cartsync/internal/security"
	"github.com/noah-isme/cartsync/internal/widget"
)

// Observability carries the collectors the router reports to. A nil
// Registry disables HTTP metrics and the /metrics endpoint.
type Observability struct {
	Registry *prometheus.Registry
	Tracing  bool
}

// NewRouter builds the HTTP handler for the widget host.
func NewRouter(cfg *config.Config, deps *Dependencies, logger zerolog.Logger, o Observability) (http.Handler, error) {
	markup, err := listing.LoadMarkup(cfg.ListingPath)
	if err != nil {
		return nil, err
	}
	if _, err := listing.ParseString(markup); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if o.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if o.Registry != nil {
		r.Use(obs.HTTPObs{Metrics: obs.NewHTTPMetrics(cfg.MetricsNamespace, nil, o.Registry)}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.SessionCookieSecure}.Middleware)

	if o.Registry != nil {
		r.Handle("/metrics", obs.MetricsHandler(o.Registry))
	}

	healthHandler := health.Handler{Store: deps.Store, StoreName: cfg.StoreDriver}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	widgetHandler := &widget.Handler{
		Store:      deps.Store,
		Locker:     deps.Locker,
		LockTTL:    cfg.LockTTL,
		StorageKey: cfg.StorageKey,
		Markup:     markup,
		Logger:     &logger,
	}
	limiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: deps.Redis, Prefix: "cartsync:rl:"},
		Config:  ratelimit.Config{Key: ratelimit.SessionOrIPKey, Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	r.Group(func(g chi.Router) {
		g.Use(cors.Handler(corsOptions(cfg)))
		g.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		g.Use(sessionmw.Session{
			CookieName: cfg.SessionCookieName,
			TTL:        cfg.SessionCookieTTL,
			Secure:     cfg.SessionCookieSecure,
		}.Middleware)
		widgetHandler.Register(g, limiter.Middleware)
	})
	return r, nil
}

// corsOptions lets configured origins call the API with the session cookie.
// Without configured origins any origin may read responses, but never with
// credentials.
func corsOptions(cfg *config.Config) cors.Options {
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		opts.AllowedOrigins = cfg.CORSAllowedOrigins
		opts.AllowCredentials = true
	}
	return opts
}
