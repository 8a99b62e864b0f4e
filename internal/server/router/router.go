// Package router собирает HTTP-маршруты сервера портала.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/medportal/internal/server/guard"
	"github.com/iudanet/medportal/internal/server/handlers"
	"github.com/iudanet/medportal/internal/server/metrics"
	"github.com/iudanet/medportal/internal/server/middleware"
)

// Deps — зависимости маршрутов
type Deps struct {
	Logger       *slog.Logger
	Session      *handlers.SessionHandler
	Video        *handlers.VideoHandler
	Events       *handlers.EventsHandler
	Health       *handlers.HealthHandler
	APIProxy     http.Handler
	Verifier     middleware.TokenVerifier
	Guard        *guard.Guard
	LoginLimiter *middleware.RateLimiter
	Metrics      *metrics.Collector
	Gatherer     prometheus.Gatherer
	Static       http.Handler // страницы и ассеты фронтенда
}

// New собирает http.Handler сервера портала
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware (внешний -> внутренний)
	r.Use(
		middleware.RecoveryMiddleware(d.Logger),
		middleware.RequestID(),
		middleware.LoggingWithSkip(d.Logger, []string{"/healthz", "/metrics"}),
		middleware.Metrics(d.Metrics),
	)

	r.Get("/healthz", d.Health.Health)
	r.Handle("/metrics", metrics.Handler(d.Gatherer))

	// BFF сессии: токены только в http-only cookie
	r.Route("/auth/session", func(r chi.Router) {
		r.Use(d.LoginLimiter.Middleware())
		r.Post("/", d.Session.Login)
		r.Delete("/", d.Session.Logout)
		r.Post("/verify", d.Session.VerifyOTP)
		r.Post("/refresh", d.Session.Refresh)
	})

	r.Group(func(r chi.Router) {
		// Браузер присылает токен в cookie, CLI и интеграции в заголовке
		r.Use(middleware.SessionAuth(d.Verifier, guard.AccessTokenCookie, d.Logger))
		r.Post("/api/video/upload-url/", d.Video.CreateUpload)
		r.Get("/api/session/events/", d.Events.List)
	})

	r.Handle("/api/*", d.APIProxy)

	r.With(d.Guard.Middleware()).Handle("/*", d.Static)

	return r
}
