package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/Billy-Davies-2/team-draft/internal/auth"
	"github.com/Billy-Davies-2/team-draft/internal/logger"
	"github.com/Billy-Davies-2/team-draft/internal/metrics"
)

// RouterOptions wires the HTTP surface
type RouterOptions struct {
	API     *APIHandlers
	Health  *Health
	Auth    auth.AuthProvider
	Metrics *metrics.Recorder
	// Limiter throttles mutating routes; nil disables throttling
	Limiter *rate.Limiter
}

// NewRouter builds the chi router for the HTTP API
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(opts.Metrics))

	r.Get("/healthz", opts.Health.Liveness)
	r.Get("/readyz", opts.Health.Readiness)
	r.Get("/api/health", opts.Health.Status)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", opts.Auth.LoginHandler)
		r.Get("/callback", opts.Auth.CallbackHandler)
		r.Get("/logout", opts.Auth.LogoutHandler)
	})

	api := opts.API
	r.Route("/api", func(r chi.Router) {
		r.Get("/event", api.GetEventState)
		r.Get("/draft/state", api.GetDraftState)
		r.Get("/draft/roster", api.GetRoster)
		r.Get("/draft/analytics", api.GetAnalytics)
		r.Get("/events", api.EventsSSE)

		r.Group(func(r chi.Router) {
			r.Use(opts.Auth.Middleware)
			r.Use(auth.RequireOrganizer)
			r.Use(rateLimit(opts.Limiter))

			r.Post("/event", api.SetEvent)
			r.Post("/event/reset", api.ResetRegistry)
			r.Post("/players", api.AddPlayer)
			r.Put("/players/{id}", api.UpdatePlayer)
			r.Delete("/players/{id}", api.DeletePlayer)
			r.Post("/teams/count", api.SetTeamCount)
			r.Put("/teams/{index}", api.RenameTeam)

			r.Post("/draft/start", api.StartDraft)
			r.Post("/draft/begin", api.BeginDraft)
			r.Post("/draft/spin", api.Spin)
			r.Post("/draft/auto", api.AutoFinish)
			r.Post("/draft/reset", api.ResetDraft)
		})
	})

	return r
}

// rateLimit rejects requests beyond the limiter's budget with 429
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs each request and feeds its latency to metrics
func requestLogger(rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			if rec != nil {
				rec.ObserveHTTP(route, r.Method, status, elapsed.Seconds())
			}
			logger.Debug("HTTP request",
				"method", r.Method,
				"route", route,
				"status", status,
				"duration_ms", elapsed.Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
