package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Billy-Davies-2/team-draft/internal/service"
)

// Checker reports the health of one dependency
type Checker func(ctx context.Context) error

// Health serves the detailed health and Kubernetes probe endpoints
type Health struct {
	svc    *service.Service
	checks map[string]Checker
}

// NewHealth creates health handlers. Extra checks are reported by name on
// /api/health but do not gate readiness.
func NewHealth(svc *service.Service, checks map[string]Checker) *Health {
	return &Health{svc: svc, checks: checks}
}

// Status reports every dependency
func (h *Health) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := h.svc.Ready(ctx); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
		checks["service"] = map[string]any{"status": "unhealthy", "error": err.Error()}
	} else {
		checks["service"] = map[string]any{"status": "healthy"}
	}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = "degraded"
			checks[name] = map[string]any{"status": "unhealthy", "error": err.Error()}
			continue
		}
		checks[name] = map[string]any{"status": "healthy"}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// Liveness handles Kubernetes liveness probes. It does not check
// dependencies.
func (h *Health) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// Readiness handles Kubernetes readiness probes
func (h *Health) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.svc.Ready(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "not_ready",
			"reason":    err.Error(),
			"timestamp": time.Now().Unix(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
