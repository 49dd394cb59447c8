package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Billy-Davies-2/team-draft/internal/dal"
	"github.com/Billy-Davies-2/team-draft/internal/draft"
	"github.com/Billy-Davies-2/team-draft/internal/logger"
	"github.com/Billy-Davies-2/team-draft/internal/models"
	"github.com/Billy-Davies-2/team-draft/internal/pubsub"
	"github.com/Billy-Davies-2/team-draft/internal/service"
)

const maxBodyBytes = 64 << 10

// APIHandlers contains all API handler methods
type APIHandlers struct {
	svc    *service.Service
	pubsub *pubsub.PubSub
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(svc *service.Service, ps *pubsub.PubSub) *APIHandlers {
	return &APIHandlers{
		svc:    svc,
		pubsub: ps,
	}
}

// GetEventState returns the player registry and team settings
func (h *APIHandlers) GetEventState(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.State(r.Context())
	if err != nil {
		h.fail(w, "get event state", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SetEvent switches the event being drafted
func (h *APIHandlers) SetEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	state, err := h.svc.SetEvent(r.Context(), req.Name)
	if err != nil {
		h.fail(w, "set event", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// AddPlayer adds a new player
func (h *APIHandlers) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var player models.Player
	if !decode(w, r, &player) {
		return
	}
	added, err := h.svc.AddPlayer(r.Context(), player)
	if err != nil {
		h.fail(w, "add player", err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// UpdatePlayer replaces the player named in the path
func (h *APIHandlers) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var player models.Player
	if !decode(w, r, &player) {
		return
	}
	player.ID = chi.URLParam(r, "id")
	updated, err := h.svc.UpdatePlayer(r.Context(), player)
	if err != nil {
		h.fail(w, "update player", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeletePlayer removes the player named in the path
func (h *APIHandlers) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePlayer(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete player", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// SetTeamCount changes how many teams the next draft forms
func (h *APIHandlers) SetTeamCount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if !decode(w, r, &req) {
		return
	}
	state, err := h.svc.SetTeamCount(r.Context(), req.Count)
	if err != nil {
		h.fail(w, "set team count", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// RenameTeam renames the team at the index in the path
func (h *APIHandlers) RenameTeam(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "team index must be a number")
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	state, err := h.svc.RenameTeam(r.Context(), index, req.Name)
	if err != nil {
		h.fail(w, "rename team", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// ResetRegistry clears players and stored rosters
func (h *APIHandlers) ResetRegistry(w http.ResponseWriter, r *http.Request) {
	logger.Info("Resetting registry")
	if err := h.svc.ResetRegistry(r.Context()); err != nil {
		h.fail(w, "reset registry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// StartDraft builds a draft from the current registry
func (h *APIHandlers) StartDraft(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.StartDraft(r.Context())
	if err != nil {
		h.fail(w, "start draft", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// BeginDraft puts the first player on the block
func (h *APIHandlers) BeginDraft(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Begin(r.Context())
	if err != nil {
		h.fail(w, "begin draft", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Spin starts an interactive pick. A spin requested while another is in
// flight is answered with accepted=false.
func (h *APIHandlers) Spin(w http.ResponseWriter, r *http.Request) {
	result, accepted, err := h.svc.Spin(r.Context())
	if err != nil {
		h.fail(w, "spin", err)
		return
	}
	resp := struct {
		Accepted bool              `json:"accepted"`
		Spin     *draft.SpinResult `json:"spin,omitempty"`
	}{Accepted: accepted}
	if accepted {
		resp.Spin = &result
	}
	writeJSON(w, http.StatusOK, resp)
}

// AutoFinish resolves the remaining picks at once
func (h *APIHandlers) AutoFinish(w http.ResponseWriter, r *http.Request) {
	roster, err := h.svc.AutoFinish(r.Context())
	if err != nil {
		h.fail(w, "auto-finish", err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// ResetDraft abandons the running draft
func (h *APIHandlers) ResetDraft(w http.ResponseWriter, r *http.Request) {
	h.svc.ResetDraft(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetDraftState returns the live draft view
func (h *APIHandlers) GetDraftState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.View(r.Context()))
}

// GetRoster returns the final roster
func (h *APIHandlers) GetRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.svc.Roster(r.Context())
	if err != nil {
		h.fail(w, "get roster", err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// GetAnalytics returns per-team scores recorded by the analytics store
func (h *APIHandlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	scores, err := h.svc.TeamScores(r.Context())
	if err != nil {
		h.fail(w, "get analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

// EventsSSE provides Server-Sent Events for realtime updates
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				logger.Warn("Failed to encode SSE event", "error", err, "type", event.Type)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		}
	}
}

// StatusFor maps a service error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalid),
		errors.Is(err, draft.ErrInsufficientPlayers),
		errors.Is(err, draft.ErrInvalidTeamCount),
		errors.Is(err, draft.ErrUnknownTier),
		errors.Is(err, draft.ErrDuplicatePlayer),
		errors.Is(err, dal.ErrInvalidTeamCount),
		errors.Is(err, dal.ErrInvalidTeamIndex):
		return http.StatusBadRequest
	case errors.Is(err, dal.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, draft.ErrNoDraft),
		errors.Is(err, draft.ErrDraftInProgress),
		errors.Is(err, draft.ErrDraftComplete),
		errors.Is(err, draft.ErrSpinInFlight),
		errors.Is(err, draft.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, service.ErrAnalyticsDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "op", op, "error", err)
		msg = "internal error"
	} else {
		logger.Debug("Request rejected", "op", op, "error", err, "status", status)
	}
	writeError(w, status, msg)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		logger.Debug("Failed to decode request", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
