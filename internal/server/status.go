package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/repositories"
	"github.com/desertthunder/listensync/internal/shared"
)

const defaultRunLimit = 20

// RunStore is the read side of the sync history. Implemented by [repositories.SyncRunRepository].
type RunStore interface {
	Get(ctx context.Context, id string) (*models.SyncRun, error)
	List(ctx context.Context, filter repositories.RunFilter) ([]*models.SyncRun, error)
	Latest(ctx context.Context) ([]*models.SyncRun, error)
}

// PassStatus summarizes the most recent full sync pass.
type PassStatus struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Succeeded  int       `json:"succeeded"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	NextPassAt time.Time `json:"next_pass_at,omitzero"`
}

// StatusHandler serves health, pass status and run history as JSON.
type StatusHandler struct {
	runs   RunStore
	logger *log.Logger

	mu   sync.RWMutex
	pass *PassStatus
}

// NewStatusHandler creates a StatusHandler backed by runs.
func NewStatusHandler(runs RunStore, logger *log.Logger) *StatusHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &StatusHandler{runs: runs, logger: logger}
}

// RecordPass stores the summary served by /api/status.
func (h *StatusHandler) RecordPass(p PassStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pass = &p
}

// Routes returns the HTTP routes this handler serves.
func (h *StatusHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/health", Handler: http.HandlerFunc(h.health)},
		{Method: http.MethodGet, Path: "/api/status", Handler: http.HandlerFunc(h.status)},
		{Method: http.MethodGet, Path: "/api/runs", Handler: http.HandlerFunc(h.listRuns)},
		{Method: http.MethodGet, Path: "/api/runs/{id}", Handler: http.HandlerFunc(h.getRun)},
	}
}

func (h *StatusHandler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StatusHandler) status(w http.ResponseWriter, r *http.Request) {
	latest, err := h.runs.Latest(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.mu.RLock()
	pass := h.pass
	h.mu.RUnlock()

	h.writeJSON(w, http.StatusOK, struct {
		LastPass  *PassStatus       `json:"last_pass"`
		Playlists []*models.SyncRun `json:"playlists"`
	}{LastPass: pass, Playlists: nonNil(latest)})
}

func (h *StatusHandler) listRuns(w http.ResponseWriter, r *http.Request) {
	filter := repositories.RunFilter{
		Playlist: r.URL.Query().Get("playlist"),
		State:    r.URL.Query().Get("state"),
		Limit:    defaultRunLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	runs, err := h.runs.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(runs))
}

func (h *StatusHandler) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, shared.ErrRunNotFound) {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

func (h *StatusHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		h.logger.Error("failed to encode response", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (h *StatusHandler) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "err", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func nonNil(runs []*models.SyncRun) []*models.SyncRun {
	if runs == nil {
		return []*models.SyncRun{}
	}
	return runs
}
