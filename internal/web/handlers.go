package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/internal/storage"
)

// Handlers contains HTTP handlers for the web API
type Handlers struct {
	storage storage.Storage
	logger  *zap.Logger
}

// NewHandlers creates new API handlers
func NewHandlers(store storage.Storage, logger *zap.Logger) *Handlers {
	return &Handlers{
		storage: store,
		logger:  logger,
	}
}

// ListSessions handles GET /api/sessions/
//
// Query parameters: status (repeatable), algorithm, limit, offset.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := listOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	uow, err := h.storage.Begin(ctx)
	if err != nil {
		h.internalError(w, "Failed to begin transaction", err)
		return
	}
	defer uow.Rollback()

	sessions, err := uow.Sessions().List(ctx, opts)
	if err != nil {
		h.internalError(w, "Failed to list sessions", err)
		return
	}

	response := ListSessionsResponse{
		Sessions: make([]SessionSummary, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, convertSummary(s))
	}

	writeJSON(w, response)
}

// GetSession handles GET /api/sessions/:id
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if sessionID == "" {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}

	uow, err := h.storage.Begin(ctx)
	if err != nil {
		h.internalError(w, "Failed to begin transaction", err)
		return
	}
	defer uow.Rollback()

	session, err := uow.Sessions().Get(ctx, sessionID)
	if err != nil {
		h.lookupError(w, err)
		return
	}

	writeJSON(w, convertSession(session))
}

// GetTimeline handles GET /api/sessions/:id/timeline
func (h *Handlers) GetTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Path format: /api/sessions/{id}/timeline
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "timeline" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	sessionID := parts[0]

	uow, err := h.storage.Begin(ctx)
	if err != nil {
		h.internalError(w, "Failed to begin transaction", err)
		return
	}
	defer uow.Rollback()

	session, err := uow.Sessions().Get(ctx, sessionID)
	if err != nil {
		h.lookupError(w, err)
		return
	}
	executions, err := uow.Executions().List(ctx, sessionID)
	if err != nil {
		h.internalError(w, "Failed to list executions", err)
		return
	}

	response := TimelineResponse{
		SessionID:  session.ID,
		Status:     session.Status.String(),
		Executions: make([]ExecutionInfo, 0, len(executions)),
	}
	for _, e := range executions {
		response.Executions = append(response.Executions, convertExecution(e))
	}

	writeJSON(w, response)
}

func listOptions(r *http.Request) (storage.ListOptions, error) {
	q := r.URL.Query()
	opts := storage.ListOptions{Algorithm: q.Get("algorithm")}
	for _, raw := range q["status"] {
		status, err := domain.ParseSessionStatus(strings.ToUpper(raw))
		if err != nil {
			return opts, err
		}
		opts.Statuses = append(opts.Statuses, status)
	}
	for name, dst := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, errors.New("invalid " + name + ": " + raw)
		}
		*dst = n
	}
	return opts, nil
}

func (h *Handlers) lookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	h.internalError(w, "Failed to get session", err)
}

func (h *Handlers) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	http.Error(w, msg+": "+err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
