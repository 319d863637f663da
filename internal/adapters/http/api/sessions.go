package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/internal/host"
)

// SessionsHandler handles session blob requests.
type SessionsHandler struct {
	deps            Dependencies
	maxPayloadBytes int64
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps, maxPayloadBytes: defaultMaxPayloadBytes}
}

// HandleCreate handles POST /sessions requests. The new token is
// returned in the Location header; clients read its final path segment.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	snap, err := h.decodePayload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
		return
	}

	token, err := h.deps.CreateSession(r.Context(), snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}

	w.Header().Set("Location", "/sessions/"+token)
	writeJSON(w, http.StatusCreated, createResponse{Token: token})
}

// HandleSession handles PUT and GET /sessions/{token} requests.
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if token == "" || strings.Contains(token, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, token)
	case http.MethodPut:
		h.handlePut(w, r, token)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) handleGet(w http.ResponseWriter, r *http.Request, token string) {
	snap, err := h.deps.Session(r.Context(), token)
	if err != nil {
		if errors.Is(err, host.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SessionsHandler) handlePut(w http.ResponseWriter, r *http.Request, token string) {
	const op = "api.update_session"
	snap, err := h.decodePayload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
		return
	}

	if err := h.deps.UpdateSession(r.Context(), token, snap); err != nil {
		if errors.Is(err, host.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodePayload reads a bounded session document from the request body.
func (h *SessionsHandler) decodePayload(w http.ResponseWriter, r *http.Request) (model.RemoteSnapshot, error) {
	var snap model.RemoteSnapshot
	body := http.MaxBytesReader(w, r.Body, h.maxPayloadBytes)
	if err := json.NewDecoder(body).Decode(&snap); err != nil {
		return model.RemoteSnapshot{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return snap, nil
}
