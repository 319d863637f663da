// Package api declares HTTP contracts and route registration helpers for
// the session blob host.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ocmu/mashup/internal/domain/model"
)

// Default request handling constants.
const (
	defaultMaxPayloadBytes = 4 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the host implementation.
type Dependencies interface {
	// CreateSession stores a new document and returns its token.
	CreateSession(ctx context.Context, snap model.RemoteSnapshot) (string, error)

	// UpdateSession overwrites an existing document wholesale.
	UpdateSession(ctx context.Context, token string, snap model.RemoteSnapshot) error

	// Session returns the stored document verbatim.
	Session(ctx context.Context, token string) (model.RemoteSnapshot, error)
}

// Server wires HTTP routes for the blob host API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxPayloadBytes caps the size of an accepted session document.
func WithMaxPayloadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.sessionsHandler.maxPayloadBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionsHandler: NewSessionsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleSession, "session"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createResponse struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
