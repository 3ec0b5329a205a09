// Package httpapi exposes a dialog engine over HTTP. It is a thin JSON
// transport: the caller is expected to have run NLU already and posts
// normalized turn inputs.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mbruna/espalier"
	"github.com/mbruna/espalier/pkg/domain"
)

// TurnRequest is the POST /turn body. SessionID may be empty, in which
// case the server mints one and returns it with the response.
type TurnRequest struct {
	SessionID string              `json:"session_id,omitempty"`
	Input     domain.ControlInput `json:"input"`
}

// TurnResponse wraps the engine's rendering with the session id so that
// clients without one can continue the conversation.
type TurnResponse struct {
	SessionID string           `json:"session_id"`
	Response  *domain.Response `json:"response"`
}

// Server routes HTTP requests to an espalier engine.
type Server struct {
	engine *espalier.Engine
	logger *slog.Logger
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine *espalier.Engine, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Post("/turn", s.handleTurn)
	r.Get("/sessions", s.handleListSessions)
	r.Delete("/sessions/{id}", s.handleDeleteSession)
	r.Get("/healthz", s.handleHealth)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var body TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("turn: invalid request body", "err", err)
		return
	}
	if body.Input.Kind == "" {
		http.Error(w, "input.kind is required", http.StatusBadRequest)
		return
	}

	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp, err := s.engine.HandleTurn(r.Context(), sessionID, &body.Input)
	if err != nil {
		http.Error(w, fmt.Sprintf("Turn error: %v", err), http.StatusInternalServerError)
		s.logger.Error("turn failed", "session_id", sessionID, "err", err)
		return
	}

	writeJSON(w, s.logger, TurnResponse{SessionID: sessionID, Response: resp})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Sessions().List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("list sessions failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, s.logger, map[string][]string{"sessions": ids})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.Reset(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.logger.Error("delete session failed", "session_id", id, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok", "version": espalier.Version})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
