// Package server exposes the turn loop over a small JSON HTTP API: one
// endpoint runs a conversational turn, two inspect and clear per-session
// history. Sessions live in memory and die with the process.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"aide/chat"
	"aide/config"
)

const (
	maxRequestBytes = 1 << 20
	shutdownGrace   = 5 * time.Second
)

// Server routes HTTP requests to chat sessions. Each session owns an
// independent history keyed by its ID; concurrent requests against the
// same session serialize on the session itself.
type Server struct {
	engine *chat.Engine

	mu       sync.Mutex
	sessions map[string]*chat.Session
}

// New creates a server around the given engine.
func New(engine *chat.Engine) *Server {
	return &Server{
		engine:   engine,
		sessions: make(map[string]*chat.Session),
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string      `json:"session_id"`
	Steps     []chat.Step `json:"steps"`
}

type historyResponse struct {
	SessionID string         `json:"session_id"`
	Messages  []chat.Message `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the route table for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /history", s.handleGetHistory)
	mux.HandleFunc("DELETE /history", s.handleDeleteHistory)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// Run serves the API on addr until ctx is canceled, then drains in-flight
// requests before returning. A listener failure returns immediately.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Message cannot be empty"})
		return
	}
	sess := s.session(req.SessionID)
	if config.Debug && config.DebugLog != nil {
		config.DebugLog.Printf("[Server] POST /chat session=%s message_len=%d", sess.ID, len(req.Message))
	}
	steps := s.engine.RunTurn(r.Context(), sess, req.Message, chat.Callbacks{})
	writeJSON(w, http.StatusOK, chatResponse{SessionID: sess.ID, Steps: steps})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id is required"})
		return
	}
	sess, ok := s.lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Session not found"})
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: sess.ID, Messages: sess.Snapshot()})
}

// handleDeleteHistory clears a session's history. Deleting a session
// that was never created is a no-op; the response is 204 either way.
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id is required"})
		return
	}
	if sess, ok := s.lookup(id); ok {
		sess.Clear()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session returns the session for id, creating it on first use. An empty
// id allocates a fresh session under a random ID.
func (s *Server) session(id string) *chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		sess := chat.NewSession()
		s.sessions[sess.ID] = sess
		return sess
	}
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := chat.NewSessionWithID(id)
	s.sessions[id] = sess
	return sess
}

func (s *Server) lookup(id string) (*chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		if config.Debug && config.DebugLog != nil {
			config.DebugLog.Printf("[Server] encode response: %v", err)
		}
	}
}
