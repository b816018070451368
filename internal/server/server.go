// Package server provides the HTTP surface: habit CRUD, chat, and runtime
// stats, with lifecycle management.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/raphaelgruber/habitcal/internal/assistant"
	"github.com/raphaelgruber/habitcal/internal/db"
	"github.com/raphaelgruber/habitcal/internal/metrics"
	"github.com/raphaelgruber/habitcal/internal/service"
)

// Server wires the habit service and assistant into an HTTP server.
type Server struct {
	habits  *service.Habits
	assist  *assistant.Assistant
	metrics *metrics.Collector
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*sessionEntry

	historyLimit int
	httpServer   *http.Server
}

// New creates the server listening on addr. historyLimit bounds the
// conversation window kept per chat session.
func New(addr string, habits *service.Habits, assist *assistant.Assistant, collector *metrics.Collector, logger *slog.Logger, historyLimit int) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		habits:       habits,
		assist:       assist,
		metrics:      collector,
		logger:       logger,
		sessions:     make(map[string]*sessionEntry),
		historyLimit: historyLimit,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /addHabit", s.handleAddHabit)
	mux.HandleFunc("POST /updateHabit", s.handleUpdateHabit)
	mux.HandleFunc("POST /rescheduleHabit", s.handleRescheduleHabit)
	mux.HandleFunc("POST /removeHabit", s.handleRemoveHabit)
	mux.HandleFunc("GET /habits", s.handleListHabits)
	mux.HandleFunc("GET /progress", s.handleProgress)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /encourage", s.handleEncourage)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      LoggingMiddleware(logger)(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // Long for LLM responses
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe runs the server until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleAddHabit(w http.ResponseWriter, r *http.Request) {
	var req service.AddHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ev, err := s.habits.Add(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "event": ev})
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ev, err := s.habits.Update(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "event": ev})
}

func (s *Server) handleRescheduleHabit(w http.ResponseWriter, r *http.Request) {
	var req service.RescheduleHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ev, err := s.habits.Reschedule(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "event": ev})
}

func (s *Server) handleRemoveHabit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.habits.Remove(r.Context(), req.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := db.EventFilter{
		Category: q.Get("category"),
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Search:   q.Get("search"),
	}
	if p := q.Get("priority"); p != "" {
		priority, err := strconv.Atoi(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "priority must be an integer")
			return
		}
		filter.Priority = priority
	}

	events, err := s.habits.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	line, err := s.habits.Progress(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"progress": line})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	session := s.session(r.Context(), req.SessionID)
	reply := s.assist.HandleTurn(r.Context(), session, req.Message)
	writeJSON(w, http.StatusOK, map[string]string{
		"response":   reply,
		"session_id": session.ID,
	})
}

func (s *Server) handleEncourage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
		Context string `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := s.assist.Encourage(r.Context(), req.Message, req.Context)
	writeJSON(w, http.StatusOK, map[string]string{
		"response":  reply,
		"sentiment": assistant.AnalyzeSentiment(req.Message),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// sessionEntry tracks a session's last use so idle conversations can be
// evicted.
type sessionEntry struct {
	session  *assistant.Session
	lastSeen time.Time
}

const (
	maxSessions    = 1024
	sessionIdleTTL = 30 * time.Minute
)

// session returns the existing session for id, or a fresh one seeded from
// persisted chat history when the id is empty or unknown.
func (s *Server) session(ctx context.Context, id string) *assistant.Session {
	s.mu.Lock()
	if id != "" {
		if entry, ok := s.sessions[id]; ok {
			entry.lastSeen = time.Now()
			s.mu.Unlock()
			return entry.session
		}
	}
	s.mu.Unlock()

	// Seeding reads the store, so it happens outside the lock.
	session := s.assist.SeedSession(ctx, s.historyLimit)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictSessionsLocked(time.Now())
	s.sessions[session.ID] = &sessionEntry{session: session, lastSeen: time.Now()}
	return session
}

// evictSessionsLocked drops sessions idle past the TTL, then the least
// recently used ones until a new entry fits under maxSessions.
func (s *Server) evictSessionsLocked(now time.Time) {
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > sessionIdleTTL {
			delete(s.sessions, id)
		}
	}
	for len(s.sessions) >= maxSessions {
		var oldestID string
		var oldest time.Time
		for id, entry := range s.sessions {
			if oldestID == "" || entry.lastSeen.Before(oldest) {
				oldestID = id
				oldest = entry.lastSeen
			}
		}
		delete(s.sessions, oldestID)
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "habit not found")
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
