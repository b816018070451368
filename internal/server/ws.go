package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const wsWriteTimeout = 60 * time.Second

// wsInbound is one chat message from the browser.
type wsInbound struct {
	Message string `json:"message"`
}

// wsOutbound is the assistant's reply.
type wsOutbound struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// handleWebsocket runs a chat conversation over a single websocket
// connection. Each connection gets its own session, seeded from persisted
// history, so browser tabs resume context without sharing live state.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := s.assist.SeedSession(r.Context(), s.historyLimit)
	s.logger.Info("websocket chat opened", "session", session.ID)

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "session", session.ID, "error", err)
			}
			return
		}
		if in.Message == "" {
			continue
		}

		reply := s.assist.HandleTurn(r.Context(), session, in.Message)

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(wsOutbound{Response: reply, SessionID: session.ID}); err != nil {
			s.logger.Warn("websocket write failed", "session", session.ID, "error", err)
			return
		}
	}
}
