// Package client provides an HTTP client for the habitcal server, used by the
// CLI commands.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raphaelgruber/habitcal/internal/db"
	"github.com/raphaelgruber/habitcal/internal/service"
)

// Client talks to the habitcal server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client.
// If baseURL is empty, uses HABITCAL_SERVER_URL env var or defaults to localhost:8485.
// Timeout can be configured via HABITCAL_CLIENT_TIMEOUT env var (default 2m for LLM-backed chat).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("HABITCAL_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8485"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := 2 * time.Minute
	if t := os.Getenv("HABITCAL_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// serverError is the error payload every endpoint uses.
type serverError struct {
	Error string `json:"error"`
}

// eventEnvelope wraps mutation responses.
type eventEnvelope struct {
	Success bool                  `json:"success"`
	Event   service.CalendarEvent `json:"event"`
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var se serverError
		if err := json.Unmarshal(body, &se); err == nil && se.Error != "" {
			return fmt.Errorf("server error: %s", se.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, string(body))
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// AddHabit creates a habit event.
func (c *Client) AddHabit(ctx context.Context, req service.AddHabitRequest) (service.CalendarEvent, error) {
	var env eventEnvelope
	if err := c.post(ctx, "/addHabit", req, &env); err != nil {
		return service.CalendarEvent{}, err
	}
	return env.Event, nil
}

// UpdateHabit edits a habit's display attributes.
func (c *Client) UpdateHabit(ctx context.Context, req service.UpdateHabitRequest) (service.CalendarEvent, error) {
	var env eventEnvelope
	if err := c.post(ctx, "/updateHabit", req, &env); err != nil {
		return service.CalendarEvent{}, err
	}
	return env.Event, nil
}

// RescheduleHabit moves a habit event.
func (c *Client) RescheduleHabit(ctx context.Context, req service.RescheduleHabitRequest) (service.CalendarEvent, error) {
	var env eventEnvelope
	if err := c.post(ctx, "/rescheduleHabit", req, &env); err != nil {
		return service.CalendarEvent{}, err
	}
	return env.Event, nil
}

// RemoveHabit deletes a habit event.
func (c *Client) RemoveHabit(ctx context.Context, id int64) error {
	return c.post(ctx, "/removeHabit", map[string]int64{"id": id}, nil)
}

// ListHabits returns events matching the filter.
func (c *Client) ListHabits(ctx context.Context, filter db.EventFilter) ([]service.CalendarEvent, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Priority != 0 {
		query.Set("priority", strconv.Itoa(filter.Priority))
	}
	if filter.Start != "" {
		query.Set("start", filter.Start)
	}
	if filter.End != "" {
		query.Set("end", filter.End)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}

	var events []service.CalendarEvent
	if err := c.get(ctx, "/habits", query, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Progress returns the trailing-week completion summary line.
func (c *Client) Progress(ctx context.Context) (string, error) {
	var body struct {
		Progress string `json:"progress"`
	}
	if err := c.get(ctx, "/progress", nil, &body); err != nil {
		return "", err
	}
	return body.Progress, nil
}

// Chat sends one chat message. Pass the returned session id on the next call
// to keep the conversation.
func (c *Client) Chat(ctx context.Context, message, sessionID string) (response, newSessionID string, err error) {
	var body struct {
		Response  string `json:"response"`
		SessionID string `json:"session_id"`
	}
	err = c.post(ctx, "/chat", map[string]string{
		"message":    message,
		"session_id": sessionID,
	}, &body)
	if err != nil {
		return "", "", err
	}
	return body.Response, body.SessionID, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, nil)
}

// ChatConn is a persistent chat conversation over a websocket.
type ChatConn struct {
	conn *websocket.Conn
}

// OpenChat dials the server's websocket chat endpoint. The connection holds
// one conversation session until closed.
func (c *Client) OpenChat(ctx context.Context) (*ChatConn, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws"
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	return &ChatConn{conn: conn}, nil
}

// Send submits a message and waits for the assistant's reply.
func (cc *ChatConn) Send(message string) (string, error) {
	if err := cc.conn.WriteJSON(map[string]string{"message": message}); err != nil {
		return "", fmt.Errorf("write message: %w", err)
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := cc.conn.ReadJSON(&out); err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return out.Response, nil
}

// Close ends the conversation.
func (cc *ChatConn) Close() error {
	_ = cc.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return cc.conn.Close()
}
