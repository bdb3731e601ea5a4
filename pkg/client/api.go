package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// APIClient talks to the chat REST endpoints: room directory, message
// history, conversations, and direct-chat resolution. It implements API.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *log.Logger
	metrics *Metrics
}

// NewAPIClient creates a client for the REST API rooted at baseURL.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetLogger sets a logger for request failures.
func (c *APIClient) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// SetMetrics attaches fetch-error counters. Safe to leave unset.
func (c *APIClient) SetMetrics(m *Metrics) {
	c.metrics = m
}

// Rooms fetches the joinable room directory.
func (c *APIClient) Rooms(ctx context.Context) ([]protocol.Room, error) {
	var resp struct {
		Rooms []protocol.Room `json:"rooms"`
	}
	if err := c.get(ctx, "/rooms", &resp); err != nil {
		return nil, &FetchError{Op: "list rooms", Err: err}
	}
	return resp.Rooms, nil
}

// RoomMessages fetches the full message history of one room.
func (c *APIClient) RoomMessages(ctx context.Context, roomID string) ([]protocol.Message, error) {
	var messages []protocol.Message
	path := "/rooms/" + url.PathEscape(roomID) + "/messages"
	if err := c.get(ctx, path, &messages); err != nil {
		return nil, &FetchError{Op: "fetch history", Err: err}
	}
	return messages, nil
}

// CreateRoom creates a room from the draft and returns the stored room.
func (c *APIClient) CreateRoom(ctx context.Context, draft protocol.RoomDraft) (protocol.Room, error) {
	var room protocol.Room
	if err := c.post(ctx, "/rooms", draft, &room); err != nil {
		return protocol.Room{}, &FetchError{Op: "create room", Err: err}
	}
	return room, nil
}

// Conversations fetches the current user's direct conversation index.
func (c *APIClient) Conversations(ctx context.Context) ([]protocol.Conversation, error) {
	var convs []protocol.Conversation
	if err := c.get(ctx, "/conversations", &convs); err != nil {
		return nil, &FetchError{Op: "list conversations", Err: err}
	}
	return convs, nil
}

// StartDirectChat resolves the direct room shared with userID, creating it on
// first contact. The call is idempotent on the backend.
func (c *APIClient) StartDirectChat(ctx context.Context, userID string) (string, error) {
	var resp struct {
		RoomID string `json:"roomId"`
	}
	path := "/users/" + url.PathEscape(userID) + "/chat"
	if err := c.post(ctx, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.RoomID, nil
}

func (c *APIClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *APIClient) post(ctx context.Context, path string, body, out interface{}) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *APIClient) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.addFetchError()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.metrics.addFetchError()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.addFetchError()
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
