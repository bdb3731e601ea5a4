package client

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// RoomDirectory caches the list of joinable rooms. The cache survives fetch
// failures: callers get the error and may keep showing the stale list.
type RoomDirectory struct {
	mu     sync.RWMutex
	api    RoomAPI
	cached []protocol.Room
	logger *log.Logger
}

// NewRoomDirectory creates a directory backed by api.
func NewRoomDirectory(api RoomAPI, logger *log.Logger) *RoomDirectory {
	return &RoomDirectory{api: api, logger: logger}
}

// List fetches the room directory. On failure the previous cache is kept and
// a FetchError from the API layer is returned.
func (d *RoomDirectory) List(ctx context.Context) ([]protocol.Room, error) {
	rooms, err := d.api.Rooms(ctx)
	if err != nil {
		d.logf("room list fetch failed: %v", err)
		return nil, err
	}

	d.mu.Lock()
	d.cached = rooms
	d.mu.Unlock()
	return d.Cached(), nil
}

// Cached returns the last successfully fetched room list.
func (d *RoomDirectory) Cached() []protocol.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]protocol.Room, len(d.cached))
	copy(out, d.cached)
	return out
}

// Create validates the draft locally, creates the room on the backend, and
// inserts it into the cache so it is visible even if a follow-up list fetch
// fails.
func (d *RoomDirectory) Create(ctx context.Context, draft protocol.RoomDraft) (protocol.Room, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return protocol.Room{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	room, err := d.api.CreateRoom(ctx, draft)
	if err != nil {
		return protocol.Room{}, err
	}

	d.mu.Lock()
	d.cached = append(d.cached, room)
	d.mu.Unlock()
	return room, nil
}

func (d *RoomDirectory) logf(format string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}

// ConversationDirectory caches the current user's direct conversations.
// Conversations are a convenience index, not the primary navigation source,
// so fetch failures are logged and the previous cache is returned.
type ConversationDirectory struct {
	mu     sync.RWMutex
	api    ConversationAPI
	cached []protocol.Conversation
	logger *log.Logger
}

// NewConversationDirectory creates a directory backed by api.
func NewConversationDirectory(api ConversationAPI, logger *log.Logger) *ConversationDirectory {
	return &ConversationDirectory{api: api, logger: logger}
}

// List refreshes the conversation list. Failures are non-fatal: the previous
// cache is returned and the error only logged.
func (d *ConversationDirectory) List(ctx context.Context) []protocol.Conversation {
	convs, err := d.api.Conversations(ctx)
	if err != nil {
		d.logf("conversation refresh failed: %v", err)
		return d.Cached()
	}

	d.mu.Lock()
	d.cached = convs
	d.mu.Unlock()
	return d.Cached()
}

// Cached returns the last successfully fetched conversation list.
func (d *ConversationDirectory) Cached() []protocol.Conversation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]protocol.Conversation, len(d.cached))
	copy(out, d.cached)
	return out
}

func (d *ConversationDirectory) logf(format string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}
