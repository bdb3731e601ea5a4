package client

import (
	"context"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// Transport is the persistent push channel to the chat backend.
// This allows for mocking in tests while WSTransport implements all of it.
type Transport interface {
	// Connection management
	Connect() error
	Close()
	IsConnected() bool

	// Room scoping and sending. Join/leave are not idempotent on the
	// backend; callers must pair them.
	Join(roomID string) error
	Leave(roomID string) error
	Send(roomID, content string) error

	// Channels for receiving data
	Events() <-chan protocol.Event
	StateChanges() <-chan ConnectionStateUpdate
}

// RoomAPI lists and creates rooms.
type RoomAPI interface {
	Rooms(ctx context.Context) ([]protocol.Room, error)
	CreateRoom(ctx context.Context, draft protocol.RoomDraft) (protocol.Room, error)
}

// HistoryAPI fetches the message snapshot for one room.
type HistoryAPI interface {
	RoomMessages(ctx context.Context, roomID string) ([]protocol.Message, error)
}

// ConversationAPI lists the current user's direct conversations.
type ConversationAPI interface {
	Conversations(ctx context.Context) ([]protocol.Conversation, error)
}

// DirectChatAPI resolves a target user to their durable direct-room id.
// The backend guarantees the same pair always yields the same room.
type DirectChatAPI interface {
	StartDirectChat(ctx context.Context, userID string) (string, error)
}

// API is the full REST surface the session needs.
type API interface {
	RoomAPI
	HistoryAPI
	ConversationAPI
	DirectChatAPI
}

// RoomTransport is the subset of Transport the room controller drives.
type RoomTransport interface {
	Join(roomID string) error
	Leave(roomID string) error
}

// RoomSelector switches the active room. Implemented by
// ActiveRoomController; the resolver delegates to it.
type RoomSelector interface {
	SelectRoom(ctx context.Context, room protocol.Room) error
}

// StateStore persists the small amount of session state that survives
// restarts. Implemented by State; optional on Session.
type StateStore interface {
	LastRoomID() string
	SetLastRoomID(roomID string) error
}
