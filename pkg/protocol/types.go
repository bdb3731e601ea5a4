// Package protocol defines the wire types shared between the fitchat session
// core and the chat backend: REST resource shapes, the live-event stream
// pushed over the websocket, and the outgoing command envelope.
package protocol

// RoomType classifies a room.
type RoomType string

const (
	RoomPublic  RoomType = "public"
	RoomPrivate RoomType = "private"
	RoomDirect  RoomType = "direct"
)

// Room is a joinable chat room. Immutable once created, except that the
// backend may refresh the participant list.
type Room struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Type           RoomType `json:"type"`
	ParticipantIDs []string `json:"participantIds,omitempty"`
}

// RoomDraft is the client-supplied shape for creating a room.
type RoomDraft struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Type        RoomType `json:"type"`
}

// Message is one chat message. ID may be empty until the server assigns one;
// CreatedAt is Unix milliseconds and is server-assigned on both delivery
// paths (history fetch and live push).
type Message struct {
	ID             string `json:"id,omitempty"`
	RoomID         string `json:"roomId"`
	SenderID       string `json:"senderId"`
	SenderUsername string `json:"senderUsername"`
	Content        string `json:"content"`
	CreatedAt      int64  `json:"createdAt"`
}

// Conversation is a read-only summary of an existing direct relationship.
type Conversation struct {
	PartnerUserID string `json:"partnerUserId"`
	RoomID        string `json:"roomId"`
}

// PresenceEntry is one currently-online user.
type PresenceEntry struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// User is the authenticated identity, supplied by the auth layer before the
// session core activates.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
