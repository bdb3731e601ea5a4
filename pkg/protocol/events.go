package protocol

import (
	"encoding/json"
	"fmt"
)

// Event kind strings on the wire.
const (
	EventKindMessage       = "message"
	EventKindPresenceJoin  = "presence-join"
	EventKindPresenceLeave = "presence-leave"
)

// Event is one live notification pushed by the backend. Each kind carries its
// own strongly-typed payload.
type Event interface {
	// Kind returns the wire name of the event.
	Kind() string
}

// MessageEvent delivers a new chat message scoped to a joined room.
type MessageEvent struct {
	Message Message
}

func (MessageEvent) Kind() string { return EventKindMessage }

// PresenceJoinEvent announces a user coming online.
type PresenceJoinEvent struct {
	Entry PresenceEntry
}

func (PresenceJoinEvent) Kind() string { return EventKindPresenceJoin }

// PresenceLeaveEvent announces a user going offline.
type PresenceLeaveEvent struct {
	UserID string
}

func (PresenceLeaveEvent) Kind() string { return EventKindPresenceLeave }

// eventEnvelope mirrors the {"type": ...} JSON the backend emits.
type eventEnvelope struct {
	Type    string         `json:"type"`
	Message *Message       `json:"message,omitempty"`
	Entry   *PresenceEntry `json:"entry,omitempty"`
	UserID  string         `json:"userId,omitempty"`
}

// DecodeEvent parses one wire event. Unknown event kinds are an error so the
// transport can log and skip them.
func DecodeEvent(data []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	switch env.Type {
	case EventKindMessage:
		if env.Message == nil {
			return nil, fmt.Errorf("message event missing message payload")
		}
		return MessageEvent{Message: *env.Message}, nil
	case EventKindPresenceJoin:
		if env.Entry == nil {
			return nil, fmt.Errorf("presence-join event missing entry payload")
		}
		return PresenceJoinEvent{Entry: *env.Entry}, nil
	case EventKindPresenceLeave:
		userID := env.UserID
		if userID == "" && env.Entry != nil {
			// Some backend versions send the full entry on leave.
			userID = env.Entry.UserID
		}
		if userID == "" {
			return nil, fmt.Errorf("presence-leave event missing user id")
		}
		return PresenceLeaveEvent{UserID: userID}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

// EncodeEvent serializes an event back to its wire form. Used by tests and
// tooling that simulate the backend.
func EncodeEvent(ev Event) ([]byte, error) {
	env := eventEnvelope{Type: ev.Kind()}
	switch e := ev.(type) {
	case MessageEvent:
		msg := e.Message
		env.Message = &msg
	case PresenceJoinEvent:
		entry := e.Entry
		env.Entry = &entry
	case PresenceLeaveEvent:
		env.UserID = e.UserID
	default:
		return nil, fmt.Errorf("unsupported event type %T", ev)
	}
	return json.Marshal(env)
}
