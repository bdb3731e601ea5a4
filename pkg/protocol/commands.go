package protocol

import (
	"encoding/json"
	"fmt"
)

// Command type strings on the wire (client → server).
const (
	CommandKindJoin  = "join-room"
	CommandKindLeave = "leave-room"
	CommandKindSend  = "send-message"
)

// Command is one outgoing request on the push channel. Join and leave scope
// the live-event stream to a room; send is fire-and-forget.
type Command struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId"`
	Content string `json:"content,omitempty"`
}

// JoinRoom builds the command that subscribes to a room's live events.
func JoinRoom(roomID string) Command {
	return Command{Type: CommandKindJoin, RoomID: roomID}
}

// LeaveRoom builds the command that unsubscribes from a room's live events.
func LeaveRoom(roomID string) Command {
	return Command{Type: CommandKindLeave, RoomID: roomID}
}

// SendMessage builds the command that posts content to a room.
func SendMessage(roomID, content string) Command {
	return Command{Type: CommandKindSend, RoomID: roomID, Content: content}
}

// Encode serializes the command to its wire form.
func (c Command) Encode() ([]byte, error) {
	switch c.Type {
	case CommandKindJoin, CommandKindLeave, CommandKindSend:
	default:
		return nil, fmt.Errorf("unknown command type %q", c.Type)
	}
	if c.RoomID == "" {
		return nil, fmt.Errorf("command %s missing room id", c.Type)
	}
	return json.Marshal(c)
}

// DecodeCommand parses one wire command. Used by tests and tooling that
// simulate the backend.
func DecodeCommand(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	switch c.Type {
	case CommandKindJoin, CommandKindLeave, CommandKindSend:
		return c, nil
	default:
		return Command{}, fmt.Errorf("unknown command type %q", c.Type)
	}
}
