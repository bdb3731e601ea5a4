package client

import (
	"testing"
	"time"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func msg(id, roomID, sender, content string, createdAt int64) protocol.Message {
	return protocol.Message{
		ID:             id,
		RoomID:         roomID,
		SenderID:       sender,
		SenderUsername: sender,
		Content:        content,
		CreatedAt:      createdAt,
	}
}

func room(id, name string) protocol.Room {
	return protocol.Room{ID: id, Name: name, Type: protocol.RoomPublic}
}
