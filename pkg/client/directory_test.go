package client

import (
	"context"
	"errors"
	"testing"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

func TestRoomDirectoryListCaches(t *testing.T) {
	api := NewMockAPI()
	api.RoomsResult = []protocol.Room{room("r1", "general"), room("r2", "random")}
	dir := NewRoomDirectory(api, nil)

	rooms, err := dir.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	if got := dir.Cached(); len(got) != 2 {
		t.Errorf("expected cache of 2, got %d", len(got))
	}
}

func TestRoomDirectoryFailureKeepsCache(t *testing.T) {
	api := NewMockAPI()
	api.RoomsResult = []protocol.Room{room("r1", "general")}
	dir := NewRoomDirectory(api, nil)

	if _, err := dir.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	api.RoomsErr = errors.New("backend down")
	if _, err := dir.List(context.Background()); err == nil {
		t.Fatal("expected error from failed fetch")
	}
	if got := dir.Cached(); len(got) != 1 || got[0].ID != "r1" {
		t.Errorf("cache should survive a failed fetch, got %v", got)
	}
}

func TestRoomDirectoryCreateValidatesName(t *testing.T) {
	api := NewMockAPI()
	dir := NewRoomDirectory(api, nil)

	_, err := dir.Create(context.Background(), protocol.RoomDraft{Name: "   "})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(api.CreateCalls) != 0 {
		t.Error("invalid draft must not reach the backend")
	}
}

func TestRoomDirectoryCreateInsertsIntoCache(t *testing.T) {
	api := NewMockAPI()
	api.CreateResult = room("r9", "new-room")
	dir := NewRoomDirectory(api, nil)

	created, err := dir.Create(context.Background(), protocol.RoomDraft{Name: "new-room"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "r9" {
		t.Errorf("expected r9, got %s", created.ID)
	}
	cached := dir.Cached()
	if len(cached) != 1 || cached[0].ID != "r9" {
		t.Errorf("created room should land in the cache, got %v", cached)
	}
}

func TestConversationDirectoryFailureReturnsPrevious(t *testing.T) {
	api := NewMockAPI()
	api.ConversationsResult = []protocol.Conversation{{PartnerUserID: "u2", RoomID: "d1"}}
	dir := NewConversationDirectory(api, nil)

	if got := dir.List(context.Background()); len(got) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(got))
	}

	api.ConversationsErr = errors.New("backend down")
	got := dir.List(context.Background())
	if len(got) != 1 || got[0].RoomID != "d1" {
		t.Errorf("failed refresh should return the previous list, got %v", got)
	}
}
