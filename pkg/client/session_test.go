package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

func newTestSession(t *testing.T, api *MockAPI) (*Session, *MockTransport) {
	t.Helper()
	transport := NewMockTransport()
	self := protocol.User{ID: "u1", Username: "ana"}
	s := NewSession(self, api, transport, nil)
	s.Start()
	t.Cleanup(s.Stop)
	return s, transport
}

func selectAndWait(t *testing.T, s *Session, r protocol.Room) {
	t.Helper()
	if err := s.SelectRoom(context.Background(), r); err != nil {
		t.Fatalf("select room %s: %v", r.ID, err)
	}
	waitFor(t, func() bool { return s.Controller().State() == RoomActive }, "room to become active")
}

func TestSessionSendDelivers(t *testing.T) {
	api := NewMockAPI()
	s, transport := newTestSession(t, api)
	selectAndWait(t, s, room("r1", "general"))

	if err := s.Send("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sent := transport.Sent()
	if len(sent) != 1 || sent[0].RoomID != "r1" || sent[0].Content != "hello" {
		t.Errorf("unexpected sent messages %v", sent)
	}
}

func TestSessionSendEmptyContent(t *testing.T) {
	api := NewMockAPI()
	s, transport := newTestSession(t, api)
	selectAndWait(t, s, room("r1", "general"))

	err := s.Send("   ")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(transport.Sent()) != 0 {
		t.Error("invalid send must not reach the transport")
	}
}

func TestSessionSendWithoutRoom(t *testing.T) {
	api := NewMockAPI()
	s, transport := newTestSession(t, api)

	if err := s.Send("hello"); !errors.Is(err, ErrNoRoom) {
		t.Fatalf("expected ErrNoRoom, got %v", err)
	}
	if len(transport.Sent()) != 0 {
		t.Error("send without a room must not reach the transport")
	}
}

func TestSessionSendWhileDisconnected(t *testing.T) {
	api := NewMockAPI()
	s, transport := newTestSession(t, api)
	selectAndWait(t, s, room("r1", "general"))

	transport.SetConnected(false)
	transport.SimulateStateChange(ConnectionStateUpdate{State: StateTypeDisconnected, Err: errors.New("socket gone")})
	waitFor(t, func() bool { return !s.Connected() }, "session to notice the disconnect")

	if err := s.Send("hello"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if len(transport.Sent()) != 0 {
		t.Error("disconnected send must not reach the transport")
	}
	// The selection survives the disconnect.
	if sel, ok := s.Controller().SelectedRoom(); !ok || sel.ID != "r1" {
		t.Errorf("selection should be preserved, got %v (ok=%v)", sel.ID, ok)
	}
}

func TestSessionReconnectRejoinsRoom(t *testing.T) {
	api := NewMockAPI()
	s, transport := newTestSession(t, api)
	selectAndWait(t, s, room("r1", "general"))

	transport.SetConnected(false)
	transport.SimulateStateChange(ConnectionStateUpdate{State: StateTypeDisconnected, Err: errors.New("socket gone")})
	waitFor(t, func() bool { return !s.Connected() }, "session to notice the disconnect")

	transport.SetConnected(true)
	transport.SimulateStateChange(ConnectionStateUpdate{State: StateTypeConnected, Attempt: 1})

	waitFor(t, func() bool { return len(transport.Joined()) == 2 }, "room to be re-joined")
	if joined := transport.Joined(); joined[1] != "r1" {
		t.Errorf("expected re-join of r1, got %v", joined)
	}
	if !s.Connected() {
		t.Error("session should report connected again")
	}
}

func TestSessionAppliesMessageEvents(t *testing.T) {
	api := NewMockAPI()
	s, transport := newTestSession(t, api)
	selectAndWait(t, s, room("r1", "general"))

	transport.SimulateEvent(protocol.MessageEvent{Message: msg("m1", "r1", "juan", "hi", 100)})

	waitFor(t, func() bool { return s.Timeline().Len() == 1 }, "message to land in the timeline")
}

func TestSessionIgnoresEventsForOldRoom(t *testing.T) {
	api := NewMockAPI()
	s, transport := newTestSession(t, api)
	selectAndWait(t, s, room("r1", "general"))
	selectAndWait(t, s, room("r2", "random"))

	transport.SimulateEvent(protocol.MessageEvent{Message: msg("m1", "r1", "juan", "late", 100)})
	transport.SimulateEvent(protocol.MessageEvent{Message: msg("m2", "r2", "juan", "here", 200)})

	waitFor(t, func() bool { return s.Timeline().Len() == 1 }, "current-room message to land")
	entries := s.Timeline().Entries()
	if entries[0].ID != "m2" {
		t.Errorf("only the current room's message should land, got %v", entries)
	}
}

func TestSessionTracksPresence(t *testing.T) {
	api := NewMockAPI()
	s, transport := newTestSession(t, api)

	transport.SimulateEvent(protocol.PresenceJoinEvent{Entry: entry("u2", "juan")})
	waitFor(t, func() bool { return s.Presence().Count() == 1 }, "join to register")

	transport.SimulateEvent(protocol.PresenceLeaveEvent{UserID: "u2"})
	waitFor(t, func() bool { return s.Presence().Count() == 0 }, "leave to register")
}

func TestSessionStartDirectChatRefreshesConversations(t *testing.T) {
	api := NewMockAPI()
	api.DirectRoomIDs["u2"] = "d42"
	api.ConversationsResult = []protocol.Conversation{{PartnerUserID: "u2", RoomID: "d42"}}
	s, _ := newTestSession(t, api)

	got, err := s.StartDirectChat(context.Background(), entry("u2", "juan"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "d42" {
		t.Errorf("expected room d42, got %s", got.ID)
	}
	convs := s.Conversations().Cached()
	if len(convs) != 1 || convs[0].RoomID != "d42" {
		t.Errorf("conversation index should be refreshed, got %v", convs)
	}
}

func TestSessionOnMessageHandler(t *testing.T) {
	api := NewMockAPI()
	transport := NewMockTransport()
	self := protocol.User{ID: "u1", Username: "ana"}
	s := NewSession(self, api, transport, nil)

	var mu sync.Mutex
	var received []protocol.Message
	s.OnMessage(func(m protocol.Message) {
		mu.Lock()
		received = append(received, m)
		mu.Unlock()
	})
	s.Start()
	t.Cleanup(s.Stop)

	selectAndWait(t, s, room("r1", "general"))

	live := msg("m1", "r1", "juan", "hi", 100)
	transport.SimulateEvent(protocol.MessageEvent{Message: live})
	// Duplicates do not re-fire the handler.
	transport.SimulateEvent(protocol.MessageEvent{Message: live})
	transport.SimulateEvent(protocol.MessageEvent{Message: msg("m2", "r9", "juan", "elsewhere", 200)})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, "handler to fire once")

	mu.Lock()
	defer mu.Unlock()
	if received[0].ID != "m1" {
		t.Errorf("expected m1, got %s", received[0].ID)
	}
}

func TestSessionPersistsLastRoom(t *testing.T) {
	api := NewMockAPI()
	s, _ := newTestSession(t, api)

	store := &memoryStore{}
	s.SetStateStore(store)

	selectAndWait(t, s, room("r1", "general"))
	if store.LastRoomID() != "r1" {
		t.Errorf("expected last room r1, got %s", store.LastRoomID())
	}
}

// memoryStore is an in-memory StateStore for tests.
type memoryStore struct {
	mu     sync.Mutex
	roomID string
}

func (m *memoryStore) LastRoomID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomID
}

func (m *memoryStore) SetLastRoomID(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roomID = roomID
	return nil
}
