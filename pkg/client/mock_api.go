package client

import (
	"context"
	"sync"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// MockAPI is a mock implementation of API for testing. History fetches can
// be gated per room so tests control when an in-flight fetch completes.
type MockAPI struct {
	mu sync.Mutex

	RoomsResult []protocol.Room
	RoomsErr    error

	CreateResult protocol.Room
	CreateErr    error
	CreateCalls  []protocol.RoomDraft

	MessagesByRoom map[string][]protocol.Message
	MessagesErr    error
	HistoryCalls   []string
	historyGates   map[string]chan struct{}

	ConversationsResult []protocol.Conversation
	ConversationsErr    error

	DirectRoomIDs map[string]string
	DirectErr     error
	DirectCalls   []string
}

// NewMockAPI creates an empty mock API.
func NewMockAPI() *MockAPI {
	return &MockAPI{
		MessagesByRoom: make(map[string][]protocol.Message),
		DirectRoomIDs:  make(map[string]string),
		historyGates:   make(map[string]chan struct{}),
	}
}

func (m *MockAPI) Rooms(ctx context.Context) ([]protocol.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RoomsErr != nil {
		return nil, m.RoomsErr
	}
	return m.RoomsResult, nil
}

func (m *MockAPI) CreateRoom(ctx context.Context, draft protocol.RoomDraft) (protocol.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, draft)
	if m.CreateErr != nil {
		return protocol.Room{}, m.CreateErr
	}
	return m.CreateResult, nil
}

func (m *MockAPI) RoomMessages(ctx context.Context, roomID string) ([]protocol.Message, error) {
	m.mu.Lock()
	m.HistoryCalls = append(m.HistoryCalls, roomID)
	gate := m.historyGates[roomID]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MessagesErr != nil {
		return nil, m.MessagesErr
	}
	return m.MessagesByRoom[roomID], nil
}

func (m *MockAPI) Conversations(ctx context.Context) ([]protocol.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConversationsErr != nil {
		return nil, m.ConversationsErr
	}
	return m.ConversationsResult, nil
}

func (m *MockAPI) StartDirectChat(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DirectCalls = append(m.DirectCalls, userID)
	if m.DirectErr != nil {
		return "", m.DirectErr
	}
	return m.DirectRoomIDs[userID], nil
}

// GateHistory makes RoomMessages for roomID block until ReleaseHistory.
func (m *MockAPI) GateHistory(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyGates[roomID] = make(chan struct{})
}

// ReleaseHistory unblocks a gated RoomMessages call for roomID.
func (m *MockAPI) ReleaseHistory(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gate, ok := m.historyGates[roomID]; ok {
		close(gate)
		delete(m.historyGates, roomID)
	}
}

// HistoryCallCount returns how many history fetches were issued for roomID.
func (m *MockAPI) HistoryCallCount(roomID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range m.HistoryCalls {
		if id == roomID {
			n++
		}
	}
	return n
}
