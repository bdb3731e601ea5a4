package client

import (
	"sync"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// MockSentMessage records one Send call on a MockTransport.
type MockSentMessage struct {
	RoomID  string
	Content string
}

// MockTransport is a mock implementation of Transport for testing.
type MockTransport struct {
	mu        sync.Mutex
	connected bool

	joinErr  error
	leaveErr error
	sendErr  error

	events      chan protocol.Event
	stateChange chan ConnectionStateUpdate

	JoinedRooms  []string
	LeftRooms    []string
	SentMessages []MockSentMessage
}

// NewMockTransport creates a connected mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		connected:   true,
		events:      make(chan protocol.Event, 100),
		stateChange: make(chan ConnectionStateUpdate, 10),
	}
}

func (m *MockTransport) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *MockTransport) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockTransport) Join(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.joinErr != nil {
		return m.joinErr
	}
	m.JoinedRooms = append(m.JoinedRooms, roomID)
	return nil
}

func (m *MockTransport) Leave(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leaveErr != nil {
		return m.leaveErr
	}
	m.LeftRooms = append(m.LeftRooms, roomID)
	return nil
}

func (m *MockTransport) Send(roomID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.SentMessages = append(m.SentMessages, MockSentMessage{RoomID: roomID, Content: content})
	return nil
}

func (m *MockTransport) Events() <-chan protocol.Event {
	return m.events
}

func (m *MockTransport) StateChanges() <-chan ConnectionStateUpdate {
	return m.stateChange
}

// SetConnected sets the reported connection state without emitting an update.
func (m *MockTransport) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

// SetJoinError makes subsequent Join calls fail with err.
func (m *MockTransport) SetJoinError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joinErr = err
}

// SetLeaveError makes subsequent Leave calls fail with err.
func (m *MockTransport) SetLeaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveErr = err
}

// SetSendError makes subsequent Send calls fail with err.
func (m *MockTransport) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// Joined returns a copy of the rooms joined so far.
func (m *MockTransport) Joined() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.JoinedRooms))
	copy(out, m.JoinedRooms)
	return out
}

// Left returns a copy of the rooms left so far.
func (m *MockTransport) Left() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.LeftRooms))
	copy(out, m.LeftRooms)
	return out
}

// Sent returns a copy of the messages sent so far.
func (m *MockTransport) Sent() []MockSentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockSentMessage, len(m.SentMessages))
	copy(out, m.SentMessages)
	return out
}

// SimulateEvent delivers a live event as if received from the server.
func (m *MockTransport) SimulateEvent(ev protocol.Event) {
	m.events <- ev
}

// SimulateStateChange delivers a connection state update.
func (m *MockTransport) SimulateStateChange(update ConnectionStateUpdate) {
	m.stateChange <- update
}
