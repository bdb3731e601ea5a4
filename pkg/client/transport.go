package client

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// ConnectionStateType represents the transport connectivity status.
type ConnectionStateType int

const (
	StateTypeConnected ConnectionStateType = iota
	StateTypeDisconnected
	StateTypeReconnecting
)

// ConnectionStateUpdate represents a connection state change.
type ConnectionStateUpdate struct {
	State   ConnectionStateType
	Attempt int
	Err     error
}

// WSTransport is the websocket implementation of Transport. Incoming frames
// are decoded into protocol events and fanned out on Events; connectivity
// transitions are reported on StateChanges. Lost connections are retried
// with exponential backoff unless auto-reconnect is disabled.
type WSTransport struct {
	url    string
	token  string
	dialer *websocket.Dialer

	mu           sync.RWMutex
	conn         *websocket.Conn
	connected    bool
	reconnecting bool
	closed       bool

	events      chan protocol.Event
	outgoing    chan []byte
	stateChange chan ConnectionStateUpdate

	autoReconnect     bool
	reconnectDelay    time.Duration
	maxReconnectDelay time.Duration
	pingInterval      time.Duration

	logger *log.Logger

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewWSTransport creates a transport for the given websocket URL. The token,
// if non-empty, is sent as a bearer Authorization header on dial.
func NewWSTransport(url, token string) *WSTransport {
	return &WSTransport{
		url:               url,
		token:             token,
		dialer:            &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		events:            make(chan protocol.Event, 100),
		outgoing:          make(chan []byte, 100),
		stateChange:       make(chan ConnectionStateUpdate, 10),
		autoReconnect:     true,
		reconnectDelay:    1 * time.Second,
		maxReconnectDelay: 30 * time.Second,
		pingInterval:      30 * time.Second,
		shutdown:          make(chan struct{}),
	}
}

// SetLogger sets a logger for debugging connection events.
func (t *WSTransport) SetLogger(logger *log.Logger) {
	t.logger = logger
}

// SetReconnectDelay overrides the reconnect backoff bounds.
func (t *WSTransport) SetReconnectDelay(initial, max time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if initial > 0 {
		t.reconnectDelay = initial
	}
	if max > 0 {
		t.maxReconnectDelay = max
	}
}

// DisableAutoReconnect disables automatic reconnection on connection loss.
func (t *WSTransport) DisableAutoReconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.autoReconnect = false
}

func (t *WSTransport) logf(format string, args ...interface{}) {
	if t.logger != nil {
		t.logger.Printf(format, args...)
	}
}

// Connect establishes the websocket connection and starts the read and
// write loops.
func (t *WSTransport) Connect() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport closed")
	}
	if t.connected {
		t.mu.Unlock()
		return fmt.Errorf("already connected")
	}
	t.mu.Unlock()

	t.logf("connecting to %s...", t.url)

	header := http.Header{}
	if t.token != "" {
		header.Set("Authorization", "Bearer "+t.token)
	}

	conn, _, err := t.dialer.Dial(t.url, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.url, err)
	}

	// done is closed when this particular connection dies, so the write
	// loop doesn't outlive it.
	done := make(chan struct{})

	t.mu.Lock()
	t.conn = conn
	t.connected = true
	t.mu.Unlock()

	t.logf("connected to %s", t.url)

	t.wg.Add(2)
	go t.readLoop(conn, done)
	go t.writeLoop(conn, done)

	return nil
}

// Disconnect closes the current connection without shutting the transport
// down. No disconnected state update is emitted for a requested disconnect.
func (t *WSTransport) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return
	}
	t.logf("disconnecting from %s", t.url)
	t.connected = false
	if t.conn != nil {
		t.conn.Close()
	}
}

// Close shuts down the transport permanently.
func (t *WSTransport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	close(t.shutdown)
	t.Disconnect()
	t.wg.Wait()
	close(t.events)
	close(t.stateChange)
	t.logf("transport closed")
}

// IsConnected returns whether the connection is active.
func (t *WSTransport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

// Events returns the channel of decoded live events.
func (t *WSTransport) Events() <-chan protocol.Event {
	return t.events
}

// StateChanges returns the channel of connection state updates.
func (t *WSTransport) StateChanges() <-chan ConnectionStateUpdate {
	return t.stateChange
}

// Join subscribes to a room's live events.
func (t *WSTransport) Join(roomID string) error {
	return t.sendCommand(protocol.JoinRoom(roomID))
}

// Leave unsubscribes from a room's live events.
func (t *WSTransport) Leave(roomID string) error {
	return t.sendCommand(protocol.LeaveRoom(roomID))
}

// Send posts content to a room. Fire-and-forget: the backend returns no
// acknowledgment for sends.
func (t *WSTransport) Send(roomID, content string) error {
	return t.sendCommand(protocol.SendMessage(roomID, content))
}

func (t *WSTransport) sendCommand(cmd protocol.Command) error {
	if !t.IsConnected() {
		return ErrNotConnected
	}

	data, err := cmd.Encode()
	if err != nil {
		return err
	}

	select {
	case t.outgoing <- data:
		return nil
	case <-t.shutdown:
		return fmt.Errorf("transport closed")
	default:
		return fmt.Errorf("outgoing queue full")
	}
}

// readLoop reads and decodes frames from one connection.
func (t *WSTransport) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer t.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.handleDisconnect(conn, done, err)
			return
		}

		ev, err := protocol.DecodeEvent(data)
		if err != nil {
			t.logf("skipping undecodable event: %v", err)
			continue
		}

		select {
		case t.events <- ev:
		case <-t.shutdown:
			return
		}
	}
}

// writeLoop serializes writes to one connection and sends keepalive pings.
func (t *WSTransport) writeLoop(conn *websocket.Conn, done chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-t.outgoing:
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				t.logf("write error: %v", err)
				t.handleDisconnect(conn, done, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.logf("ping error: %v", err)
				t.handleDisconnect(conn, done, err)
				return
			}
		case <-done:
			return
		case <-t.shutdown:
			return
		}
	}
}

// handleDisconnect tears down one connection. Both loops report here; only
// the first reporter for a given connection acts.
func (t *WSTransport) handleDisconnect(conn *websocket.Conn, done chan struct{}, err error) {
	t.mu.Lock()
	if t.conn != conn {
		t.mu.Unlock()
		return
	}
	wasConnected := t.connected
	t.conn = nil
	t.connected = false
	closed := t.closed
	autoReconnect := t.autoReconnect
	t.mu.Unlock()

	conn.Close()
	close(done)

	if !wasConnected || closed {
		return
	}

	t.logf("disconnected from %s: %v", t.url, err)

	select {
	case t.stateChange <- ConnectionStateUpdate{State: StateTypeDisconnected, Err: err}:
	default:
	}

	if autoReconnect {
		go t.reconnectLoop()
	}
}

// reconnectLoop retries Connect with exponential backoff until it succeeds
// or the transport shuts down.
func (t *WSTransport) reconnectLoop() {
	t.mu.Lock()
	if t.reconnecting {
		t.mu.Unlock()
		return
	}
	t.reconnecting = true
	delay := t.reconnectDelay
	maxDelay := t.maxReconnectDelay
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.reconnecting = false
		t.mu.Unlock()
	}()

	attempt := 1
	for {
		select {
		case <-t.shutdown:
			return
		case <-time.After(delay):
			t.logf("reconnect attempt %d to %s", attempt, t.url)

			select {
			case t.stateChange <- ConnectionStateUpdate{State: StateTypeReconnecting, Attempt: attempt}:
			default:
			}

			if err := t.Connect(); err != nil {
				t.logf("reconnect attempt %d failed: %v", attempt, err)
				delay *= 2
				if delay > maxDelay {
					delay = maxDelay
				}
				attempt++
				continue
			}

			t.logf("reconnected after %d attempt(s)", attempt)

			select {
			case t.stateChange <- ConnectionStateUpdate{State: StateTypeConnected, Attempt: attempt}:
			default:
			}
			return
		}
	}
}
