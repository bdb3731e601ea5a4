package client

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// Session is the top-level chat session. It owns the event loop draining the
// transport, routes events to the presence index and active-room controller,
// and exposes the user-facing operations: selecting rooms, sending messages,
// and starting direct chats.
type Session struct {
	self protocol.User

	transport     Transport
	controller    *ActiveRoomController
	presence      *PresenceIndex
	rooms         *RoomDirectory
	conversations *ConversationDirectory
	resolver      *DirectChatResolver

	store   StateStore
	logger  *log.Logger
	metrics *Metrics

	connected atomic.Bool

	mu        sync.Mutex
	onMessage func(protocol.Message)

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewSession wires a session from its API and transport. The transport is
// not connected here; the caller connects it and then calls Start.
func NewSession(self protocol.User, api API, transport Transport, logger *log.Logger) *Session {
	timeline := NewMessageTimeline()
	controller := NewActiveRoomController(transport, api, timeline, logger)

	s := &Session{
		self:          self,
		transport:     transport,
		controller:    controller,
		presence:      NewPresenceIndex(),
		rooms:         NewRoomDirectory(api, logger),
		conversations: NewConversationDirectory(api, logger),
		logger:        logger,
		stopCh:        make(chan struct{}),
	}
	s.resolver = NewDirectChatResolver(api, controller, self)
	return s
}

// SetMetrics attaches activity counters to the session and its controller.
func (s *Session) SetMetrics(m *Metrics) {
	s.metrics = m
	s.controller.SetMetrics(m)
}

// SetStateStore attaches persistent state, used to remember the last active
// room across runs.
func (s *Session) SetStateStore(store StateStore) {
	s.store = store
}

// OnMessage registers a handler invoked for every live message accepted into
// the timeline. Must be called before Start.
func (s *Session) OnMessage(fn func(protocol.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMessage = fn
}

// Start launches the event loop.
func (s *Session) Start() {
	s.connected.Store(s.transport.IsConnected())
	s.wg.Add(1)
	go s.run()
}

// Stop terminates the event loop. It does not close the transport.
func (s *Session) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Session) run() {
	defer s.wg.Done()

	events := s.transport.Events()
	states := s.transport.StateChanges()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(ev)
		case update, ok := <-states:
			if !ok {
				return
			}
			s.handleStateChange(update)
		case <-s.stopCh:
			return
		}
	}
}

func (s *Session) handleEvent(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.MessageEvent:
		s.metrics.addEventReceived(protocol.EventKindMessage)
		if s.controller.HandleMessage(e.Message) {
			s.mu.Lock()
			fn := s.onMessage
			s.mu.Unlock()
			if fn != nil {
				fn(e.Message)
			}
		}
	case protocol.PresenceJoinEvent:
		s.metrics.addEventReceived(protocol.EventKindPresenceJoin)
		s.presence.HandleJoin(e.Entry)
	case protocol.PresenceLeaveEvent:
		s.metrics.addEventReceived(protocol.EventKindPresenceLeave)
		s.presence.HandleLeave(e.UserID)
	default:
		s.logf("unhandled event kind %q", ev.Kind())
	}
}

func (s *Session) handleStateChange(update ConnectionStateUpdate) {
	switch update.State {
	case StateTypeConnected:
		s.connected.Store(true)
		s.metrics.addReconnect()
		// The backend drops room subscriptions with the socket, so the
		// current selection must be re-joined.
		if err := s.controller.Rejoin(); err != nil {
			s.logf("rejoin after reconnect: %v", err)
		}
	case StateTypeDisconnected:
		s.connected.Store(false)
		s.logf("connection lost: %v", update.Err)
	case StateTypeReconnecting:
		s.logf("reconnecting (attempt %d)", update.Attempt)
	}
}

// Send posts content to the currently selected room. Content must be
// non-empty, a room must be selected, and the connection must be up; each
// check fails fast without touching the transport.
func (s *Session) Send(content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}

	room, ok := s.controller.SelectedRoom()
	if !ok {
		return ErrNoRoom
	}

	if !s.connected.Load() {
		return ErrNotConnected
	}

	if err := s.transport.Send(room.ID, content); err != nil {
		return err
	}
	s.metrics.addMessageSent()
	return nil
}

// SelectRoom makes room the active selection and remembers it for the next
// run.
func (s *Session) SelectRoom(ctx context.Context, room protocol.Room) error {
	if err := s.controller.SelectRoom(ctx, room); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.SetLastRoomID(room.ID); err != nil {
			s.logf("persist last room: %v", err)
		}
	}
	return nil
}

// CloseRoom leaves the active room, if any.
func (s *Session) CloseRoom() {
	s.controller.CloseRoom()
}

// StartDirectChat resolves and selects the direct room with target, then
// refreshes the conversation index so the new conversation shows up.
func (s *Session) StartDirectChat(ctx context.Context, target protocol.PresenceEntry) (protocol.Room, error) {
	room, err := s.resolver.Resolve(ctx, target)
	if err != nil {
		return protocol.Room{}, err
	}
	if s.store != nil {
		if err := s.store.SetLastRoomID(room.ID); err != nil {
			s.logf("persist last room: %v", err)
		}
	}
	s.conversations.List(ctx)
	return room, nil
}

// Rooms returns the room directory.
func (s *Session) Rooms() *RoomDirectory {
	return s.rooms
}

// Conversations returns the conversation directory.
func (s *Session) Conversations() *ConversationDirectory {
	return s.conversations
}

// Presence returns the online-user index.
func (s *Session) Presence() *PresenceIndex {
	return s.presence
}

// Controller returns the active-room controller.
func (s *Session) Controller() *ActiveRoomController {
	return s.controller
}

// Timeline returns the active room's message timeline.
func (s *Session) Timeline() *MessageTimeline {
	return s.controller.Timeline()
}

// Connected reports whether the transport is currently connected.
func (s *Session) Connected() bool {
	return s.connected.Load()
}

// Self returns the user this session acts as.
func (s *Session) Self() protocol.User {
	return s.self
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
