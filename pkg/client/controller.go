package client

import (
	"context"
	"log"
	"sync"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// RoomState represents where the current room selection is in its lifecycle.
type RoomState int

const (
	RoomIdle    RoomState = iota // no room selected
	RoomLeaving                  // transient, leaving the previous room
	RoomJoining                  // join issued, history fetch in flight
	RoomActive                   // room fully live
)

func (s RoomState) String() string {
	switch s {
	case RoomIdle:
		return "idle"
	case RoomLeaving:
		return "leaving"
	case RoomJoining:
		return "joining"
	case RoomActive:
		return "active"
	default:
		return "unknown"
	}
}

// ActiveRoomController owns the single active-room slot. It coordinates
// leave/join transitions, the history fetch, and live-event application, and
// guards against stale async results with a selection epoch: every in-flight
// operation carries the epoch current when it was issued, and completions
// with an older epoch are discarded.
type ActiveRoomController struct {
	transport RoomTransport
	history   HistoryAPI
	timeline  *MessageTimeline
	logger    *log.Logger
	metrics   *Metrics

	mu    sync.Mutex
	epoch uint64
	state RoomState
	room  *protocol.Room
}

// NewActiveRoomController creates an idle controller.
func NewActiveRoomController(transport RoomTransport, history HistoryAPI, timeline *MessageTimeline, logger *log.Logger) *ActiveRoomController {
	return &ActiveRoomController{
		transport: transport,
		history:   history,
		timeline:  timeline,
		logger:    logger,
	}
}

// SetMetrics attaches activity counters. Safe to leave unset.
func (c *ActiveRoomController) SetMetrics(m *Metrics) {
	c.metrics = m
}

// SelectRoom switches the selection to room. The previous room, if any, is
// left and its pending work is superseded. Join and history fetch then run
// for the new selection; the fetch completes asynchronously and is applied
// only if no newer selection has been made in the meantime.
//
// A transport join failure returns a JoinError and leaves the selection in
// RoomJoining with an empty timeline; a new SelectRoom call is the retry.
func (c *ActiveRoomController) SelectRoom(ctx context.Context, room protocol.Room) error {
	c.mu.Lock()
	c.epoch++
	epoch := c.epoch

	if c.room != nil && c.state != RoomIdle {
		prev := c.room.ID
		c.state = RoomLeaving
		if err := c.transport.Leave(prev); err != nil {
			c.logf("leave room %s: %v", prev, err)
		}
	}

	selected := room
	c.room = &selected
	c.state = RoomJoining
	c.timeline.Reset()
	c.mu.Unlock()

	if err := c.transport.Join(room.ID); err != nil {
		return &JoinError{RoomID: room.ID, Err: err}
	}

	go c.fetchHistory(ctx, epoch, room.ID)
	return nil
}

// fetchHistory loads the room's message snapshot and applies it under the
// epoch guard.
func (c *ActiveRoomController) fetchHistory(ctx context.Context, epoch uint64, roomID string) {
	messages, err := c.history.RoomMessages(ctx, roomID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		c.logf("discarding history for room %s: selection superseded", roomID)
		c.metrics.addStaleDiscard()
		return
	}
	if err != nil {
		// Stay in RoomJoining: live events keep feeding the timeline and a
		// new SelectRoom call retries the fetch.
		c.logf("history fetch for room %s failed: %v", roomID, err)
		return
	}

	// Live messages accepted while the fetch was in flight must survive the
	// snapshot apply. Dedup makes re-appending messages the snapshot already
	// contains a no-op, so the final contents do not depend on whether the
	// snapshot or the live copy arrived first.
	live := c.timeline.Entries()
	c.timeline.ApplySnapshot(messages)
	for _, m := range live {
		c.timeline.Append(m)
	}
	c.state = RoomActive
}

// HandleMessage applies one live message to the timeline. Messages tagged
// with any room other than the current selection are dropped; duplicates of
// messages already present are no-ops. Returns whether the message was added.
func (c *ActiveRoomController) HandleMessage(msg protocol.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.room == nil || c.state == RoomIdle || msg.RoomID != c.room.ID {
		c.metrics.addDroppedEvent()
		return false
	}
	return c.timeline.Append(msg)
}

// CurrentRoom returns the fully live room, if any.
func (c *ActiveRoomController) CurrentRoom() (protocol.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == RoomActive && c.room != nil {
		return *c.room, true
	}
	return protocol.Room{}, false
}

// SelectedRoom returns the room of the current selection, whether or not its
// history has landed yet.
func (c *ActiveRoomController) SelectedRoom() (protocol.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room != nil && c.state != RoomIdle {
		return *c.room, true
	}
	return protocol.Room{}, false
}

// State returns the current lifecycle state.
func (c *ActiveRoomController) State() RoomState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CloseRoom leaves the current room and returns the controller to idle.
func (c *ActiveRoomController) CloseRoom() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.room == nil || c.state == RoomIdle {
		return
	}
	c.epoch++
	if err := c.transport.Leave(c.room.ID); err != nil {
		c.logf("leave room %s: %v", c.room.ID, err)
	}
	c.room = nil
	c.state = RoomIdle
	c.timeline.Reset()
}

// Rejoin re-issues the transport join for the current selection and refetches
// its history to backfill messages that arrived while disconnected. The
// backend does not replay subscriptions across a reconnect, so without this
// the selected room would silently stop receiving live events.
func (c *ActiveRoomController) Rejoin() error {
	c.mu.Lock()
	if c.room == nil || c.state == RoomIdle {
		c.mu.Unlock()
		return nil
	}
	roomID := c.room.ID
	epoch := c.epoch
	c.mu.Unlock()

	if err := c.transport.Join(roomID); err != nil {
		return &JoinError{RoomID: roomID, Err: err}
	}

	// The merge apply in fetchHistory keeps messages already in the timeline,
	// so the backfill only fills gaps. A room switch racing the fetch bumps
	// the epoch and discards the result.
	go c.fetchHistory(context.Background(), epoch, roomID)
	return nil
}

// Timeline returns the timeline owned by this controller.
func (c *ActiveRoomController) Timeline() *MessageTimeline {
	return c.timeline
}

func (c *ActiveRoomController) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
