package client

import (
	"context"
	"errors"
	"strings"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// DirectChatResolver maps a (self, target-user) pair to its durable direct
// room and hands the result to the room selector. The backend guarantees
// idempotency: resolving the same pair twice yields the same room id.
type DirectChatResolver struct {
	api      DirectChatAPI
	selector RoomSelector
	self     protocol.User
}

// NewDirectChatResolver creates a resolver acting on behalf of self.
func NewDirectChatResolver(api DirectChatAPI, selector RoomSelector, self protocol.User) *DirectChatResolver {
	return &DirectChatResolver{api: api, selector: selector, self: self}
}

// Resolve obtains the direct room for target, builds its synthetic
// descriptor, and selects it. On a ResolveError no state has been mutated; a
// JoinError from the selector propagates unchanged.
func (r *DirectChatResolver) Resolve(ctx context.Context, target protocol.PresenceEntry) (protocol.Room, error) {
	if strings.TrimSpace(target.UserID) == "" {
		return protocol.Room{}, &ResolveError{TargetID: target.UserID, Err: errors.New("empty target user id")}
	}

	roomID, err := r.api.StartDirectChat(ctx, target.UserID)
	if err != nil {
		return protocol.Room{}, &ResolveError{TargetID: target.UserID, Err: err}
	}

	room := protocol.Room{
		ID:             roomID,
		Name:           "Chat with " + target.Username,
		Type:           protocol.RoomDirect,
		ParticipantIDs: []string{r.self.ID, target.UserID},
	}

	if err := r.selector.SelectRoom(ctx, room); err != nil {
		return protocol.Room{}, err
	}
	return room, nil
}
