package client

import (
	"context"
	"errors"
	"testing"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

func newTestResolver(api *MockAPI) (*DirectChatResolver, *ActiveRoomController) {
	controller := NewActiveRoomController(NewMockTransport(), api, NewMessageTimeline(), nil)
	self := protocol.User{ID: "u1", Username: "ana"}
	return NewDirectChatResolver(api, controller, self), controller
}

func TestResolverBuildsDirectRoom(t *testing.T) {
	api := NewMockAPI()
	api.DirectRoomIDs["u2"] = "d42"
	resolver, controller := newTestResolver(api)

	got, err := resolver.Resolve(context.Background(), entry("u2", "juan"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != "d42" {
		t.Errorf("expected room d42, got %s", got.ID)
	}
	if got.Type != protocol.RoomDirect {
		t.Errorf("expected direct room type, got %v", got.Type)
	}
	if got.Name != "Chat with juan" {
		t.Errorf("unexpected room name %q", got.Name)
	}
	if len(got.ParticipantIDs) != 2 || got.ParticipantIDs[0] != "u1" || got.ParticipantIDs[1] != "u2" {
		t.Errorf("unexpected participants %v", got.ParticipantIDs)
	}
	if sel, ok := controller.SelectedRoom(); !ok || sel.ID != "d42" {
		t.Errorf("direct room should be selected, got %v (ok=%v)", sel.ID, ok)
	}
}

func TestResolverIdempotentTarget(t *testing.T) {
	api := NewMockAPI()
	api.DirectRoomIDs["u2"] = "d42"
	resolver, _ := newTestResolver(api)

	first, err := resolver.Resolve(context.Background(), entry("u2", "juan"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := resolver.Resolve(context.Background(), entry("u2", "juan"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("same target should resolve to the same room: %s vs %s", first.ID, second.ID)
	}
}

func TestResolverEmptyTarget(t *testing.T) {
	api := NewMockAPI()
	resolver, controller := newTestResolver(api)

	_, err := resolver.Resolve(context.Background(), entry("  ", "ghost"))
	var rerr *ResolveError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ResolveError, got %v", err)
	}
	if len(api.DirectCalls) != 0 {
		t.Error("empty target must not reach the backend")
	}
	if controller.State() != RoomIdle {
		t.Errorf("selection must be untouched, got %v", controller.State())
	}
}

func TestResolverAPIFailureLeavesStateUntouched(t *testing.T) {
	api := NewMockAPI()
	api.DirectErr = errors.New("backend down")
	resolver, controller := newTestResolver(api)

	_, err := resolver.Resolve(context.Background(), entry("u2", "juan"))
	var rerr *ResolveError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ResolveError, got %v", err)
	}
	if rerr.TargetID != "u2" {
		t.Errorf("expected target u2 in error, got %s", rerr.TargetID)
	}
	if controller.State() != RoomIdle {
		t.Errorf("selection must be untouched, got %v", controller.State())
	}
}
