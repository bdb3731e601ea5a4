package client

import (
	"errors"
	"fmt"
)

// ErrNotConnected rejects a send attempted while the transport is
// disconnected. The message is not queued.
var ErrNotConnected = errors.New("not connected to server")

// ErrNoRoom rejects a send attempted before any room has been selected.
var ErrNoRoom = errors.New("no room selected")

// ValidationError reports input rejected locally, before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FetchError reports a failed REST call. Callers must treat any previously
// cached result as stale, not cleared.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// JoinError reports a failed transport join. The selection stays in
// RoomJoining with an empty timeline until a new SelectRoom call retries.
type JoinError struct {
	RoomID string
	Err    error
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("join room %s: %v", e.RoomID, e.Err)
}

func (e *JoinError) Unwrap() error { return e.Err }

// ResolveError reports a failed direct-chat resolution. No room switch
// occurred and no state was mutated.
type ResolveError struct {
	TargetID string
	Err      error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve direct chat with %q: %v", e.TargetID, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
