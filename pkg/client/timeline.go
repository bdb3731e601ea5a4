package client

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// MessageTimeline holds the ordered, deduplicated message sequence for
// exactly one room. Entries stay sorted ascending by CreatedAt, with ties
// broken by insertion order. A message may arrive via both the history fetch
// and the live push; the second arrival is a no-op.
type MessageTimeline struct {
	mu      sync.RWMutex
	entries []protocol.Message
	seen    map[string]struct{}
}

// NewMessageTimeline creates an empty timeline.
func NewMessageTimeline() *MessageTimeline {
	return &MessageTimeline{
		seen: make(map[string]struct{}),
	}
}

// dedupKey identifies a message for deduplication. Server-assigned ids are
// authoritative; when the id is absent the key falls back to a compound of
// sender, timestamp and content hash. The two key spaces never collide.
func dedupKey(m protocol.Message) string {
	if m.ID != "" {
		return "id:" + m.ID
	}
	sum := sha256.Sum256([]byte(m.Content))
	return fmt.Sprintf("ck:%s:%d:%x", m.SenderID, m.CreatedAt, sum[:8])
}

// Reset clears the timeline. Used on room switch.
func (t *MessageTimeline) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	t.seen = make(map[string]struct{})
}

// ApplySnapshot replaces the contents with the snapshot, sorted ascending by
// CreatedAt and deduplicated. Server order is preserved among equal
// timestamps.
func (t *MessageTimeline) ApplySnapshot(messages []protocol.Message) {
	sorted := make([]protocol.Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt < sorted[j].CreatedAt
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = t.entries[:0]
	t.seen = make(map[string]struct{})
	for _, m := range sorted {
		key := dedupKey(m)
		if _, dup := t.seen[key]; dup {
			continue
		}
		t.entries = append(t.entries, m)
		t.seen[key] = struct{}{}
	}
}

// Append inserts one message, maintaining sort order. Returns false if an
// entry with the same identity already exists.
func (t *MessageTimeline) Append(m protocol.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := dedupKey(m)
	if _, dup := t.seen[key]; dup {
		return false
	}

	// Ties go after existing entries with the same timestamp.
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].CreatedAt > m.CreatedAt
	})
	t.entries = append(t.entries, protocol.Message{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = m
	t.seen[key] = struct{}{}
	return true
}

// Entries returns a copy of the current ordered sequence.
func (t *MessageTimeline) Entries() []protocol.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]protocol.Message, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *MessageTimeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
