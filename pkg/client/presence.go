package client

import (
	"sort"
	"strings"
	"sync"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

// PresenceIndex tracks the set of currently-online users. A user is online
// from their presence-join event until the matching presence-leave.
type PresenceIndex struct {
	mu     sync.RWMutex
	online map[string]protocol.PresenceEntry
}

// NewPresenceIndex creates an empty index.
func NewPresenceIndex() *PresenceIndex {
	return &PresenceIndex{
		online: make(map[string]protocol.PresenceEntry),
	}
}

// HandleJoin marks a user online. Joining an already-present user is
// idempotent (the newer entry wins, picking up username changes).
func (p *PresenceIndex) HandleJoin(entry protocol.PresenceEntry) {
	if entry.UserID == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[entry.UserID] = entry
}

// HandleLeave marks a user offline. Leaving an absent user is a no-op.
func (p *PresenceIndex) HandleLeave(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
}

// Online returns all online users, sorted by username.
func (p *PresenceIndex) Online() []protocol.PresenceEntry {
	return p.Filter("")
}

// Filter returns the online users whose username contains term,
// case-insensitively. An empty term returns the full set. Results are sorted
// by username for a stable listing.
func (p *PresenceIndex) Filter(term string) []protocol.PresenceEntry {
	term = strings.ToLower(term)

	p.mu.RLock()
	out := make([]protocol.PresenceEntry, 0, len(p.online))
	for _, entry := range p.online {
		if term == "" || strings.Contains(strings.ToLower(entry.Username), term) {
			out = append(out, entry)
		}
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Count returns the number of online users.
func (p *PresenceIndex) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.online)
}
