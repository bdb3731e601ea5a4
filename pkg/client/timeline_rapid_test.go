package client

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/AtikTF/fitchat/pkg/protocol"
)

func TestTimelineOrderedAndUnique(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tl := NewMessageTimeline()

		genMsg := rapid.Custom(func(rt *rapid.T) protocol.Message {
			return protocol.Message{
				ID:        rapid.StringMatching(`m[0-9]{1,3}`).Draw(rt, "id"),
				RoomID:    "r1",
				SenderID:  rapid.StringMatching(`u[0-9]`).Draw(rt, "sender"),
				Content:   rapid.StringN(0, 20, 20).Draw(rt, "content"),
				CreatedAt: rapid.Int64Range(0, 1000).Draw(rt, "createdAt"),
			}
		})

		ops := rapid.IntRange(1, 30).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			if rapid.Bool().Draw(rt, "snapshot") {
				tl.ApplySnapshot(rapid.SliceOfN(genMsg, 0, 10).Draw(rt, "batch"))
			} else {
				tl.Append(genMsg.Draw(rt, "msg"))
			}
		}

		entries := tl.Entries()
		seen := make(map[string]bool)
		for i, m := range entries {
			if i > 0 && entries[i-1].CreatedAt > m.CreatedAt {
				rt.Fatalf("entries out of order at %d: %d > %d", i, entries[i-1].CreatedAt, m.CreatedAt)
			}
			if m.ID != "" {
				if seen[m.ID] {
					rt.Fatalf("duplicate id %s", m.ID)
				}
				seen[m.ID] = true
			}
		}
	})
}
