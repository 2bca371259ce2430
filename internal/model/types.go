package model

import "time"

// Room types.
const (
	RoomTypePublic  = "public"
	RoomTypePrivate = "private"
)

// PublicRoomCode is the invite code of the default public room.
const PublicRoomCode = "public"

// Message is a chat message with its reaction state.
//
// Reactions maps an emoji to the set of usernames that reacted with it.
// A key exists only while its user set is non-empty.
type Message struct {
	ID        string              `json:"id"`
	Sender    string              `json:"sender"`
	Content   string              `json:"content"`
	Timestamp time.Time           `json:"timestamp"`
	ExpiresAt time.Time           `json:"expiresAt"`
	Reactions map[string][]string `json:"reactions"`
}

// Expired reports whether the message TTL has elapsed at the given time.
func (m *Message) Expired(now time.Time) bool {
	return !m.ExpiresAt.After(now)
}

// Clone returns a deep copy, so stores can hand out messages without
// sharing the reaction map with callers.
func (m *Message) Clone() Message {
	out := *m
	if m.Reactions != nil {
		out.Reactions = make(map[string][]string, len(m.Reactions))
		for emoji, users := range m.Reactions {
			out.Reactions[emoji] = append([]string(nil), users...)
		}
	}
	return out
}

// Room is a chat room reachable by invite code.
//
// Private rooms carry a hex-encoded content key; the key never appears in
// event payloads or snapshot responses.
type Room struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	InviteCode      string     `json:"inviteCode"`
	EncryptionKey   string     `json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	MaxParticipants int        `json:"maxParticipants"`
	IsActive        bool       `json:"isActive"`
}

// Expired reports whether the room's optional expiry has elapsed.
func (r *Room) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// Snapshot is the full-state response used by the initial load and the
// polling fallback. It is a replacement, not a delta.
type Snapshot struct {
	Messages    []Message `json:"messages"`
	OnlineUsers []string  `json:"onlineUsers"`
}

// Probe is the lightweight presence/typing response polled between
// snapshots.
type Probe struct {
	Typing      []string `json:"typing"`
	OnlineUsers []string `json:"onlineUsers"`
}
