package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobsby23/Team-Chat/internal/model"
)

// maxMessagesPerRoom caps in-memory history per room; the oldest entries are
// dropped first.
const maxMessagesPerRoom = 100

// Memory is the default in-process backend.
type Memory struct {
	mu       sync.RWMutex
	byRoom   map[string][]*model.Message
	byID     map[string]*memEntry
	rooms    map[string]model.Room // keyed by invite code
	now      func() time.Time
}

type memEntry struct {
	room string
	msg  *model.Message
}

// NewMemory returns an empty memory store pre-seeded with the default
// public room.
func NewMemory() *Memory {
	m := &Memory{
		byRoom: make(map[string][]*model.Message),
		byID:   make(map[string]*memEntry),
		rooms:  make(map[string]model.Room),
		now:    time.Now,
	}
	m.rooms[model.PublicRoomCode] = model.Room{
		ID:              uuid.NewString(),
		Name:            "Public Room",
		Type:            model.RoomTypePublic,
		InviteCode:      model.PublicRoomCode,
		CreatedAt:       m.now(),
		MaxParticipants: 50,
		IsActive:        true,
	}
	return m
}

// List returns non-expired messages for the room in insertion order.
func (m *Memory) List(ctx context.Context, room string, limit int) ([]model.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	msgs := m.byRoom[room]
	out := make([]model.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Expired(now) {
			continue
		}
		out = append(out, msg.Clone())
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Insert stores a new message and drops the oldest once the room cap is hit.
func (m *Memory) Insert(ctx context.Context, room, sender, content string, ttl time.Duration) (model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	msg := &model.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Content:   content,
		Timestamp: now,
		ExpiresAt: now.Add(ttl),
		Reactions: map[string][]string{},
	}

	m.byRoom[room] = append(m.byRoom[room], msg)
	m.byID[msg.ID] = &memEntry{room: room, msg: msg}

	if over := len(m.byRoom[room]) - maxMessagesPerRoom; over > 0 {
		for _, dropped := range m.byRoom[room][:over] {
			delete(m.byID, dropped.ID)
		}
		m.byRoom[room] = m.byRoom[room][over:]
	}

	return msg.Clone(), nil
}

// Get returns a message by id.
func (m *Memory) Get(ctx context.Context, id string) (model.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.byID[id]
	if !ok || entry.msg.Expired(m.now()) {
		return model.Message{}, ErrNotFound
	}
	return entry.msg.Clone(), nil
}

// UpdateReactions replaces a message's reaction map.
func (m *Memory) UpdateReactions(ctx context.Context, id string, reactions map[string][]string) (model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.byID[id]
	if !ok || entry.msg.Expired(m.now()) {
		return model.Message{}, ErrNotFound
	}

	clean := make(map[string][]string, len(reactions))
	for emoji, users := range reactions {
		if len(users) == 0 {
			continue
		}
		clean[emoji] = append([]string(nil), users...)
	}
	entry.msg.Reactions = clean

	return entry.msg.Clone(), nil
}

// DeleteExpired removes messages whose expiry is at or before the instant.
func (m *Memory) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for room, msgs := range m.byRoom {
		kept := msgs[:0]
		for _, msg := range msgs {
			if msg.ExpiresAt.After(before) {
				kept = append(kept, msg)
				continue
			}
			delete(m.byID, msg.ID)
			deleted++
		}
		if len(kept) == 0 {
			delete(m.byRoom, room)
			continue
		}
		m.byRoom[room] = kept
	}
	return deleted, nil
}

// CreateRoom stores a room keyed by invite code.
func (m *Memory) CreateRoom(ctx context.Context, room model.Room) (model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[room.InviteCode]; exists {
		return model.Room{}, ErrCodeExists
	}

	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = m.now()
	}
	room.IsActive = true
	m.rooms[room.InviteCode] = room
	return room, nil
}

// FindByInviteCode looks up an active room.
func (m *Memory) FindByInviteCode(ctx context.Context, code string) (model.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[code]
	if !ok || !room.IsActive {
		return model.Room{}, ErrNotFound
	}
	if room.Expired(m.now()) {
		return model.Room{}, ErrRoomExpired
	}
	return room, nil
}

// Close is a no-op for the memory backend.
func (m *Memory) Close() {}
