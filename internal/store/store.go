package store

import (
	"context"
	"errors"
	"time"

	"github.com/bobsby23/Team-Chat/internal/model"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotFound reports an unknown message id or invite code.
	ErrNotFound = errors.New("store: not found")

	// ErrRoomExpired reports a room past its expiry.
	ErrRoomExpired = errors.New("store: room expired")

	// ErrCodeExists reports an invite-code collision on room creation.
	ErrCodeExists = errors.New("store: invite code already exists")
)

// MessageTTL is the default message lifetime.
const MessageTTL = 24 * time.Hour

// MessageStore holds chat messages and their reaction state.
type MessageStore interface {
	// List returns up to limit non-expired messages for a room in
	// chronological order. limit <= 0 means no limit.
	List(ctx context.Context, room string, limit int) ([]model.Message, error)

	// Insert stores a new message with the given TTL and returns it.
	Insert(ctx context.Context, room, sender, content string, ttl time.Duration) (model.Message, error)

	// Get returns a message by id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Message, error)

	// UpdateReactions replaces a message's reaction map and returns the
	// updated message, or ErrNotFound.
	UpdateReactions(ctx context.Context, id string, reactions map[string][]string) (model.Message, error)

	// DeleteExpired removes messages whose expiry is at or before the
	// given instant and returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// RoomStore holds chat rooms addressable by invite code.
type RoomStore interface {
	// CreateRoom stores a new room. ErrCodeExists on invite collision.
	CreateRoom(ctx context.Context, room model.Room) (model.Room, error)

	// FindByInviteCode returns an active room, ErrNotFound for unknown
	// codes, or ErrRoomExpired for rooms past their expiry.
	FindByInviteCode(ctx context.Context, code string) (model.Room, error)
}

// Store combines both collaborator interfaces behind one backend.
type Store interface {
	MessageStore
	RoomStore

	// Close releases backend resources.
	Close()
}
