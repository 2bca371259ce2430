package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bobsby23/Team-Chat/internal/cipher"
	"github.com/bobsby23/Team-Chat/internal/event"
	"github.com/bobsby23/Team-Chat/internal/hub"
	"github.com/bobsby23/Team-Chat/internal/metrics"
	"github.com/bobsby23/Team-Chat/internal/model"
	"github.com/bobsby23/Team-Chat/internal/presence"
	"github.com/bobsby23/Team-Chat/internal/store"
)

// snapshotLimit caps how many messages a snapshot returns.
const snapshotLimit = 100

// CreateRoomOptions are the caller-supplied fields for a new room.
type CreateRoomOptions struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	ExpiresInHours  int    `json:"expiresInHours,omitempty"`
	MaxParticipants int    `json:"maxParticipants,omitempty"`
}

// Service implements the room-level chat operations.
type Service struct {
	logger   *slog.Logger
	store    store.Store
	hub      hub.Broadcaster
	presence *presence.Tracker
}

// NewService wires the collaborators together.
func NewService(st store.Store, b hub.Broadcaster, tracker *presence.Tracker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:   logger,
		store:    st,
		hub:      b,
		presence: tracker,
	}
}

// FindRoom resolves an invite code to an active room.
func (s *Service) FindRoom(ctx context.Context, code string) (model.Room, error) {
	return s.store.FindByInviteCode(ctx, code)
}

// CreateRoom stores a new room. Every room gets a generated invite code;
// private rooms additionally get a content key.
func (s *Service) CreateRoom(ctx context.Context, opts CreateRoomOptions) (model.Room, error) {
	if opts.Type != model.RoomTypePublic && opts.Type != model.RoomTypePrivate {
		return model.Room{}, fmt.Errorf("invalid room type %q", opts.Type)
	}

	code, err := cipher.NewInviteCode()
	if err != nil {
		return model.Room{}, fmt.Errorf("generate invite code: %w", err)
	}

	room := model.Room{
		Name:            opts.Name,
		Type:            opts.Type,
		InviteCode:      code,
		MaxParticipants: opts.MaxParticipants,
	}
	if room.MaxParticipants <= 0 {
		room.MaxParticipants = 50
	}
	if opts.ExpiresInHours > 0 {
		expires := time.Now().Add(time.Duration(opts.ExpiresInHours) * time.Hour)
		room.ExpiresAt = &expires
	}
	if opts.Type == model.RoomTypePrivate {
		key, err := cipher.NewRoomKey()
		if err != nil {
			return model.Room{}, fmt.Errorf("generate room key: %w", err)
		}
		room.EncryptionKey = key
	}

	created, err := s.store.CreateRoom(ctx, room)
	if err != nil {
		return model.Room{}, err
	}

	s.logger.Info("room created", "room", created.InviteCode, "type", created.Type)
	return created, nil
}

// Send stores a message and broadcasts it with the room's online list. The
// sender counts as online from this point.
func (s *Service) Send(ctx context.Context, room model.Room, sender, content string) (model.Message, error) {
	stored := content
	if room.Type == model.RoomTypePrivate && room.EncryptionKey != "" {
		stored = cipher.Seal(content, room.EncryptionKey)
	}

	msg, err := s.store.Insert(ctx, room.InviteCode, sender, stored, store.MessageTTL)
	if err != nil {
		return model.Message{}, fmt.Errorf("insert message: %w", err)
	}
	metrics.Messages.Inc()

	// Broadcast carries the revealed content.
	msg.Content = content
	online := s.presence.Touch(room.InviteCode, sender)

	res := s.hub.Broadcast(event.NewMessage(msg, online))
	s.logger.Debug("message broadcast",
		"room", room.InviteCode,
		"message_id", msg.ID,
		"sent", res.Sent,
		"failed", res.Failed,
	)

	return msg, nil
}

// ToggleReaction flips the user's membership in the emoji's reaction set.
// The last member leaving deletes the emoji key. On success the entire
// updated message is broadcast, not a delta.
func (s *Service) ToggleReaction(ctx context.Context, room model.Room, messageID, emoji, user string) (model.Message, error) {
	msg, err := s.store.Get(ctx, messageID)
	if err != nil {
		return model.Message{}, err
	}

	reactions := msg.Reactions
	if reactions == nil {
		reactions = map[string][]string{}
	}

	users := reactions[emoji]
	found := -1
	for i, u := range users {
		if u == user {
			found = i
			break
		}
	}
	if found >= 0 {
		users = append(users[:found], users[found+1:]...)
	} else {
		users = append(users, user)
	}
	if len(users) == 0 {
		delete(reactions, emoji)
	} else {
		reactions[emoji] = users
	}

	updated, err := s.store.UpdateReactions(ctx, messageID, reactions)
	if err != nil {
		return model.Message{}, err
	}

	s.reveal(room, &updated)
	s.hub.Broadcast(event.ReactionUpdate(updated))

	s.logger.Debug("reaction toggled",
		"room", room.InviteCode,
		"message_id", messageID,
		"emoji", emoji,
		"user", user,
	)
	return updated, nil
}

// Snapshot returns the room's messages and online users. Snapshots are
// replacements, which makes polling reads self-healing.
func (s *Service) Snapshot(ctx context.Context, room model.Room) (model.Snapshot, error) {
	msgs, err := s.store.List(ctx, room.InviteCode, snapshotLimit)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("list messages: %w", err)
	}
	for i := range msgs {
		s.reveal(room, &msgs[i])
	}
	if msgs == nil {
		msgs = []model.Message{}
	}

	return model.Snapshot{
		Messages:    msgs,
		OnlineUsers: s.presence.Online(room.InviteCode),
	}, nil
}

// Probe returns the room's typing and online lists, sweeping stale typing
// entries as a side effect.
func (s *Service) Probe(room string) model.Probe {
	return model.Probe{
		Typing:      s.presence.QueryTyping(room),
		OnlineUsers: s.presence.Online(room),
	}
}

// Join marks the user online and announces it.
func (s *Service) Join(room, user string) hub.Result {
	return s.presence.Join(room, user)
}

// Leave removes the user and announces it.
func (s *Service) Leave(room, user string) hub.Result {
	return s.presence.Leave(room, user)
}

// Typing refreshes the user's typing indicator and announces it.
func (s *Service) Typing(room, user string) hub.Result {
	return s.presence.MarkTyping(room, user)
}

// PurgeExpired removes messages past their TTL.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	if n > 0 {
		metrics.Purged.Add(float64(n))
		s.logger.Info("purged expired messages", "count", n)
	}
	return n, nil
}

// reveal decrypts private-room content in place, failing closed to the
// placeholder.
func (s *Service) reveal(room model.Room, msg *model.Message) {
	if room.Type == model.RoomTypePrivate && room.EncryptionKey != "" {
		msg.Content = cipher.Open(msg.Content, room.EncryptionKey)
	}
}
