package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bobsby23/Team-Chat/internal/model"
)

// Snapshot fetches the full message list and online set for a room.
func (c *Client) Snapshot(ctx context.Context, room string) (model.Snapshot, error) {
	query := url.Values{}
	if room != "" {
		query.Set("room", room)
	}

	var snap model.Snapshot
	if err := c.get(ctx, "/api/messages", query, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

// Probe fetches the typing list and online set for a room.
func (c *Client) Probe(ctx context.Context, room string) (model.Probe, error) {
	query := url.Values{"action": {"typing"}}
	if room != "" {
		query.Set("room", room)
	}

	var probe model.Probe
	if err := c.get(ctx, "/api/messages", query, &probe); err != nil {
		return model.Probe{}, fmt.Errorf("get probe: %w", err)
	}
	return probe, nil
}

func (c *Client) presenceSignal(ctx context.Context, action, room, user string) ([]string, error) {
	query := url.Values{"action": {action}, "username": {user}}
	if room != "" {
		query.Set("room", room)
	}

	var resp struct {
		OnlineUsers []string `json:"onlineUsers"`
	}
	if err := c.get(ctx, "/api/messages", query, &resp); err != nil {
		return nil, fmt.Errorf("%s room: %w", action, err)
	}
	return resp.OnlineUsers, nil
}

// Join announces the user in the room and returns the online set.
func (c *Client) Join(ctx context.Context, room, user string) ([]string, error) {
	return c.presenceSignal(ctx, "join", room, user)
}

// Leave removes the user from the room's online set.
func (c *Client) Leave(ctx context.Context, room, user string) ([]string, error) {
	return c.presenceSignal(ctx, "leave", room, user)
}

// Typing refreshes the user's typing timestamp.
func (c *Client) Typing(ctx context.Context, room, user string) error {
	body := map[string]string{
		"room":   room,
		"action": "typing",
		"sender": user,
	}
	if err := c.post(ctx, "/api/messages", body, nil); err != nil {
		return fmt.Errorf("signal typing: %w", err)
	}
	return nil
}

// SendMessage stores and broadcasts a message, returning it with its
// server-assigned id and timestamps.
func (c *Client) SendMessage(ctx context.Context, room, sender, content string) (model.Message, error) {
	body := map[string]string{
		"room":    room,
		"sender":  sender,
		"content": content,
	}

	var resp struct {
		Message model.Message `json:"message"`
	}
	if err := c.post(ctx, "/api/messages", body, &resp); err != nil {
		return model.Message{}, fmt.Errorf("send message: %w", err)
	}
	return resp.Message, nil
}

// ToggleReaction flips the user's reaction on a message and returns the
// updated message.
func (c *Client) ToggleReaction(ctx context.Context, room, messageID, emoji, user string) (model.Message, error) {
	body := map[string]string{
		"room":      room,
		"action":    "reaction",
		"sender":    user,
		"messageId": messageID,
		"emoji":     emoji,
	}

	var resp struct {
		Message model.Message `json:"message"`
	}
	if err := c.post(ctx, "/api/messages", body, &resp); err != nil {
		return model.Message{}, fmt.Errorf("toggle reaction: %w", err)
	}
	return resp.Message, nil
}

// CreateRoomRequest holds the room creation parameters.
type CreateRoomRequest struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	ExpiresInHours  int    `json:"expiresInHours,omitempty"`
	MaxParticipants int    `json:"maxParticipants,omitempty"`
}

// CreatedRoom is a room plus the one-time content key for private rooms.
type CreatedRoom struct {
	model.Room
	EncryptionKey string `json:"encryptionKey"`
}

// CreateRoom creates a room and returns it with its invite code.
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (CreatedRoom, error) {
	var room CreatedRoom
	if err := c.post(ctx, "/api/rooms", req, &room); err != nil {
		return CreatedRoom{}, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// FindRoom resolves an invite code to a room.
func (c *Client) FindRoom(ctx context.Context, code string) (model.Room, error) {
	var room model.Room
	if err := c.get(ctx, "/api/rooms/"+url.PathEscape(code), nil, &room); err != nil {
		return model.Room{}, fmt.Errorf("find room: %w", err)
	}
	return room, nil
}

// PurgeExpired deletes expired messages and returns how many were removed.
func (c *Client) PurgeExpired(ctx context.Context) (int, error) {
	body, err := c.doRequest(ctx, http.MethodDelete, "/api/messages", nil, nil)
	if err != nil {
		return 0, fmt.Errorf("purge expired: %w", err)
	}

	var resp struct {
		DeletedCount int `json:"deletedCount"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp.DeletedCount, nil
}
