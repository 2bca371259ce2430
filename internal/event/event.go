package event

import (
	"encoding/json"
	"time"

	"github.com/bobsby23/Team-Chat/internal/model"
)

// Type tags a broadcast event.
type Type string

// Known event types.
const (
	TypeConnected      Type = "connected"
	TypePing           Type = "ping"
	TypeNewMessage     Type = "new_message"
	TypeReactionUpdate Type = "reaction_update"
	TypeTypingUpdate   Type = "typing_update"
	TypeUserJoined     Type = "user_joined"
	TypeUserLeft       Type = "user_left"

	// TypeUnknown marks a decoded frame whose tag is not recognized.
	// Consumers treat it as a no-op.
	TypeUnknown Type = ""
)

// Envelope is the canonical payload shape. Only the fields relevant to the
// tagged type are populated; the rest stay at their zero value and are
// omitted from the encoding.
type Envelope struct {
	Type         Type           `json:"type"`
	ConnectionID string         `json:"connectionId,omitempty"`
	Message      *model.Message `json:"message,omitempty"`
	OnlineUsers  []string       `json:"onlineUsers,omitempty"`
	Typing       []string       `json:"typing,omitempty"`
	Username     string         `json:"username,omitempty"`
	Timestamp    int64          `json:"timestamp"`
}

// Encode serializes the envelope to a single JSON frame.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a frame by its type tag. Malformed JSON is an error; a
// well-formed frame with an unrecognized tag decodes to TypeUnknown.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, err
	}

	switch e.Type {
	case TypeConnected, TypePing, TypeNewMessage, TypeReactionUpdate,
		TypeTypingUpdate, TypeUserJoined, TypeUserLeft:
		return e, nil
	}

	return Envelope{Type: TypeUnknown, Timestamp: e.Timestamp}, nil
}

// nowMillis returns the current time in Unix milliseconds, matching the
// timestamp convention of every event payload.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Connected is the handshake frame sent once per stream open.
func Connected(connectionID string) Envelope {
	return Envelope{
		Type:         TypeConnected,
		ConnectionID: connectionID,
		Timestamp:    nowMillis(),
	}
}

// Ping is the heartbeat frame.
func Ping(connectionID string) Envelope {
	return Envelope{
		Type:         TypePing,
		ConnectionID: connectionID,
		Timestamp:    nowMillis(),
	}
}

// NewMessage announces a stored message together with the room's current
// online list.
func NewMessage(msg model.Message, onlineUsers []string) Envelope {
	return Envelope{
		Type:        TypeNewMessage,
		Message:     &msg,
		OnlineUsers: onlineUsers,
		Timestamp:   nowMillis(),
	}
}

// ReactionUpdate carries the entire updated message, not a delta, so a
// client that missed a prior update self-heals on the next one.
func ReactionUpdate(msg model.Message) Envelope {
	return Envelope{
		Type:      TypeReactionUpdate,
		Message:   &msg,
		Timestamp: nowMillis(),
	}
}

// TypingUpdate carries the full non-expired typing list for a room.
func TypingUpdate(typing []string) Envelope {
	return Envelope{
		Type:      TypeTypingUpdate,
		Typing:    typing,
		Timestamp: nowMillis(),
	}
}

// UserJoined carries the full online list after the join.
func UserJoined(username string, onlineUsers []string) Envelope {
	return Envelope{
		Type:        TypeUserJoined,
		Username:    username,
		OnlineUsers: onlineUsers,
		Timestamp:   nowMillis(),
	}
}

// UserLeft carries the full online list after the leave.
func UserLeft(username string, onlineUsers []string) Envelope {
	return Envelope{
		Type:        TypeUserLeft,
		Username:    username,
		OnlineUsers: onlineUsers,
		Timestamp:   nowMillis(),
	}
}
