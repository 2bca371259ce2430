package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bobsby23/Team-Chat/internal/model"
)

func TestDecodeKnownTypes(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  Type
	}{
		{"connected", `{"type":"connected","connectionId":"conn_1_5","timestamp":1}`, TypeConnected},
		{"ping", `{"type":"ping","connectionId":"conn_1_5","timestamp":2}`, TypePing},
		{"new_message", `{"type":"new_message","message":{"id":"m1"},"timestamp":3}`, TypeNewMessage},
		{"reaction_update", `{"type":"reaction_update","message":{"id":"m1"},"timestamp":4}`, TypeReactionUpdate},
		{"typing_update", `{"type":"typing_update","typing":["alice"],"timestamp":5}`, TypeTypingUpdate},
		{"user_joined", `{"type":"user_joined","username":"alice","onlineUsers":["alice"],"timestamp":6}`, TypeUserJoined},
		{"user_left", `{"type":"user_left","username":"alice","onlineUsers":[],"timestamp":7}`, TypeUserLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.frame))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got.Type != tt.want {
				t.Errorf("Type = %q, want %q", got.Type, tt.want)
			}
		})
	}
}

func TestDecodeUnknownTagIsNoOp(t *testing.T) {
	got, err := Decode([]byte(`{"type":"room_renamed","timestamp":9}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Type != TypeUnknown {
		t.Errorf("Type = %q, want TypeUnknown", got.Type)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed frame")
	}
}

func TestNewMessageRoundTrip(t *testing.T) {
	msg := model.Message{
		ID:        "m1",
		Sender:    "alice",
		Content:   "hi",
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Reactions: map[string][]string{"👍": {"bob"}},
	}

	data, err := NewMessage(msg, []string{"alice", "bob"}).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Message == nil || got.Message.ID != "m1" {
		t.Fatalf("Message = %+v, want id m1", got.Message)
	}
	if len(got.OnlineUsers) != 2 {
		t.Errorf("OnlineUsers = %v, want 2 entries", got.OnlineUsers)
	}
	if got.Timestamp == 0 {
		t.Error("Timestamp not set by constructor")
	}
}

func TestEnvelopeOmitsEmptyFields(t *testing.T) {
	data, err := Ping("conn_1_5").Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, field := range []string{"message", "onlineUsers", "typing", "username"} {
		if _, ok := raw[field]; ok {
			t.Errorf("ping frame carries unexpected field %q", field)
		}
	}
}
