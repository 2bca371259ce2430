package model

import (
	"testing"
	"time"
)

func TestMessageExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future expiry", now.Add(time.Hour), false},
		{"past expiry", now.Add(-time.Hour), true},
		{"exact boundary", now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Message{ExpiresAt: tt.expiresAt}
			if got := m.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageClone(t *testing.T) {
	orig := Message{
		ID:        "m1",
		Sender:    "alice",
		Reactions: map[string][]string{"👍": {"bob"}},
	}

	clone := orig.Clone()
	clone.Reactions["👍"] = append(clone.Reactions["👍"], "carol")
	clone.Reactions["🎉"] = []string{"dave"}

	if len(orig.Reactions["👍"]) != 1 {
		t.Errorf("clone mutated original user set: %v", orig.Reactions["👍"])
	}
	if _, ok := orig.Reactions["🎉"]; ok {
		t.Error("clone mutated original reaction map")
	}
}

func TestRoomExpired(t *testing.T) {
	now := time.Now()

	noExpiry := Room{}
	if noExpiry.Expired(now) {
		t.Error("room without expiry reported expired")
	}

	past := now.Add(-time.Minute)
	expired := Room{ExpiresAt: &past}
	if !expired.Expired(now) {
		t.Error("room past expiry not reported expired")
	}
}
