package cipher

import (
	"strings"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key, err := NewRoomKey()
	if err != nil {
		t.Fatalf("NewRoomKey failed: %v", err)
	}

	for _, content := range []string{"hello", "", "emoji 🎉 and ünïcode"} {
		sealed := Seal(content, key)
		if content != "" && sealed == content {
			t.Errorf("Seal(%q) returned plaintext", content)
		}
		if got := Open(sealed, key); got != content {
			t.Errorf("Open(Seal(%q)) = %q", content, got)
		}
	}
}

func TestOpenFailsClosed(t *testing.T) {
	key, _ := NewRoomKey()
	otherKey, _ := NewRoomKey()
	sealed := Seal("secret", key)

	tests := []struct {
		name   string
		opaque string
		key    string
	}{
		{"wrong key", sealed, otherKey},
		{"not hex", "zzzz", key},
		{"too short", "abcd", key},
		{"bad key hex", sealed, "nothex"},
		{"truncated ciphertext", sealed[:len(sealed)-4], key},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Open(tt.opaque, tt.key); got != Placeholder {
				t.Errorf("Open = %q, want placeholder", got)
			}
		})
	}
}

func TestSealDegradesToPlaintextOnBadKey(t *testing.T) {
	if got := Seal("hello", "nothex"); got != "hello" {
		t.Errorf("Seal with bad key = %q, want plaintext passthrough", got)
	}
}

func TestNewInviteCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := NewInviteCode()
		if err != nil {
			t.Fatalf("NewInviteCode failed: %v", err)
		}
		if len(code) != InviteCodeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(inviteAlphabet, r) {
				t.Fatalf("code %q contains %q outside alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("invite codes do not vary")
	}
}
