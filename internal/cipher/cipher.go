// Package cipher implements the per-room content transform.
//
// Content is sealed with AES-256-GCM under a hex-encoded room key. The
// ciphertext is hex(nonce || ct). Both directions degrade instead of
// erroring: Seal falls back to the plaintext, Open fails closed to a
// placeholder, so the read path never aborts on bad key material.
package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
)

// Placeholder replaces content that could not be revealed.
const Placeholder = "[Encrypted Message]"

// inviteAlphabet matches the invite codes issued by the original rooms.
const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// InviteCodeLength is the length of generated invite codes.
const InviteCodeLength = 8

// NewRoomKey returns a fresh 256-bit key as a hex string.
func NewRoomKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// NewInviteCode returns an 8-character invite code over A-Z0-9.
func NewInviteCode() (string, error) {
	buf := make([]byte, InviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}

// Seal encrypts content under the room key. On any failure the plaintext is
// returned unchanged.
func Seal(content, keyHex string) string {
	gcm, err := newGCM(keyHex)
	if err != nil {
		return content
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return content
	}

	sealed := gcm.Seal(nonce, nonce, []byte(content), nil)
	return hex.EncodeToString(sealed)
}

// Open decrypts sealed content. Any failure yields the placeholder string;
// it never returns an error to the caller.
func Open(opaque, keyHex string) string {
	gcm, err := newGCM(keyHex)
	if err != nil {
		return Placeholder
	}

	raw, err := hex.DecodeString(opaque)
	if err != nil || len(raw) < gcm.NonceSize() {
		return Placeholder
	}

	nonce, ct := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return Placeholder
	}
	return string(plain)
}

func newGCM(keyHex string) (cipher.AEAD, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
