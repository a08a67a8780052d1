package cryptox

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestNewKeyManager_Deterministic(t *testing.T) {
	m1 := NewKeyManager("some-configured-secret")
	m2 := NewKeyManager("some-configured-secret")

	if !bytes.Equal(m1.Key(), m2.Key()) {
		t.Errorf("expected same key for same secret, got different")
	}
	if len(m1.Key()) != 32 {
		t.Errorf("expected 32-byte key, got %d", len(m1.Key()))
	}
	if m1.Degraded() {
		t.Errorf("expected non-degraded mode with a secret configured")
	}
}

func TestNewKeyManager_HexSecretDecodedDirectly(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, 32)
	secret := hex.EncodeToString(raw)

	m := NewKeyManager(secret)
	if !bytes.Equal(m.Key(), raw) {
		t.Errorf("expected hex secret to be decoded as the key")
	}

	// Uppercase hex decodes too.
	m = NewKeyManager(strings.ToUpper(secret))
	if !bytes.Equal(m.Key(), raw) {
		t.Errorf("expected uppercase hex secret to be decoded as the key")
	}
}

func TestNewKeyManager_NonHex64CharSecretIsHashed(t *testing.T) {
	secret := strings.Repeat("z", 64) // right length, not hex
	expected := sha256.Sum256([]byte(secret))

	m := NewKeyManager(secret)
	if !bytes.Equal(m.Key(), expected[:]) {
		t.Errorf("expected non-hex 64-char secret to fall back to hashing")
	}
}

func TestNewKeyManager_ArbitrarySecretIsHashed(t *testing.T) {
	expected := sha256.Sum256([]byte("hunter2"))

	m := NewKeyManager("hunter2")
	if !bytes.Equal(m.Key(), expected[:]) {
		t.Errorf("expected short secret to be hashed with SHA-256")
	}
}

func TestNewKeyManager_DegradedFallback(t *testing.T) {
	m1 := NewKeyManager("")
	m2 := NewKeyManager("")

	if !m1.Degraded() {
		t.Errorf("expected degraded mode without a secret")
	}
	if len(m1.Key()) != 32 {
		t.Errorf("expected 32-byte fallback key, got %d", len(m1.Key()))
	}
	if !bytes.Equal(m1.Key(), m2.Key()) {
		t.Errorf("expected deterministic fallback key")
	}

	real := NewKeyManager("real secret")
	if bytes.Equal(m1.Key(), real.Key()) {
		t.Errorf("fallback key must differ from a configured key")
	}
}
