// Package cryptox implements the file encryption pipeline: key derivation
// from the configured secret, streaming AES-256-CBC encryption of uploads,
// and the ephemeral decrypt-to-temp-file path used to serve downloads.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
)

// fallbackSecret seeds the development-only key used when no encryption
// secret is configured. It is public knowledge and must never protect
// real data.
const fallbackSecret = "SecureFileSharing-Development-Only-Key"

// KeyManager derives and holds the process-wide AES-256 key. The key is a
// pure function of the configured secret: the same secret always yields the
// same key, so previously encrypted files stay decryptable.
type KeyManager struct {
	key      []byte
	degraded bool
}

// NewKeyManager derives a 32-byte key from secret.
//
// An empty secret switches the manager into degraded development mode with a
// deterministic fallback key; callers must check Degraded and refuse to run
// like that in production. A 64-character hex secret is decoded directly as
// the key; any other secret is hashed with SHA-256.
func NewKeyManager(secret string) *KeyManager {
	if secret == "" {
		return &KeyManager{key: fallbackKey(), degraded: true}
	}

	if len(secret) == 64 {
		if key, err := hex.DecodeString(secret); err == nil {
			return &KeyManager{key: key}
		}
	}

	sum := sha256.Sum256([]byte(secret))
	return &KeyManager{key: sum[:]}
}

// Key returns the derived 32-byte AES key.
func (m *KeyManager) Key() []byte {
	return m.key
}

// Degraded reports whether the manager runs on the publicly known
// development fallback key.
func (m *KeyManager) Degraded() bool {
	return m.degraded
}

func fallbackKey() []byte {
	sum := sha256.Sum256([]byte(fallbackSecret))
	// The first 32 hex characters of the digest, taken as raw bytes. Kept
	// for compatibility with blobs written by earlier deployments.
	return []byte(hex.EncodeToString(sum[:])[:32])
}
