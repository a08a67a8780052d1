// Package common defines shared constants and sentinel errors used across
// SecureShare components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control). ErrorConflict
	// reports a uniqueness clash, e.g. a username that is already taken.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("conflict")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Cipher pipeline errors. ErrMalformedBlob means the stored blob cannot
	// even be framed (shorter than one IV, or ciphertext not block-aligned).
	// ErrDecryptionFailed means framing was fine but the padding check failed,
	// i.e. wrong key or corrupted ciphertext. ErrStorageIO covers everything
	// the underlying reader or writer reports.
	ErrMalformedBlob    = errors.New("malformed blob")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrStorageIO        = errors.New("storage i/o error")

	// Share lifecycle errors. ErrInvalidOrExpired is an expected client
	// outcome (dead token, wrong or late code), never a server fault.
	ErrInvalidOrExpired = errors.New("invalid or expired")
	ErrNotifierFailure  = errors.New("notifier failure")
)
