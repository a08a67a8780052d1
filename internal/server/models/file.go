package models

import "time"

// File is the metadata record for one stored file. The encrypted blob itself
// lives in the blob store under StorageKey; this record carries everything
// needed to decrypt it and to run the share lifecycle.
type File struct {
	ID      string
	OwnerID string

	Name        string
	ContentType string
	Size        int64
	UploadedAt  time.Time

	// StorageKey is the blob-store key of the IV-prefixed ciphertext.
	StorageKey string
	// EncryptionIV is the hex-encoded IV (32 characters) persisted alongside
	// the blob location.
	EncryptionIV string

	// Share grant. Empty token / zero expiry mean the file is not shared.
	// A grant whose expiry is not strictly in the future is inert.
	ShareToken  string
	ShareExpiry time.Time

	// Verification challenge, at most one live instance. Overwritten by every
	// access request; not cleared on use.
	VerificationCode       string
	VerificationCodeExpiry time.Time
}

// AccessRecord is one row of the append-only audit trail: a successful
// verification from an address at a point in time.
type AccessRecord struct {
	ID         int64
	FileID     string
	IPAddress  string
	AccessTime time.Time
}
