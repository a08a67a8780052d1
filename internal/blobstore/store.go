// Package blobstore persists encrypted blobs. Blobs are opaque to this
// package: the cipher pipeline owns their layout, the store only moves bytes
// under caller-chosen keys.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Store is the storage backend for encrypted blobs.
type Store interface {
	// Save streams the blob from r under key, overwriting any previous blob.
	// size is the exact blob length in bytes; backends that must announce the
	// transfer length up front depend on it, since r need not be seekable.
	Save(ctx context.Context, key string, r io.Reader, size int64) error
	// Open returns a read stream over the blob at key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob at key.
	Delete(ctx context.Context, key string) error
}

// MakeStorageKey returns a fresh date-partitioned storage key for a new blob.
func MakeStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
