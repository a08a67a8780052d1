package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/secureshare/internal/common"
)

// DiskStore keeps blobs as files under a root directory. Slash-separated key
// segments map to subdirectories.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns a store
// rooted there.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o770); err != nil {
		return nil, wrapIO("create blob root", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *DiskStore) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return wrapIO("create blob dir", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return wrapIO("create blob", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return wrapIO("write blob", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return wrapIO("close blob", err)
	}
	return nil
}

func (s *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, wrapIO("open blob", err)
	}
	return f, nil
}

func (s *DiskStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return wrapIO("delete blob", err)
	}
	return nil
}

func wrapIO(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrStorageIO, op, err)
}
