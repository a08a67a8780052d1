package cryptox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ReleaseFunc deletes the temporary plaintext artifact behind a download
// stream. It is idempotent and safe to call from stream-end and stream-error
// paths alike.
type ReleaseFunc func()

// TempDecryptor serves decrypted file content through short-lived temporary
// files. A blob is decrypted fully to disk first and then streamed out, which
// trades transient disk usage for a simple cleanup contract: one temp file
// per call, deleted exactly once via the release callback.
type TempDecryptor struct {
	cipher *StreamCipher
	dir    string
}

// NewTempDecryptor creates a decryptor placing temporary files in dir.
func NewTempDecryptor(c *StreamCipher, dir string) *TempDecryptor {
	return &TempDecryptor{cipher: c, dir: dir}
}

// OpenForRead decrypts blob into a fresh uniquely named temporary file and
// returns a plaintext read stream over it. name only flavors the temp file
// name for diagnostics; uniqueness comes from the timestamp and a UUID, so
// concurrent downloads of the same file never share a path.
//
// On decryption failure no temporary artifact is left behind and the cipher
// error is surfaced unchanged. The caller must invoke the release callback
// when streaming ends, whether it completed, failed, or was aborted.
func (d *TempDecryptor) OpenForRead(blob io.Reader, name string) (io.ReadCloser, ReleaseFunc, error) {
	tmp := filepath.Join(d.dir, fmt.Sprintf("temp_%d_%s_%s",
		time.Now().UnixNano(), uuid.NewString(), filepath.Base(name)))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, nil, wrapIO("create temp file", err)
	}

	if err := d.cipher.Decrypt(f, blob); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, nil, wrapIO("close temp file", err)
	}

	r, err := os.Open(tmp)
	if err != nil {
		os.Remove(tmp)
		return nil, nil, wrapIO("open temp file", err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			r.Close()
			os.Remove(tmp)
		})
	}
	return r, release, nil
}
