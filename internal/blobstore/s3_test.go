package blobstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/secureshare/internal/common"
)

func newTestS3Store(t *testing.T, handler http.Handler) *S3Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), S3Config{
		User:         "minio",
		Password:     "minio123",
		Bucket:       "blobs",
		Region:       "us-east-1",
		BaseEndpoint: srv.URL,
	})
	require.NoError(t, err)
	return store
}

// Blobs reach the store through an io.Pipe, which cannot seek or restate its
// length. Save has to get such a body through PutObject on a plain-http
// endpoint by announcing the transfer length itself.
func TestS3Store_SaveAcceptsUnseekableBody(t *testing.T) {
	var (
		gotPath   string
		gotLength int64 = -1
		gotBody   []byte
	)
	store := newTestS3Store(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusOK)
			return
		}
		gotPath = r.URL.Path
		gotLength = r.ContentLength
		b, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		gotBody = b
		w.Header().Set("ETag", `"0f343b0931126a20f133d67c2b018a3b"`)
		w.WriteHeader(http.StatusOK)
	}))

	payload := []byte("iv prefix plus ciphertext bytes")
	pr, pw := io.Pipe()
	go func() {
		pw.Write(payload)
		pw.Close()
	}()

	require.NoError(t, store.Save(context.Background(), "users/2026/8/29/blob-1", pr, int64(len(payload))))

	assert.Equal(t, "/blobs/users/2026/8/29/blob-1", gotPath)
	assert.Equal(t, int64(len(payload)), gotLength)
	assert.Equal(t, payload, gotBody)
}

func TestS3Store_SaveReportsBackendFailure(t *testing.T) {
	store := newTestS3Store(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	err := store.Save(context.Background(), "k", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, common.ErrStorageIO)
}

func TestS3Store_OpenStreamsBlob(t *testing.T) {
	payload := "encrypted blob contents"
	store := newTestS3Store(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		io.WriteString(w, payload)
	}))

	rc, err := store.Open(context.Background(), "users/2026/8/29/blob-1")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}
