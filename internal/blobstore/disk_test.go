package blobstore

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/secureshare/internal/common"
)

func TestDiskStore_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	key := "users/2026/8/29/some-blob"
	payload := []byte{0x16, 0x03, 0x01, 0x00}

	require.NoError(t, store.Save(ctx, key, bytes.NewReader(payload), int64(len(payload))))

	r, err := store.Open(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, payload, got)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, common.ErrStorageIO)
}

func TestDiskStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "k", strings.NewReader("first"), 5))
	require.NoError(t, store.Save(ctx, "k", strings.NewReader("second"), 6))

	r, err := store.Open(ctx, "k")
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestDiskStore_DeleteMissingIsNoop(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Delete(context.Background(), "never/existed"))
}

func TestMakeStorageKey(t *testing.T) {
	k1 := MakeStorageKey()
	k2 := MakeStorageKey()

	assert.NotEqual(t, k1, k2)
	assert.Regexp(t, regexp.MustCompile(`^users/\d{4}/\d{1,2}/\d{1,2}/[0-9a-f-]{36}$`), k1)
}
