package cryptox

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/secureshare/internal/common"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestTempDecryptor_StreamAndRelease(t *testing.T) {
	dir := t.TempDir()
	c := testCipher(t, "ephemeral-secret")
	d := NewTempDecryptor(c, dir)

	plaintext := []byte("hello world")
	blob, _ := encryptBytes(t, c, plaintext)

	stream, release, err := d.OpenForRead(bytes.NewReader(blob), "report.pdf")
	require.NoError(t, err)
	require.Len(t, listDir(t, dir), 1, "one temp artifact while streaming")

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)

	release()
	assert.Empty(t, listDir(t, dir), "release must delete the temp artifact")

	// Idempotent: extra release calls are harmless.
	release()
	release()
	assert.Empty(t, listDir(t, dir))
}

func TestTempDecryptor_ReleaseBeforeStreamEnd(t *testing.T) {
	dir := t.TempDir()
	c := testCipher(t, "abort-secret")
	d := NewTempDecryptor(c, dir)

	blob, _ := encryptBytes(t, c, bytes.Repeat([]byte{0x42}, 4096))

	stream, release, err := d.OpenForRead(bytes.NewReader(blob), "big.bin")
	require.NoError(t, err)

	// Caller aborts mid-stream: only the temp artifact has to go away.
	buf := make([]byte, 10)
	_, err = stream.Read(buf)
	require.NoError(t, err)

	release()
	assert.Empty(t, listDir(t, dir))
}

func TestTempDecryptor_FailedDecryptionLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	c := testCipher(t, "cleanup-secret")
	d := NewTempDecryptor(c, dir)

	// Truncated blob: framing fails after the temp file was created.
	stream, release, err := d.OpenForRead(bytes.NewReader(make([]byte, IVSize+8)), "broken")
	assert.ErrorIs(t, err, common.ErrMalformedBlob)
	assert.Nil(t, stream)
	assert.Nil(t, release)
	assert.Empty(t, listDir(t, dir), "no partial artifact may remain")
}

func TestTempDecryptor_UniquePathsPerCall(t *testing.T) {
	dir := t.TempDir()
	c := testCipher(t, "unique-secret")
	d := NewTempDecryptor(c, dir)

	blob, _ := encryptBytes(t, c, []byte("shared file"))

	// Two concurrent downloads of the same file must never observe each
	// other's artifact.
	_, release1, err := d.OpenForRead(bytes.NewReader(blob), "same-name.txt")
	require.NoError(t, err)
	_, release2, err := d.OpenForRead(bytes.NewReader(blob), "same-name.txt")
	require.NoError(t, err)

	names := listDir(t, dir)
	require.Len(t, names, 2)
	assert.NotEqual(t, names[0], names[1])

	release1()
	release2()
	assert.Empty(t, listDir(t, dir))
}
