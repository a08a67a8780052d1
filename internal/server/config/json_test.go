package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTempJSON writes contents to a temp file and returns its path.
func writeTempJSON(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	err := os.WriteFile(path, []byte(contents), 0o600)
	require.NoError(t, err)
	return path
}

func withArgs(t *testing.T, args []string) {
	t.Helper()
	saved := os.Args
	os.Args = args
	t.Cleanup(func() { os.Args = saved })
}

func TestParseJson_NoConfigFlag(t *testing.T) {
	withArgs(t, []string{"cmd"})

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":8800", c.EndpointAddr)
	assert.Equal(t, 30*time.Minute, c.VerificationCodeValidityDuration)
}

func TestParseJson_OverridesValues(t *testing.T) {
	path := writeTempJSON(t, `{
		"endpoint_addr": ":9999",
		"database_dsn": "postgres://example/db",
		"encryption_secret": "supersecret",
		"share_link_validity_duration": "48h",
		"verification_code_validity_duration": "10m",
		"max_upload_bytes": 1048576,
		"storage_backend": "s3",
		"smtp_host": "mail.example.com",
		"app_url": "https://share.example.com"
	}`)
	withArgs(t, []string{"cmd", "-c", path})

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":9999", c.EndpointAddr)
	assert.Equal(t, "postgres://example/db", c.DatabaseDSN)
	assert.Equal(t, "supersecret", c.EncryptionSecret)
	assert.Equal(t, 48*time.Hour, c.ShareLinkValidityDuration)
	assert.Equal(t, 10*time.Minute, c.VerificationCodeValidityDuration)
	assert.Equal(t, int64(1048576), c.MaxUploadBytes)
	assert.Equal(t, "s3", c.StorageBackend)
	assert.Equal(t, "mail.example.com", c.SMTPHost)
	assert.Equal(t, "https://share.example.com", c.AppURL)
}

func TestParseJson_ZeroValuesDoNotOverride(t *testing.T) {
	path := writeTempJSON(t, `{"endpoint_addr": "", "max_upload_bytes": 0}`)
	withArgs(t, []string{"cmd", "-config", path})

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":8800", c.EndpointAddr)
	assert.Equal(t, int64(10<<20), c.MaxUploadBytes)
}

func TestParseJson_InvalidFilePanics(t *testing.T) {
	path := writeTempJSON(t, `{not json`)
	withArgs(t, []string{"cmd", "-c", path})

	var c Config
	c.LoadDefaults()
	require.Panics(t, func() { parseJson(&c) })
}

func TestParseJson_MissingFilePanics(t *testing.T) {
	withArgs(t, []string{"cmd", "-c", "/nonexistent/config.json"})

	var c Config
	c.LoadDefaults()
	require.Panics(t, func() { parseJson(&c) })
}
