package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want func(t *testing.T, c *Config)
	}{
		{
			name: "no flags keeps defaults",
			args: []string{"cmd"},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, ":8800", c.EndpointAddr)
				assert.Equal(t, 60*time.Minute, c.AccessTokenValidityDuration)
				assert.Equal(t, "disk", c.StorageBackend)
			},
		},
		{
			name: "address and dsn",
			args: []string{"cmd", "-a", ":9090", "-d", "postgres://example/db"},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, ":9090", c.EndpointAddr)
				assert.Equal(t, "postgres://example/db", c.DatabaseDSN)
			},
		},
		{
			name: "secrets and token lifetime",
			args: []string{"cmd", "-s", "jwtsecret", "-k", "filesecret", "-t", "15"},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, "jwtsecret", c.SecretKey)
				assert.Equal(t, "filesecret", c.EncryptionSecret)
				assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
			},
		},
		{
			name: "storage backend selection",
			args: []string{"cmd", "-b", "s3", "-n", "files", "-g", "eu-west-1", "-e", "http://minio:9000/"},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, "s3", c.StorageBackend)
				assert.Equal(t, "files", c.S3Bucket)
				assert.Equal(t, "eu-west-1", c.S3Region)
				assert.Equal(t, "http://minio:9000/", c.S3BaseEndpoint)
			},
		},
		{
			name: "unrelated flags are filtered out",
			args: []string{"cmd", "-test.v", "-a=:7777", "-unknown", "value"},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, ":7777", c.EndpointAddr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args)

			var c Config
			c.LoadDefaults()
			require.NotPanics(t, func() { parseFlags(&c) })
			tt.want(t, &c)
		})
	}
}
