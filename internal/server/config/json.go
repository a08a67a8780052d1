package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/secureshare/internal/flagx"
	"github.com/dmitrijs2005/secureshare/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for lifetime fields, which allows
// parsing both string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr     string `json:"endpoint_addr"`
	DatabaseDSN      string `json:"database_dsn"`
	SecretKey        string `json:"secret_key"`
	EncryptionSecret string `json:"encryption_secret"`

	AccessTokenValidityDuration      timex.Duration `json:"access_token_validity_duration"`
	ShareLinkValidityDuration        timex.Duration `json:"share_link_validity_duration"`
	VerificationCodeValidityDuration timex.Duration `json:"verification_code_validity_duration"`

	MaxUploadBytes int64 `json:"max_upload_bytes"`

	StorageBackend string `json:"storage_backend"`
	BlobDir        string `json:"blob_dir"`
	SpoolDir       string `json:"spool_dir"`
	TempDir        string `json:"temp_dir"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     string `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	EmailFrom    string `json:"email_from"`

	AppURL string `json:"app_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics. Zero values in the file leave
// the corresponding Config fields untouched, so the file can override only a
// subset of settings.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlayString(&config.EndpointAddr, c.EndpointAddr)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.SecretKey, c.SecretKey)
	overlayString(&config.EncryptionSecret, c.EncryptionSecret)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShareLinkValidityDuration.Duration != 0 {
		config.ShareLinkValidityDuration = c.ShareLinkValidityDuration.Duration
	}
	if c.VerificationCodeValidityDuration.Duration != 0 {
		config.VerificationCodeValidityDuration = c.VerificationCodeValidityDuration.Duration
	}
	if c.MaxUploadBytes != 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}

	overlayString(&config.StorageBackend, c.StorageBackend)
	overlayString(&config.BlobDir, c.BlobDir)
	overlayString(&config.SpoolDir, c.SpoolDir)
	overlayString(&config.TempDir, c.TempDir)

	overlayString(&config.S3RootUser, c.S3RootUser)
	overlayString(&config.S3RootPassword, c.S3RootPassword)
	overlayString(&config.S3Bucket, c.S3Bucket)
	overlayString(&config.S3Region, c.S3Region)
	overlayString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	overlayString(&config.SMTPHost, c.SMTPHost)
	overlayString(&config.SMTPPort, c.SMTPPort)
	overlayString(&config.SMTPUser, c.SMTPUser)
	overlayString(&config.SMTPPassword, c.SMTPPassword)
	overlayString(&config.EmailFrom, c.EmailFrom)

	overlayString(&config.AppURL, c.AppURL)
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
