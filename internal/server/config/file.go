package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/oasis/internal/flagx"
	"github.com/dmitrijs2005/oasis/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for JSON and YAML files. Durations use
// timex.Duration, so both "90s" strings and integer nanoseconds are
// accepted. Keys missing from the file keep their current values.
type FileConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	StorageRoot                 string         `json:"storage_root" yaml:"storage_root"`
	MaxSliceBytes               int64          `json:"max_slice_bytes" yaml:"max_slice_bytes"`
	MaxCollisionAttempts        int            `json:"max_collision_attempts" yaml:"max_collision_attempts"`
	StaleUploadTTL              timex.Duration `json:"stale_upload_ttl" yaml:"stale_upload_ttl"`
	ReaperInterval              timex.Duration `json:"reaper_interval" yaml:"reaper_interval"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
	MirrorEnabled               bool           `json:"mirror_enabled" yaml:"mirror_enabled"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

func fromConfig(c *Config) *FileConfig {
	return &FileConfig{
		EndpointAddrHTTP:            c.EndpointAddrHTTP,
		EndpointAddrGRPC:            c.EndpointAddrGRPC,
		DatabaseDSN:                 c.DatabaseDSN,
		SecretKey:                   c.SecretKey,
		AccessTokenValidityDuration: timex.Duration{Duration: c.AccessTokenValidityDuration},
		StorageRoot:                 c.StorageRoot,
		MaxSliceBytes:               c.MaxSliceBytes,
		MaxCollisionAttempts:        c.MaxCollisionAttempts,
		StaleUploadTTL:              timex.Duration{Duration: c.StaleUploadTTL},
		ReaperInterval:              timex.Duration{Duration: c.ReaperInterval},
		LogLevel:                    c.LogLevel,
		MirrorEnabled:               c.MirrorEnabled,
		S3RootUser:                  c.S3RootUser,
		S3RootPassword:              c.S3RootPassword,
		S3Bucket:                    c.S3Bucket,
		S3Region:                    c.S3Region,
		S3BaseEndpoint:              c.S3BaseEndpoint,
	}
}

func (f *FileConfig) apply(c *Config) {
	c.EndpointAddrHTTP = f.EndpointAddrHTTP
	c.EndpointAddrGRPC = f.EndpointAddrGRPC
	c.DatabaseDSN = f.DatabaseDSN
	c.SecretKey = f.SecretKey
	c.AccessTokenValidityDuration = f.AccessTokenValidityDuration.Duration
	c.StorageRoot = f.StorageRoot
	c.MaxSliceBytes = f.MaxSliceBytes
	c.MaxCollisionAttempts = f.MaxCollisionAttempts
	c.StaleUploadTTL = f.StaleUploadTTL.Duration
	c.ReaperInterval = f.ReaperInterval.Duration
	c.LogLevel = f.LogLevel
	c.MirrorEnabled = f.MirrorEnabled
	c.S3RootUser = f.S3RootUser
	c.S3RootPassword = f.S3RootPassword
	c.S3Bucket = f.S3Bucket
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// parseFile overlays values from the file named by -c / -config onto
// config. Files ending in .yaml or .yml are decoded as YAML, anything else
// as JSON. Without the flag nothing is loaded. An unreadable or malformed
// file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := fromConfig(config)
	if isYAML(path) {
		err = yaml.Unmarshal(data, fc)
	} else {
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}
