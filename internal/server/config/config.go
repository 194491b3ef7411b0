// Package config handles configuration for the server component,
// including defaults, a JSON or YAML file overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the Oasis server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses of the upload API
//     and of the gRPC health endpoint.
//   - DatabaseDSN: postgres:// DSN (pgx) or sqlite:// DSN (modernc).
//   - SecretKey: HMAC secret for verifying JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: lifetime of tokens minted by GenerateToken.
//   - StorageRoot: directory holding tmp/ (scratch slices) and files/ (combined files).
//   - MaxSliceBytes: upper bound of one slice request body.
//   - MaxCollisionAttempts: numbered names tried before the uuid fallback.
//   - StaleUploadTTL / ReaperInterval: idle uploads older than the TTL are
//     aborted; a zero TTL disables the reaper.
//   - LogLevel: debug, info, warn or error.
//   - MirrorEnabled and S3*: optional copy of finished files to an
//     S3-compatible bucket.
type Config struct {
	EndpointAddrHTTP            string
	EndpointAddrGRPC            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	StorageRoot                 string
	MaxSliceBytes               int64
	MaxCollisionAttempts        int
	StaleUploadTTL              time.Duration
	ReaperInterval              time.Duration
	LogLevel                    string
	MirrorEnabled               bool
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = "sqlite://oasis.db"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 20 * time.Minute
	c.StorageRoot = "data"
	c.MaxSliceBytes = 8 << 20
	c.MaxCollisionAttempts = 1000
	c.StaleUploadTTL = 24 * time.Hour
	c.ReaperInterval = 10 * time.Minute
	c.LogLevel = "info"
	c.MirrorEnabled = false
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "oasis"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
