package config

import "time"

// Config holds runtime settings for the uploader.
//
// Fields:
//   - ServerURL: base URL of the Oasis HTTP API.
//   - Token: access token sent as a bearer token.
//   - ParentID: folder the file is uploaded into.
//   - FilePath: local file to upload.
//   - SliceBytes: size of each slice; must not exceed the server limit.
//   - Retries / RetryDelay: attempts per request on network errors and 5xx.
type Config struct {
	ServerURL  string
	Token      string
	ParentID   int64
	FilePath   string
	SliceBytes int64
	Retries    int
	RetryDelay time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SliceBytes = 1 << 20
	c.Retries = 3
	c.RetryDelay = 500 * time.Millisecond
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
