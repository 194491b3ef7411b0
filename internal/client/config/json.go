package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/oasis/internal/flagx"
	"github.com/dmitrijs2005/oasis/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Keys
// missing from the file keep the values already in Config.
type JsonConfig struct {
	ServerURL  string         `json:"server_url"`
	Token      string         `json:"token"`
	ParentID   int64          `json:"parent_id"`
	SliceBytes int64          `json:"slice_bytes"`
	Retries    int            `json:"retries"`
	RetryDelay timex.Duration `json:"retry_delay"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without the flag nothing is loaded. Read or unmarshal
// errors panic.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	jc := JsonConfig{
		ServerURL:  cfg.ServerURL,
		Token:      cfg.Token,
		ParentID:   cfg.ParentID,
		SliceBytes: cfg.SliceBytes,
		Retries:    cfg.Retries,
		RetryDelay: timex.Duration{Duration: cfg.RetryDelay},
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.Token = jc.Token
	cfg.ParentID = jc.ParentID
	cfg.SliceBytes = jc.SliceBytes
	cfg.Retries = jc.Retries
	cfg.RetryDelay = jc.RetryDelay.Duration
}
