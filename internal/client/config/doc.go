// Package config loads runtime configuration for the Oasis uploader.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string   base URL of the server (e.g., "http://127.0.0.1:8080")
//	-t string   access token; prompted for when empty
//	-p int      id of the destination folder
//	-f string   file to upload
//	-b int      slice size in bytes
//	-r int      attempts per request before giving up
//	-w int      pause between attempts (milliseconds)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "1s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "parent_id": 1,
//	  "slice_bytes": 1048576,
//	  "retries": 3,
//	  "retry_delay": "500ms"
//	}
package config
