package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		initial     *Config
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:8081", "-g", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-t", "1",
				"-r", "/data", "-m", "4096", "-n", "7", "-x", "30", "-i", "5", "-l", "warn", "-mirror=true",
				"-u", "user", "-p", "password", "-b", "bucket", "-region", "us-west-1", "-e", "http://endpoint",
			},
			initial: &Config{},
			expected: &Config{
				EndpointAddrHTTP:            "127.0.0.1:8081",
				EndpointAddrGRPC:            "127.0.0.1:9090",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 1 * time.Minute,
				StorageRoot:                 "/data",
				MaxSliceBytes:               4096,
				MaxCollisionAttempts:        7,
				StaleUploadTTL:              30 * time.Minute,
				ReaperInterval:              5 * time.Minute,
				LogLevel:                    "warn",
				MirrorEnabled:               true,
				S3RootUser:                  "user",
				S3RootPassword:              "password",
				S3Bucket:                    "bucket",
				S3Region:                    "us-west-1",
				S3BaseEndpoint:              "http://endpoint",
			},
		},
		{
			name:     "unset duration flags keep sub-minute values",
			args:     []string{"cmd", "-r", "/data", "-unknown", "x"},
			initial:  &Config{ReaperInterval: 90 * time.Second},
			expected: &Config{StorageRoot: "/data", ReaperInterval: 90 * time.Second},
		},
		{
			name:        "bad int",
			args:        []string{"cmd", "-m", "lots"},
			initial:     &Config{},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(tt.initial) })
				return
			}

			require.NotPanics(t, func() { parseFlags(tt.initial) })
			assert.Empty(t, cmp.Diff(tt.expected, tt.initial))
		})
	}
}
