package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := filepath.Join(dir, "uploader.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_url": "http://oasis:8080",
		"parent_id": 3,
		"retry_delay": "2s"
	}`), 0o600))

	t.Run("overlays present keys", func(t *testing.T) {
		os.Args = []string{"uploader", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		want := &Config{}
		want.LoadDefaults()
		want.ServerURL = "http://oasis:8080"
		want.ParentID = 3
		want.RetryDelay = 2 * time.Second
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"uploader"}

		cfg := &Config{ServerURL: "x"}
		parseJson(cfg)
		assert.Equal(t, "x", cfg.ServerURL)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))
		os.Args = []string{"uploader", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
