package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/ghostchat/pkg/logging"
)

func writeOptions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ghostchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadOptions_Defaults(t *testing.T) {
	opts, err := LoadOptions("")
	require.NoError(t, err)

	assert.Equal(t, "0.1.0", opts.Version)
	assert.Equal(t, "dist/index.html", opts.IndexHTML)
	assert.True(t, opts.WatchStore)
	assert.Equal(t, "ghostchat", opts.Telemetry.ServiceName)
	assert.NoError(t, opts.Validate())
}

func TestLoadOptions_File(t *testing.T) {
	path := writeOptions(t, `
version: 2.0.0
store_path: /tmp/ghostchat/config.json
dev_server_url: http://localhost:5173
force_dev_update_config: true
watch_store: false
updates:
  owner: someone
  repo: overlay
store_access:
  allowed: ["chatOptions.**", "keybinds.**"]
  denied: ["settings.isOpen"]
telemetry:
  endpoint: localhost:4318
log_level: warn
`)

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", opts.Version)
	assert.Equal(t, "/tmp/ghostchat/config.json", opts.StorePath)
	assert.Equal(t, "http://localhost:5173", opts.DevServerURL)
	assert.True(t, opts.ForceDevUpdateConfig)
	assert.False(t, opts.WatchStore)
	assert.Equal(t, "someone", opts.Updates.Owner)
	assert.Equal(t, "https://api.github.com", opts.Updates.APIBaseURL, "unset fields keep defaults")
	assert.Equal(t, "localhost:4318", opts.Telemetry.Endpoint)

	level, err := opts.Level()
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, level)

	policy, err := opts.AccessPolicy()
	require.NoError(t, err)
	assert.True(t, policy.IsAllowed("keybinds.vanish.keybind"))
	assert.False(t, policy.IsAllowed("settings.isOpen"))
}

func TestLoadOptions_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := LoadOptions(writeOptions(t, "version: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("empty version", func(t *testing.T) {
		_, err := LoadOptions(writeOptions(t, `version: ""`))
		assert.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		_, err := LoadOptions(writeOptions(t, "log_level: chatty\n"))
		assert.Error(t, err)
	})

	t.Run("bad access pattern", func(t *testing.T) {
		_, err := LoadOptions(writeOptions(t, "store_access:\n  denied: [\"[\"]\n"))
		assert.Error(t, err)
	})
}
