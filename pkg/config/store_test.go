package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefaults() map[string]any {
	return map[string]any{
		"savedWindowState": map[string]any{
			"x":              0,
			"y":              0,
			"width":          400,
			"height":         800,
			"isClickThrough": false,
			"isTransparent":  false,
		},
		"settings": map[string]any{
			"isOpen": false,
		},
	}
}

func TestNewFileStore(t *testing.T) {
	t.Run("creates store with custom path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath, nil)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}

		if store.Path() != configPath {
			t.Errorf("Expected path %s, got %s", configPath, store.Path())
		}

		if _, err := os.Stat(configPath); !os.IsNotExist(err) {
			t.Error("New store should not write a file before the first mutation")
		}
	})

	t.Run("loads existing config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		content := map[string]any{
			"version": "1.0",
			"data": map[string]any{
				"chatOptions": map[string]any{"channel": "ghostchat"},
			},
		}
		data, _ := json.MarshalIndent(content, "", "  ")
		if err := os.WriteFile(configPath, data, 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		store, err := NewFileStore(configPath, nil)
		require.NoError(t, err)

		value, ok := store.Get("chatOptions.channel")
		require.True(t, ok)
		assert.Equal(t, "ghostchat", value)
	})

	t.Run("fails on corrupt file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte("{not json"), 0644))

		_, err := NewFileStore(configPath, nil)
		assert.Error(t, err)
	})
}

func TestFileStore_GetFallsBackToDefaults(t *testing.T) {
	store := NewMemoryStore(testDefaults())

	width, ok := store.Get("savedWindowState.width")
	require.True(t, ok)
	assert.Equal(t, float64(400), width)

	_, ok = store.Get("savedWindowState.theme")
	assert.False(t, ok, "theme has no default")

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestFileStore_SetMergesOverDefaults(t *testing.T) {
	store := NewMemoryStore(testDefaults())

	require.NoError(t, store.Set("savedWindowState.theme", "dark"))
	require.NoError(t, store.Set("savedWindowState.x", 120))

	section, ok := store.Get("savedWindowState")
	require.True(t, ok)

	m := section.(map[string]any)
	assert.Equal(t, "dark", m["theme"])
	assert.Equal(t, float64(120), m["x"])
	assert.Equal(t, float64(800), m["height"], "untouched fields keep their defaults")
}

func TestFileStore_SetCreatesIntermediateSections(t *testing.T) {
	store := NewMemoryStore(nil)

	require.NoError(t, store.Set("general.mac.hideDockIcon", true))

	value, ok := store.Get("general.mac.hideDockIcon")
	require.True(t, ok)
	assert.Equal(t, true, value)
	assert.True(t, store.Has("general.mac"))
}

func TestFileStore_GetReturnsCopies(t *testing.T) {
	store := NewMemoryStore(testDefaults())
	require.NoError(t, store.Set("settings.isOpen", true))

	section, _ := store.Get("settings")
	section.(map[string]any)["isOpen"] = false

	value, _ := store.Get("settings.isOpen")
	assert.Equal(t, true, value, "mutating a returned map must not change the store")
}

func TestFileStore_Delete(t *testing.T) {
	store := NewMemoryStore(testDefaults())

	require.NoError(t, store.Set("chatOptions.channel", "lobby"))
	require.NoError(t, store.Delete("chatOptions.channel"))

	assert.False(t, store.Has("chatOptions.channel"))

	// deleting below a missing section is a no-op
	require.NoError(t, store.Delete("nothing.here"))
}

func TestFileStore_DeleteHidesDefault(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	store, err := NewFileStore(configPath, testDefaults())
	require.NoError(t, err)

	require.NoError(t, store.Delete("savedWindowState.isTransparent"))
	assert.False(t, store.Has("savedWindowState.isTransparent"))

	section, ok := store.Get("savedWindowState")
	require.True(t, ok)
	assert.NotContains(t, section, "isTransparent")
	assert.Contains(t, section, "isClickThrough")

	reopened, err := NewFileStore(configPath, testDefaults())
	require.NoError(t, err)
	assert.False(t, reopened.Has("savedWindowState.isTransparent"), "deletion survives a restart")

	require.NoError(t, reopened.Set("savedWindowState.isTransparent", true))
	value, _ := reopened.Get("savedWindowState.isTransparent")
	assert.Equal(t, true, value)

	require.NoError(t, reopened.Delete("settings"))
	assert.False(t, reopened.Has("settings.isOpen"))
	require.NoError(t, reopened.Reset("settings"))
	assert.True(t, reopened.Has("settings.isOpen"))
}

func TestFileStore_Reset(t *testing.T) {
	store := NewMemoryStore(testDefaults())

	require.NoError(t, store.Set("settings.isOpen", true))
	require.NoError(t, store.Reset("settings"))

	value, ok := store.Get("settings.isOpen")
	require.True(t, ok)
	assert.Equal(t, false, value)

	assert.ErrorIs(t, store.Reset("settings.isOpen"), ErrInvalidPath)
}

func TestFileStore_InvalidPaths(t *testing.T) {
	store := NewMemoryStore(nil)

	for _, path := range []string{"", ".", "a..b", "trailing."} {
		assert.ErrorIs(t, store.Set(path, 1), ErrInvalidPath, "path %q", path)
		assert.False(t, store.Has(path), "path %q", path)
	}
}

func TestFileStore_PersistsAcrossRestart(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.json")

	store, err := NewFileStore(configPath, testDefaults())
	require.NoError(t, err)
	require.NoError(t, store.Set("savedWindowState.isTransparent", true))

	_, err = os.Stat(configPath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")

	reopened, err := NewFileStore(configPath, testDefaults())
	require.NoError(t, err)

	value, ok := reopened.Get("savedWindowState.isTransparent")
	require.True(t, ok)
	assert.Equal(t, true, value)
}

func TestFileStore_ReloadIfChanged(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	store, err := NewFileStore(configPath, nil)
	require.NoError(t, err)
	require.NoError(t, store.Set("chatOptions.channel", "one"))

	changed, err := store.ReloadIfChanged()
	require.NoError(t, err)
	assert.False(t, changed, "own writes are not reported as changes")

	external := `{"version":"1.0","data":{"chatOptions":{"channel":"two"}}}`
	require.NoError(t, os.WriteFile(configPath, []byte(external), 0600))

	changed, err = store.ReloadIfChanged()
	require.NoError(t, err)
	assert.True(t, changed)

	value, _ := store.Get("chatOptions.channel")
	assert.Equal(t, "two", value)
}

func TestDecode(t *testing.T) {
	store := NewMemoryStore(testDefaults())
	require.NoError(t, store.Set("savedWindowState.theme", "light"))

	var got struct {
		Width int    `json:"width"`
		Theme string `json:"theme"`
	}
	require.NoError(t, Decode(store, "savedWindowState", &got))
	assert.Equal(t, 400, got.Width)
	assert.Equal(t, "light", got.Theme)

	got.Theme = "unchanged"
	require.NoError(t, Decode(store, "missing", &got))
	assert.Equal(t, "unchanged", got.Theme)
}
