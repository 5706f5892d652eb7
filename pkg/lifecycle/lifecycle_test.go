package lifecycle

import (
	"errors"
	"testing"

	"github.com/entrhq/ghostchat/internal/testing/windowtest"
	"github.com/entrhq/ghostchat/pkg/config"
	"github.com/entrhq/ghostchat/pkg/state"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEntry = Entry{IndexHTML: "dist/index.html"}

type fixture struct {
	host         *windowtest.Host
	model        *state.Model
	overlaySlot  *window.Slot
	settingsSlot *window.Slot
	overlay      *Overlay
	settings     *Settings
}

func newFixture(t *testing.T, platform window.Platform) *fixture {
	t.Helper()
	f := &fixture{
		host:         windowtest.NewHost(),
		model:        state.NewModel(config.NewMemoryStore(state.Defaults())),
		overlaySlot:  window.NewSlot("overlay"),
		settingsSlot: window.NewSlot("settings"),
	}
	f.overlay = NewOverlay(f.host, f.model, f.overlaySlot, platform)
	f.settings = NewSettings(f.host, f.model, f.settingsSlot, f.overlaySlot, testEntry)
	return f
}

func (f *fixture) createOverlay(t *testing.T) *windowtest.Handle {
	t.Helper()
	_, err := f.overlay.Create(testEntry)
	require.NoError(t, err)
	return f.host.Last()
}

func TestOverlay_CentersWhenNeverPositioned(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	h := f.createOverlay(t)

	assert.Equal(t, 1, h.Centered)
	b := h.Bounds()
	assert.NotEqual(t, 0, b.X)
	assert.NotEqual(t, 0, b.Y)
	assert.Equal(t, 400, b.Width)
	assert.Equal(t, 800, b.Height)
}

func TestOverlay_UsesPersistedPosition(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	require.NoError(t, f.model.WriteOverlay(state.OverlayPatch{Bounds: &window.Bounds{X: 0, Y: 40, Width: 350, Height: 700}}))

	h := f.createOverlay(t)

	assert.Zero(t, h.Centered, "only a 0,0 origin is centered")
	assert.Equal(t, window.Bounds{X: 0, Y: 40, Width: 350, Height: 700}, h.Bounds())
}

func TestOverlay_RestoresVanishedMode(t *testing.T) {
	tests := []struct {
		name     string
		vanished bool
	}{
		{"visible", false},
		{"vanished", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, window.PlatformLinux)
			require.NoError(t, f.model.WriteOverlay(state.VanishPatch(tt.vanished, nil)))

			h := f.createOverlay(t)

			assert.Equal(t, tt.vanished, h.IgnoreMouse)
			assert.Equal(t, []bool{tt.vanished}, h.IgnoreCalls)
		})
	}
}

func TestOverlay_WindowOptions(t *testing.T) {
	f := newFixture(t, window.PlatformWindows)
	h := f.createOverlay(t)

	assert.Equal(t, "Ghost Chat", h.Opts.Title)
	assert.True(t, h.Opts.Transparent)
	assert.True(t, h.Opts.Frameless)
	assert.True(t, h.Opts.HiddenTitleBar)
	assert.False(t, h.Opts.Maximizable)
	assert.False(t, h.Opts.Fullscreenable)
	assert.False(t, h.Opts.VisibleOnAllWorkspaces)
	assert.Equal(t, window.LevelPopUpMenu, h.OnTop[true])
	assert.Equal(t, "dist/index.html", h.LoadedFile)
	assert.Empty(t, h.LoadedHash)
	assert.Zero(t, f.host.DockHidden)
}

func TestOverlay_Darwin(t *testing.T) {
	f := newFixture(t, window.PlatformDarwin)
	require.NoError(t, f.model.Store().Set(state.KeyHideDockIcon, true))

	h := f.createOverlay(t)

	assert.True(t, h.Opts.VisibleOnAllWorkspaces)
	assert.False(t, h.Opts.HiddenTitleBar)
	assert.Equal(t, 1, f.host.DockHidden)
}

func TestOverlay_DevServer(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	_, err := f.overlay.Create(Entry{DevServerURL: "http://localhost:5173"})
	require.NoError(t, err)

	h := f.host.Last()
	assert.Equal(t, "http://localhost:5173", h.LoadedURL)
	assert.True(t, h.DevTools)
	assert.Empty(t, h.LoadedFile)
}

func TestOverlay_ShowsAfterFirstPaint(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	h := f.createOverlay(t)

	assert.Zero(t, h.Shown)
	h.FireReadyToShow()
	assert.Equal(t, 1, h.Shown)
}

func TestOverlay_FocusReassertsTransparency(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	h := f.createOverlay(t)

	h.FireFocus()
	h.FireBlur()
	assert.Equal(t, []string{window.Transparent, window.Transparent}, h.Background)
}

func TestOverlay_NavigationOpensExternally(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	h := f.createOverlay(t)

	assert.True(t, h.Navigate("https://example.com"))
	assert.Equal(t, []string{"https://example.com"}, f.host.External)
}

func TestOverlay_SeedsThemeFromSystem(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	f.host.Dark = false
	f.createOverlay(t)

	assert.Equal(t, types.ThemeLight, f.model.Overlay().Theme)
	assert.Equal(t, types.ThemeLight, f.model.Settings().SavedWindowState.Theme)
}

func TestOverlay_CreateFailureIsFatal(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	f.host.NewWindowErr = errors.New("no display")

	_, err := f.overlay.Create(testEntry)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCreateOverlay)
	assert.Nil(t, f.overlaySlot.Get())
}

func TestOverlay_ClosePersistsBoundsAndFlags(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	h := f.createOverlay(t)
	require.NoError(t, f.model.WriteOverlay(state.VanishPatch(true, nil)))
	require.NoError(t, f.model.WriteSettings(state.SettingsPatch{IsOpen: state.Bool(true)}))

	closed := 0
	f.overlay.OnClosed(func() { closed++ })
	h.Move(window.Bounds{X: 11, Y: 22, Width: 333, Height: 444})
	h.Close()

	o := f.model.Overlay()
	assert.Equal(t, window.Bounds{X: 11, Y: 22, Width: 333, Height: 444}, o.Bounds())
	assert.True(t, o.IsClickThrough)
	assert.True(t, o.IsTransparent)
	assert.Equal(t, types.ThemeLight, o.Theme, "seeded from the light system preference")
	assert.False(t, f.model.SettingsOpen())
	assert.Nil(t, f.overlaySlot.Get())
	assert.Equal(t, 1, closed)
}

func TestOverlay_CloseWithStaleHandleResets(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	h := f.createOverlay(t)
	require.NoError(t, f.model.WriteOverlay(state.VanishPatch(true, &window.Bounds{X: 5, Y: 5, Width: 10, Height: 10})))

	f.overlaySlot.Clear()
	h.FireClose()

	o := f.model.Overlay()
	assert.Equal(t, 400, o.Width)
	assert.False(t, o.IsClickThrough)
	assert.False(t, o.IsTransparent)
}

func TestOverlay_ClosedClearsChannelUnlessVanished(t *testing.T) {
	tests := []struct {
		name        string
		vanished    bool
		wantChannel string
	}{
		{name: "visible clears channel", vanished: false, wantChannel: ""},
		{name: "vanished keeps channel", vanished: true, wantChannel: "ghostchat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, window.PlatformLinux)
			h := f.createOverlay(t)
			require.NoError(t, f.model.Store().Set(state.KeyChatChannel, "ghostchat"))
			require.NoError(t, f.model.WriteOverlay(state.VanishPatch(tt.vanished, nil)))

			h.Close()

			assert.Equal(t, tt.wantChannel, f.model.ChatChannel())
		})
	}
}

func TestSettings_OpenIsSingleInstance(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)

	require.NoError(t, f.settings.Open())
	require.Len(t, f.host.Windows, 1)
	first := f.host.Last()

	require.NoError(t, f.settings.Open())
	assert.Len(t, f.host.Windows, 1, "a live settings window is focused, not duplicated")
	assert.Equal(t, 1, first.Focused)
	assert.True(t, f.settings.IsOpen())
}

func TestSettings_Create(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	require.NoError(t, f.settings.Open())
	h := f.host.Last()

	assert.True(t, f.model.SettingsOpen())
	assert.Equal(t, "Ghost Chat - Settings", h.Opts.Title)
	assert.True(t, h.Opts.AutoHideMenuBar)
	assert.True(t, h.Opts.Resizable)
	assert.False(t, h.Opts.Maximizable)
	assert.Equal(t, window.LevelPopUpMenu, h.OnTop[true])
	assert.Equal(t, 1, h.Centered)
	assert.Equal(t, 900, h.Bounds().Width)
	assert.Equal(t, "dist/index.html", h.LoadedFile)
	assert.Equal(t, SettingsRoute, h.LoadedHash)

	assert.Zero(t, h.Shown)
	h.FireReadyToShow()
	assert.Equal(t, 1, h.Shown)

	assert.True(t, h.Navigate("https://example.com/docs"))
	assert.Equal(t, []string{"https://example.com/docs"}, f.host.External)
}

func TestSettings_DevServerRoute(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	f.settings = NewSettings(f.host, f.model, f.settingsSlot, f.overlaySlot, Entry{DevServerURL: "http://localhost:5173"})

	require.NoError(t, f.settings.Open())
	assert.Equal(t, "http://localhost:5173#settings/general", f.host.Last().LoadedURL)
}

func TestSettings_ClosePersistsAndNotifiesOverlay(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	overlay := f.createOverlay(t)
	require.NoError(t, f.settings.Open())
	h := f.host.Last()

	torn := 0
	f.settings.OnTeardown(func() { torn++ })
	h.Move(window.Bounds{X: 30, Y: 40, Width: 800, Height: 600})
	h.Close()

	s := f.model.Settings()
	assert.False(t, s.IsOpen)
	assert.Equal(t, window.Bounds{X: 30, Y: 40, Width: 800, Height: 600}, s.SavedWindowState.Bounds())
	assert.Equal(t, f.model.Theme(), s.SavedWindowState.Theme)
	assert.False(t, f.settings.IsOpen())
	assert.Equal(t, 1, torn)
	assert.Contains(t, overlay.SentKinds(), types.NotifyCloseSettings)
}

func TestSettings_CloseAlwaysClearsOpenFlag(t *testing.T) {
	t.Run("stale handle on close hook", func(t *testing.T) {
		f := newFixture(t, window.PlatformLinux)
		require.NoError(t, f.settings.Open())
		h := f.host.Last()

		f.settingsSlot.Clear()
		h.FireClose()

		assert.False(t, f.model.SettingsOpen())
	})

	t.Run("no handle at all", func(t *testing.T) {
		f := newFixture(t, window.PlatformLinux)
		require.NoError(t, f.model.WriteSettings(state.SettingsPatch{IsOpen: state.Bool(true)}))

		f.settings.Close()

		assert.False(t, f.model.SettingsOpen())
	})

	t.Run("destroyed underneath", func(t *testing.T) {
		f := newFixture(t, window.PlatformLinux)
		require.NoError(t, f.settings.Open())
		f.host.Last().Destroy()

		f.settings.Close()

		assert.False(t, f.model.SettingsOpen())
	})
}

func TestSettings_CreateFailureIsRetryable(t *testing.T) {
	f := newFixture(t, window.PlatformLinux)
	f.host.NewWindowErr = errors.New("out of handles")

	err := f.settings.Open()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCreateSettings)
	assert.False(t, f.settings.IsOpen())
	assert.False(t, f.model.SettingsOpen())

	f.host.NewWindowErr = nil
	require.NoError(t, f.settings.Open())
	assert.True(t, f.settings.IsOpen())
}
