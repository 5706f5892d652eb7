package updater

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/ghostchat/internal/testing/windowtest"
	"github.com/entrhq/ghostchat/pkg/state"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
)

type mockBackend struct {
	mock.Mock
	listener Listener
}

func (m *mockBackend) Configure(cfg Config, l Listener) {
	m.listener = l
	m.Called(cfg)
}

func (m *mockBackend) CheckForUpdatesAndNotify(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *mockBackend) DownloadUpdate(ctx context.Context) error {
	return m.Called().Error(0)
}

type fixture struct {
	backend  *mockBackend
	settings *windowtest.Handle
	c        *Coordinator
}

func newFixture(t *testing.T, platform window.Platform, channel state.UpdateChannel) *fixture {
	t.Helper()
	host := windowtest.NewHost()
	h, err := host.NewWindow(window.Options{}, window.Hooks{})
	require.NoError(t, err)
	slot := window.NewSlot("settings")
	slot.Set(h)

	backend := &mockBackend{}
	backend.On("Configure", mock.Anything).Return()

	return &fixture{
		backend:  backend,
		settings: host.Last(),
		c: New(Options{
			Backend:  backend,
			Settings: slot,
			Platform: platform,
			Channel:  channel,
		}),
	}
}

func TestNew_ConfiguresBackend(t *testing.T) {
	tests := []struct {
		channel         state.UpdateChannel
		allowPrerelease bool
	}{
		{channel: state.ChannelStable, allowPrerelease: false},
		{channel: state.ChannelBeta, allowPrerelease: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.channel), func(t *testing.T) {
			f := newFixture(t, window.PlatformWindows, tt.channel)
			f.backend.AssertCalled(t, "Configure", Config{
				AutoDownload:        false,
				DisableWebInstaller: true,
				AllowPrerelease:     tt.allowPrerelease,
			})
			assert.Equal(t, Idle, f.c.Status())
		})
	}
}

func TestCoordinator_PrereleaseHiddenOnStable(t *testing.T) {
	f := newFixture(t, window.PlatformWindows, state.ChannelStable)
	f.backend.On("CheckForUpdatesAndNotify").Return(nil)

	require.True(t, f.c.RequestCheck(context.Background()))
	f.c.UpdateAvailable("2.1.0-beta.3")

	assert.Equal(t, NoUpdateFound, f.c.Status())
	f.backend.AssertNotCalled(t, "DownloadUpdate")
	assert.Equal(t, []types.NotificationKind{types.NotifyUpdateNotAvailable}, f.settings.SentKinds())
}

func TestCoordinator_PrereleaseVisibleOnBeta(t *testing.T) {
	f := newFixture(t, window.PlatformWindows, state.ChannelBeta)
	f.backend.On("CheckForUpdatesAndNotify").Return(nil)
	f.backend.On("DownloadUpdate").Return(nil)

	f.c.RequestCheck(context.Background())
	f.c.UpdateAvailable("2.1.0-beta.3")

	assert.Equal(t, Downloading, f.c.Status())
	assert.Equal(t, "2.1.0-beta.3", f.c.Version())
}

func TestCoordinator_SilentPlatformDownloads(t *testing.T) {
	f := newFixture(t, window.PlatformWindows, state.ChannelStable)
	f.backend.On("CheckForUpdatesAndNotify").Return(nil)
	f.backend.On("DownloadUpdate").Return(nil).Once()

	f.c.RequestCheck(context.Background())
	f.c.UpdateAvailable("2.1.0")

	assert.Equal(t, Downloading, f.c.Status())
	f.backend.AssertExpectations(t)
	require.Len(t, f.settings.Sent, 1)
	assert.Equal(t, types.NewUpdateAvailableNotification("2.1.0"), f.settings.Sent[0])

	f.c.UpdateDownloaded()
	assert.Equal(t, Downloaded, f.c.Status())
	assert.Equal(t, types.NotifyUpdateDownloaded, f.settings.Sent[1].Kind)
}

func TestCoordinator_RestrictedPlatformRequiresManualUpdate(t *testing.T) {
	f := newFixture(t, window.PlatformDarwin, state.ChannelStable)
	f.backend.On("CheckForUpdatesAndNotify").Return(nil)

	f.c.RequestCheck(context.Background())
	f.c.UpdateAvailable("2.1.0")

	assert.Equal(t, ManualActionRequired, f.c.Status())
	f.backend.AssertNotCalled(t, "DownloadUpdate")
	assert.Equal(t, types.NewManualUpdateRequiredNotification("2.1.0"), f.settings.Sent[0])
}

func TestCoordinator_CheckNotReentered(t *testing.T) {
	f := newFixture(t, window.PlatformWindows, state.ChannelStable)
	f.backend.On("CheckForUpdatesAndNotify").Return(nil)
	f.backend.On("DownloadUpdate").Return(nil)

	assert.True(t, f.c.RequestCheck(context.Background()))
	assert.False(t, f.c.RequestCheck(context.Background()), "checking")

	f.c.UpdateAvailable("3.0.0")
	assert.False(t, f.c.RequestCheck(context.Background()), "downloading")
	f.backend.AssertNumberOfCalls(t, "CheckForUpdatesAndNotify", 1)
}

func TestCoordinator_TerminalStatesAllowNewCheck(t *testing.T) {
	f := newFixture(t, window.PlatformWindows, state.ChannelStable)
	f.backend.On("CheckForUpdatesAndNotify").Return(nil)

	f.c.RequestCheck(context.Background())
	f.c.UpdateNotAvailable()
	assert.Equal(t, NoUpdateFound, f.c.Status())

	assert.True(t, f.c.RequestCheck(context.Background()))
	assert.Equal(t, Checking, f.c.Status())
	f.backend.AssertNumberOfCalls(t, "CheckForUpdatesAndNotify", 2)
}

func TestCoordinator_IgnoresOutOfOrderEvents(t *testing.T) {
	f := newFixture(t, window.PlatformWindows, state.ChannelStable)
	f.backend.On("CheckForUpdatesAndNotify").Return(nil)
	f.backend.On("DownloadUpdate").Return(nil)

	f.c.UpdateDownloaded()
	assert.Equal(t, Idle, f.c.Status(), "nothing was downloading")

	f.c.RequestCheck(context.Background())
	f.c.UpdateDownloaded()
	assert.Equal(t, Checking, f.c.Status())

	f.c.UpdateAvailable("3.0.0")
	require.Equal(t, Downloading, f.c.Status())
	f.c.UpdateNotAvailable()
	assert.Equal(t, Downloading, f.c.Status(), "a late not-available does not cancel a download")

	f.c.UpdateDownloaded()
	assert.Equal(t, Downloaded, f.c.Status())
	assert.Equal(t, []types.NotificationKind{types.NotifyUpdateAvailable, types.NotifyUpdateDownloaded}, f.settings.SentKinds())
}

func TestCoordinator_ErrorsAreGeneric(t *testing.T) {
	f := newFixture(t, window.PlatformWindows, state.ChannelStable)
	f.backend.On("CheckForUpdatesAndNotify").Return(errors.New("dns lookup failed")).Once()
	f.backend.On("CheckForUpdatesAndNotify").Return(nil)

	assert.True(t, f.c.RequestCheck(context.Background()))
	assert.Equal(t, Errored, f.c.Status())
	require.Len(t, f.settings.Sent, 1)
	assert.Equal(t, types.NewUpdateErrorNotification(), f.settings.Sent[0], "no detail reaches the window")

	f.backend.On("DownloadUpdate").Return(errors.New("disk full"))
	f.c.RequestCheck(context.Background())
	f.c.UpdateAvailable("9.9.9")
	assert.Equal(t, Errored, f.c.Status())
}

func TestCoordinator_NoSettingsWindowIsSilent(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Configure", mock.Anything).Return()
	backend.On("CheckForUpdatesAndNotify").Return(nil)

	c := New(Options{Backend: backend, Settings: window.NewSlot("settings"), Platform: window.PlatformLinux})
	c.RequestCheck(context.Background())
	c.UpdateNotAvailable()
	assert.Equal(t, NoUpdateFound, c.Status())
}

func TestScheduled_DefersEvents(t *testing.T) {
	var queue []func()
	schedule := func(fn func()) { queue = append(queue, fn) }

	backend := &mockBackend{}
	backend.On("Configure", mock.Anything).Return()
	backend.On("CheckForUpdatesAndNotify").Return(nil)

	c := New(Options{
		Backend:  backend,
		Settings: window.NewSlot("settings"),
		Platform: window.PlatformLinux,
		Schedule: schedule,
	})
	c.RequestCheck(context.Background())

	backend.listener.UpdateNotAvailable()
	assert.Equal(t, Checking, c.Status(), "events wait for the scheduler")

	require.Len(t, queue, 1)
	queue[0]()
	assert.Equal(t, NoUpdateFound, c.Status())
}

func TestIsPrerelease(t *testing.T) {
	assert.True(t, isPrerelease("2.1.0-beta.3"))
	assert.True(t, isPrerelease("v1.0.0-rc.1"))
	assert.False(t, isPrerelease("2.1.0"))
	assert.True(t, isPrerelease("not-a-version-beta"))
	assert.False(t, isPrerelease("garbage"))
}
