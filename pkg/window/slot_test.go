package window_test

import (
	"testing"

	"github.com/entrhq/ghostchat/internal/testing/windowtest"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot_EmptyIsSilent(t *testing.T) {
	slot := window.NewSlot("settings")

	assert.Equal(t, "settings", slot.Name())
	assert.Nil(t, slot.Get())
	assert.False(t, slot.Send(types.NewRerenderNotification()))
	assert.False(t, slot.Do(func(window.Handle) { t.Fatal("must not run") }))
}

func TestSlot_DestroyedHandleReadsAsAbsent(t *testing.T) {
	host := windowtest.NewHost()
	h, err := host.NewWindow(window.Options{}, window.Hooks{})
	require.NoError(t, err)

	slot := window.NewSlot("overlay")
	slot.Set(h)
	require.NotNil(t, slot.Get())

	assert.True(t, slot.Send(types.NewVanishNotification()))
	assert.Equal(t, []types.NotificationKind{types.NotifyVanish}, host.Last().SentKinds())

	host.Last().Destroy()

	assert.Nil(t, slot.Get(), "destroyed handles must not be returned")
	assert.False(t, slot.Send(types.NewShowAppNotification()))

	slot.Clear()
	assert.Nil(t, slot.Get())
}

func TestBounds_IsUnpositioned(t *testing.T) {
	assert.True(t, window.Bounds{Width: 400, Height: 800}.IsUnpositioned())
	assert.False(t, window.Bounds{X: 0, Y: 10}.IsUnpositioned())
	assert.False(t, window.Bounds{X: 10, Y: 0}.IsUnpositioned())
}

func TestPlatform(t *testing.T) {
	assert.False(t, window.PlatformDarwin.SupportsSilentUpdate())
	assert.True(t, window.PlatformWindows.SupportsSilentUpdate())
	assert.True(t, window.PlatformLinux.SupportsSilentUpdate())
	assert.True(t, window.PlatformDarwin.IsDarwin())
	assert.NotEmpty(t, window.CurrentPlatform().String())
}
