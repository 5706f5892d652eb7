package lifecycle

import (
	"fmt"

	"github.com/entrhq/ghostchat/pkg/state"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
)

// Settings owns the settings window handle. At most one settings window
// exists at a time.
type Settings struct {
	host    window.Host
	model   *state.Model
	slot    *window.Slot
	overlay *window.Slot
	entry   Entry

	onTeardown func()
}

// NewSettings creates the settings lifecycle. slot is shared with every
// component that sends to the settings window; overlay is read on close to
// tell it settings went away.
func NewSettings(host window.Host, model *state.Model, slot, overlay *window.Slot, entry Entry) *Settings {
	return &Settings{
		host:    host,
		model:   model,
		slot:    slot,
		overlay: overlay,
		entry:   entry,
	}
}

// OnTeardown registers fn to run after the settings window closes.
func (s *Settings) OnTeardown(fn func()) {
	s.onTeardown = fn
}

// IsOpen reports whether a live settings window exists.
func (s *Settings) IsOpen() bool {
	return s.slot.Get() != nil
}

// Open focuses the live settings window or creates one.
func (s *Settings) Open() error {
	if h := s.slot.Get(); h != nil {
		settingsLog.Debugf("Settings already open, focusing %s", h.ID())
		h.Focus()
		return nil
	}
	_, err := s.Create(SettingsRoute)
	return err
}

// Create builds a new settings window on route and marks settings open.
func (s *Settings) Create(route string) (window.Handle, error) {
	settingsLog.Infof("Building settings window")

	saved := s.model.Settings().SavedWindowState
	settingsLog.Infof("Settings window state %+v", saved)

	bounds := saved.Bounds()
	if bounds.Width == 0 {
		bounds.Width = state.DefaultSettingsWidth
	}
	if bounds.Height == 0 {
		bounds.Height = state.DefaultSettingsHeight
	}

	var h window.Handle
	hooks := window.Hooks{
		ReadyToShow: func() {
			if h != nil {
				h.Show()
			}
		},
		Close:        s.handleClose,
		WillNavigate: openExternally(s.host, settingsLog),
	}

	h, err := s.host.NewWindow(window.Options{
		Title:           "Ghost Chat - Settings",
		Bounds:          bounds,
		Resizable:       true,
		AutoHideMenuBar: true,
	}, hooks)
	if err != nil {
		settingsLog.Errorf("Failed to create settings window: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrCreateSettings, err)
	}
	s.slot.Set(h)

	if err := s.model.WriteSettings(state.SettingsPatch{IsOpen: state.Bool(true)}); err != nil {
		settingsLog.Errorf("Failed to mark settings open: %v", err)
	}

	h.SetAlwaysOnTop(true, window.LevelPopUpMenu)
	if bounds.IsUnpositioned() {
		h.Center()
	}

	if err := s.entry.load(h, route); err != nil {
		settingsLog.Errorf("Failed to load settings content: %v", err)
	}

	return h, nil
}

// Close closes the live settings window. With no live window it still
// clears a persisted open flag left behind.
func (s *Settings) Close() {
	if h := s.slot.Get(); h != nil {
		h.Close()
		return
	}
	if s.model.SettingsOpen() {
		s.handleClose()
	}
}

func (s *Settings) handleClose() {
	if h := s.slot.Get(); h != nil {
		bounds := h.Bounds()
		settingsLog.Infof("Closing, saved settings window state %+v", bounds)

		err := s.model.WriteSettings(state.SettingsPatch{
			IsOpen: state.Bool(false),
			SavedWindowState: &state.SavedSettingsWindow{
				X:      bounds.X,
				Y:      bounds.Y,
				Width:  bounds.Width,
				Height: bounds.Height,
				Theme:  s.model.Theme(),
			},
		})
		if err != nil {
			settingsLog.Errorf("Failed to persist settings state: %v", err)
		}
	} else {
		settingsLog.Errorf("Settings closed but reference is already gone: %v", window.ErrStaleHandle)
		if err := s.model.ResetSettings(); err != nil {
			settingsLog.Errorf("Failed to reset settings state: %v", err)
		}
	}

	s.slot.Clear()
	if s.onTeardown != nil {
		s.onTeardown()
	}
	s.overlay.Send(types.NewCloseSettingsNotification())
}
