package lifecycle

import (
	"fmt"

	"github.com/entrhq/ghostchat/pkg/state"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
)

// Overlay owns the overlay window handle.
type Overlay struct {
	host     window.Host
	model    *state.Model
	slot     *window.Slot
	platform window.Platform

	onClosed func()
}

// NewOverlay creates the overlay lifecycle. slot is filled on Create and
// cleared once the window is gone.
func NewOverlay(host window.Host, model *state.Model, slot *window.Slot, platform window.Platform) *Overlay {
	return &Overlay{
		host:     host,
		model:    model,
		slot:     slot,
		platform: platform,
	}
}

// OnClosed registers fn to run after the overlay window is destroyed.
func (o *Overlay) OnClosed(fn func()) {
	o.onClosed = fn
}

// Create builds the overlay window from the persisted record. The window is
// shown only after its first paint.
func (o *Overlay) Create(entry Entry) (window.Handle, error) {
	overlayLog.Infof("Building overlay window")

	saved := o.model.Overlay()
	overlayLog.Infof("Overlay window state %+v", saved)

	bounds := saved.Bounds()
	if bounds.Width == 0 {
		bounds.Width = state.DefaultOverlayWidth
	}
	if bounds.Height == 0 {
		bounds.Height = state.DefaultOverlayHeight
	}

	opts := window.Options{
		Title:          "Ghost Chat",
		Bounds:         bounds,
		Transparent:    true,
		Frameless:      true,
		Resizable:      true,
		HiddenTitleBar: !o.platform.IsDarwin(),
	}
	if o.platform.IsDarwin() {
		opts.VisibleOnAllWorkspaces = true
	}

	var h window.Handle
	hooks := window.Hooks{
		ReadyToShow: func() {
			if h != nil {
				h.Show()
			}
		},
		Focus:        func() { o.reassertTransparency(h) },
		Blur:         func() { o.reassertTransparency(h) },
		Close:        o.handleClose,
		Closed:       o.handleClosed,
		WillNavigate: openExternally(o.host, overlayLog),
	}

	h, err := o.host.NewWindow(opts, hooks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateOverlay, err)
	}
	o.slot.Set(h)

	// A vanished overlay comes back vanished.
	h.SetIgnoreMouseEvents(saved.IsClickThrough)
	h.SetAlwaysOnTop(true, window.LevelPopUpMenu)
	if bounds.IsUnpositioned() {
		h.Center()
	}

	if o.platform.IsDarwin() && o.model.HideDockIcon() {
		// After the window exists, or the dock icon comes back.
		o.host.HideDock()
	}

	o.seedTheme()

	if err := entry.load(h, ""); err != nil {
		overlayLog.Errorf("Failed to load overlay content: %v", err)
	}

	return h, nil
}

func (o *Overlay) seedTheme() {
	theme := types.ThemeLight
	if o.host.PrefersDarkColors() {
		theme = types.ThemeDark
	}
	seeded, err := o.model.SeedTheme(theme)
	if err != nil {
		overlayLog.Errorf("Failed to seed theme: %v", err)
		return
	}
	if seeded {
		overlayLog.Infof("Seeded theme %s from system preference", theme)
	}
}

func (o *Overlay) reassertTransparency(h window.Handle) {
	if h != nil {
		h.SetBackgroundColor(window.Transparent)
	}
}

// handleClose persists the overlay record while the handle is still usable.
func (o *Overlay) handleClose() {
	if err := o.model.WriteSettings(state.SettingsPatch{IsOpen: state.Bool(false)}); err != nil {
		overlayLog.Errorf("Failed to clear settings open flag: %v", err)
	}

	h := o.slot.Get()
	if h == nil {
		overlayLog.Errorf("Overlay closed but reference is already gone: %v", window.ErrStaleHandle)
		if err := o.model.ResetOverlay(); err != nil {
			overlayLog.Errorf("Failed to reset overlay state: %v", err)
		}
		return
	}

	bounds := h.Bounds()
	current := o.model.Overlay()
	overlayLog.Infof("Closing, saved overlay window state %+v", bounds)

	patch := state.OverlayPatch{
		Bounds:         &bounds,
		IsClickThrough: &current.IsClickThrough,
		IsTransparent:  &current.IsTransparent,
	}
	if current.Theme != "" {
		patch.Theme = &current.Theme
	}
	if err := o.model.WriteOverlay(patch); err != nil {
		overlayLog.Errorf("Failed to persist overlay state: %v", err)
	}
}

// handleClosed runs after destruction. The chat channel only outlives the
// window when the overlay was vanished.
func (o *Overlay) handleClosed() {
	o.slot.Clear()

	if !o.model.Overlay().IsTransparent {
		if err := o.model.ClearChatChannel(); err != nil {
			overlayLog.Errorf("Failed to clear chat channel: %v", err)
		}
	}

	if o.onClosed != nil {
		o.onClosed()
	}
}
