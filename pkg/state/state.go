// Package state is the typed view over the persisted store: the overlay and
// settings window records, updater preferences, the keybind table and the
// session-scoped chat channel.
package state

import (
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
)

// Store sections and keys.
const (
	SectionOverlay     = "savedWindowState"
	SectionSettings    = "settings"
	SectionUpdater     = "updater"
	SectionKeybinds    = "keybinds"
	SectionChatOptions = "chatOptions"
	SectionGeneral     = "general"

	KeyOverlayTheme   = SectionOverlay + ".theme"
	KeySettingsTheme  = SectionSettings + ".savedWindowState.theme"
	KeySettingsIsOpen = SectionSettings + ".isOpen"
	KeyClickThrough   = SectionOverlay + ".isClickThrough"
	KeyChatChannel    = SectionChatOptions + ".channel"
	KeyHideDockIcon   = SectionGeneral + ".mac.hideDockIcon"
)

// Default window sizes.
const (
	DefaultOverlayWidth   = 400
	DefaultOverlayHeight  = 800
	DefaultSettingsWidth  = 900
	DefaultSettingsHeight = 900
)

// OverlayState is the persisted overlay record. IsClickThrough and
// IsTransparent move together on every vanish transition.
type OverlayState struct {
	X              int         `json:"x"`
	Y              int         `json:"y"`
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	IsClickThrough bool        `json:"isClickThrough"`
	IsTransparent  bool        `json:"isTransparent"`
	Theme          types.Theme `json:"theme,omitempty"`
}

// Bounds returns the persisted geometry.
func (o OverlayState) Bounds() window.Bounds {
	return window.Bounds{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// SavedSettingsWindow is the persisted settings window geometry and theme.
type SavedSettingsWindow struct {
	X      int         `json:"x"`
	Y      int         `json:"y"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Theme  types.Theme `json:"theme,omitempty"`
}

// Bounds returns the persisted geometry.
func (s SavedSettingsWindow) Bounds() window.Bounds {
	return window.Bounds{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// SettingsState is the persisted settings window record. IsOpen is true only
// while a live settings window exists in this process.
type SettingsState struct {
	IsOpen           bool                `json:"isOpen"`
	SavedWindowState SavedSettingsWindow `json:"savedWindowState"`
}

// UpdateChannel selects which releases are visible.
type UpdateChannel string

const (
	ChannelStable UpdateChannel = "stable"
	ChannelBeta   UpdateChannel = "beta"
)

// UpdaterSettings is read-only to the engine.
type UpdaterSettings struct {
	Channel UpdateChannel `json:"channel"`
}

// AllowsPrerelease reports whether prerelease builds are visible.
func (u UpdaterSettings) AllowsPrerelease() bool {
	return u.Channel == ChannelBeta
}

// Keybind is one entry of the hotkey table. An empty Keybind is unset.
type Keybind struct {
	Keybind           string `json:"keybind"`
	ActivationMessage string `json:"activationMessage"`
}

// NamedKeybind pairs a keybind with its table key.
type NamedKeybind struct {
	Name string
	Keybind
}

// Defaults returns the first-run contents of every section.
func Defaults() map[string]any {
	return map[string]any{
		SectionOverlay: OverlayState{
			Width:  DefaultOverlayWidth,
			Height: DefaultOverlayHeight,
		},
		SectionSettings: SettingsState{
			SavedWindowState: SavedSettingsWindow{
				Width:  DefaultSettingsWidth,
				Height: DefaultSettingsHeight,
			},
		},
		SectionUpdater: UpdaterSettings{Channel: ChannelStable},
		SectionKeybinds: map[string]Keybind{
			"vanish": {Keybind: "alt+v", ActivationMessage: "Vanish keybind pressed"},
		},
		SectionChatOptions: map[string]any{"channel": ""},
		SectionGeneral: map[string]any{
			"language": "en-US",
			"mac":      map[string]any{"hideDockIcon": false},
		},
	}
}
