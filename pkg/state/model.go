package state

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/entrhq/ghostchat/pkg/config"
	"github.com/entrhq/ghostchat/pkg/logging"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
)

var stateLog *logging.Logger

func init() {
	var err error
	stateLog, err = logging.NewLogger("state")
	if err != nil {
		stateLog.Warnf("Failed to initialize state logger, using stderr fallback: %v", err)
	}
}

// OverlayPatch lists the overlay fields to change. Nil fields are untouched.
type OverlayPatch struct {
	Bounds         *window.Bounds
	IsClickThrough *bool
	IsTransparent  *bool
	Theme          *types.Theme
}

// VanishPatch sets click-through and transparency together, optionally
// capturing new geometry.
func VanishPatch(vanished bool, bounds *window.Bounds) OverlayPatch {
	return OverlayPatch{
		Bounds:         bounds,
		IsClickThrough: &vanished,
		IsTransparent:  &vanished,
	}
}

func (p OverlayPatch) fields() map[string]any {
	fields := make(map[string]any)
	if p.Bounds != nil {
		fields["x"] = p.Bounds.X
		fields["y"] = p.Bounds.Y
		fields["width"] = p.Bounds.Width
		fields["height"] = p.Bounds.Height
	}
	if p.IsClickThrough != nil {
		fields["isClickThrough"] = *p.IsClickThrough
	}
	if p.IsTransparent != nil {
		fields["isTransparent"] = *p.IsTransparent
	}
	if p.Theme != nil {
		fields["theme"] = string(*p.Theme)
	}
	return fields
}

// SettingsPatch lists the settings fields to change. Nil fields are untouched.
type SettingsPatch struct {
	IsOpen           *bool
	SavedWindowState *SavedSettingsWindow
}

func (p SettingsPatch) fields() map[string]any {
	fields := make(map[string]any)
	if p.IsOpen != nil {
		fields["isOpen"] = *p.IsOpen
	}
	if p.SavedWindowState != nil {
		fields["savedWindowState"] = *p.SavedWindowState
	}
	return fields
}

// Bool returns a pointer to b, for patches.
func Bool(b bool) *bool {
	return &b
}

// Model reads and writes the typed sections of a store. Every write merges
// into the existing section in a single store mutation.
type Model struct {
	store config.Store
}

// NewModel wraps store.
func NewModel(store config.Store) *Model {
	return &Model{store: store}
}

// Store returns the underlying store.
func (m *Model) Store() config.Store {
	return m.store
}

// Read decodes section into v. A section that was never written decodes
// from its defaults.
func (m *Model) Read(section string, v any) error {
	return config.Decode(m.store, section, v)
}

// Write merges fields into section without clobbering other fields.
func (m *Model) Write(section string, fields map[string]any) error {
	current := make(map[string]any)
	if existing, ok := m.store.Get(section); ok {
		if asMap, ok := existing.(map[string]any); ok {
			current = asMap
		}
	}
	for key, value := range fields {
		current[key] = value
	}
	if err := m.store.Set(section, current); err != nil {
		return fmt.Errorf("failed to write %s: %w", section, err)
	}
	return nil
}

// Reset restores section to its defaults.
func (m *Model) Reset(section string) error {
	if err := m.store.Reset(section); err != nil {
		return fmt.Errorf("failed to reset %s: %w", section, err)
	}
	return nil
}

// Overlay returns the overlay record. Undecodable data is logged and the
// defaults are returned; reads never fail.
func (m *Model) Overlay() OverlayState {
	s := OverlayState{Width: DefaultOverlayWidth, Height: DefaultOverlayHeight}
	if err := m.Read(SectionOverlay, &s); err != nil {
		stateLog.Errorf("Overlay state unreadable, using defaults: %v", err)
		return OverlayState{Width: DefaultOverlayWidth, Height: DefaultOverlayHeight}
	}
	return s
}

// WriteOverlay merges p into the overlay record.
func (m *Model) WriteOverlay(p OverlayPatch) error {
	return m.Write(SectionOverlay, p.fields())
}

// ResetOverlay restores the overlay record to defaults.
func (m *Model) ResetOverlay() error {
	return m.Reset(SectionOverlay)
}

// Settings returns the settings record, with the same fallback as Overlay.
func (m *Model) Settings() SettingsState {
	fallback := SettingsState{SavedWindowState: SavedSettingsWindow{Width: DefaultSettingsWidth, Height: DefaultSettingsHeight}}
	s := fallback
	if err := m.Read(SectionSettings, &s); err != nil {
		stateLog.Errorf("Settings state unreadable, using defaults: %v", err)
		return fallback
	}
	return s
}

// WriteSettings merges p into the settings record.
func (m *Model) WriteSettings(p SettingsPatch) error {
	return m.Write(SectionSettings, p.fields())
}

// ResetSettings restores the settings record to defaults.
func (m *Model) ResetSettings() error {
	return m.Reset(SectionSettings)
}

// SettingsOpen reports the persisted settings-open flag.
func (m *Model) SettingsOpen() bool {
	return m.Settings().IsOpen
}

// Updater returns the updater preferences, stable when unreadable.
func (m *Model) Updater() UpdaterSettings {
	u := UpdaterSettings{Channel: ChannelStable}
	if err := m.Read(SectionUpdater, &u); err != nil {
		stateLog.Errorf("Updater settings unreadable, using stable: %v", err)
		return UpdaterSettings{Channel: ChannelStable}
	}
	return u
}

// Keybinds returns the hotkey table sorted by name. Entries that cannot be
// decoded are skipped and logged.
func (m *Model) Keybinds() []NamedKeybind {
	raw, ok := m.store.Get(SectionKeybinds)
	if !ok {
		return nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		stateLog.Errorf("Keybind table has unexpected shape %T", raw)
		return nil
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]NamedKeybind, 0, len(names))
	for _, name := range names {
		data, err := json.Marshal(table[name])
		if err != nil {
			stateLog.Errorf("Keybind %s unreadable: %v", name, err)
			continue
		}
		var kb Keybind
		if err := json.Unmarshal(data, &kb); err != nil {
			stateLog.Errorf("Keybind %s unreadable: %v", name, err)
			continue
		}
		out = append(out, NamedKeybind{Name: name, Keybind: kb})
	}
	return out
}

// ChatChannel returns the selected chat channel.
func (m *Model) ChatChannel() string {
	v, _ := m.store.Get(KeyChatChannel)
	s, _ := v.(string)
	return s
}

// ClearChatChannel forgets the selected chat channel.
func (m *Model) ClearChatChannel() error {
	return m.store.Set(KeyChatChannel, "")
}

// HideDockIcon reports the macOS dock preference.
func (m *Model) HideDockIcon() bool {
	v, _ := m.store.Get(KeyHideDockIcon)
	b, _ := v.(bool)
	return b
}

// SeedTheme stores theme for both windows if the overlay has none yet.
// It reports whether anything was written.
func (m *Model) SeedTheme(theme types.Theme) (bool, error) {
	if m.store.Has(KeyOverlayTheme) {
		return false, nil
	}
	if err := m.store.Set(KeyOverlayTheme, string(theme)); err != nil {
		return false, err
	}
	if err := m.store.Set(KeySettingsTheme, string(theme)); err != nil {
		return false, err
	}
	return true, nil
}

// Theme returns the configured theme, dark when unset.
func (m *Model) Theme() types.Theme {
	if theme := m.Overlay().Theme; theme != "" {
		return theme
	}
	return types.ThemeDark
}
