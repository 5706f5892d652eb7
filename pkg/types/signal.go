package types

import (
	"encoding/json"
	"fmt"
)

// SignalName identifies a signal sent by a window, the tray or a hotkey.
type SignalName string

const (
	SignalRerender            SignalName = "rerender"              // SignalRerender asks the other window to rerender.
	SignalThemeChanged        SignalName = "theme-changed"         // SignalThemeChanged reports a new theme from the overlay.
	SignalClose               SignalName = "close"                 // SignalClose closes every open window.
	SignalSetClickThrough     SignalName = "set-click-through"     // SignalSetClickThrough makes the overlay ignore the mouse.
	SignalMinimize            SignalName = "minimize"              // SignalMinimize minimizes the overlay.
	SignalVanish              SignalName = "vanish"                // SignalVanish toggles vanish mode.
	SignalOpenSettings        SignalName = "open-settings"         // SignalOpenSettings opens or focuses the settings window.
	SignalRegisterNewKeybind  SignalName = "register-new-keybind"  // SignalRegisterNewKeybind re-registers every hotkey.
	SignalCallStore           SignalName = "call-store"            // SignalCallStore is the get/set/delete store passthrough.
	SignalGetPlatform         SignalName = "get-platform"          // SignalGetPlatform asks for the host OS identifier.
	SignalCheckForUpdates     SignalName = "check-for-updates"     // SignalCheckForUpdates starts an update check.
	SignalDisableVanish       SignalName = "disable-vanish"        // SignalDisableVanish leaves vanish mode (tray).
	SignalDisableClickThrough SignalName = "disable-click-through" // SignalDisableClickThrough restores mouse input (tray).
	SignalOpenConfigLocation  SignalName = "open-config-location"  // SignalOpenConfigLocation reveals the store file (tray).
	SignalExit                SignalName = "exit"                  // SignalExit closes all windows and quits (tray).
)

// Signal is one discrete request into the coordination engine. The set of
// implementations is closed: only types in this package satisfy it.
type Signal interface {
	Name() SignalName
	signal()
}

// RerenderTarget selects which window receives a rerender notice.
type RerenderTarget string

const (
	TargetChild  RerenderTarget = "child"  // the settings window
	TargetParent RerenderTarget = "parent" // the overlay window
)

// Theme is the visual theme of a window.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// StoreAction is the operation requested through CallStore.
type StoreAction string

const (
	StoreGet    StoreAction = "get"
	StoreSet    StoreAction = "set"
	StoreDelete StoreAction = "delete"
)

type (
	// Rerender forwards a rerender notice to Target only.
	Rerender struct {
		Target RerenderTarget `json:"target"`
	}

	// ThemeChanged forwards Theme to the settings window.
	ThemeChanged struct {
		Theme Theme `json:"theme"`
	}

	// Close closes every open window.
	Close struct{}

	// SetClickThrough persists click-through and makes the overlay ignore the mouse.
	SetClickThrough struct{}

	// Minimize minimizes the overlay.
	Minimize struct{}

	// Vanish toggles vanish mode.
	Vanish struct{}

	// OpenSettings opens the settings window or focuses the live one.
	OpenSettings struct{}

	// RegisterNewKeybind re-registers all hotkeys from the keybind table.
	RegisterNewKeybind struct{}

	// CallStore is a generic passthrough to the persisted store.
	CallStore struct {
		Action StoreAction `json:"action"`
		Key    string      `json:"key"`
		Value  any         `json:"value,omitempty"`
	}

	// GetPlatform returns the host operating system identifier.
	GetPlatform struct{}

	// CheckForUpdates starts an update check when the updater is idle.
	CheckForUpdates struct{}

	// DisableVanish leaves vanish mode unconditionally (still guarded by settings-open).
	DisableVanish struct{}

	// DisableClickThrough restores mouse input without touching transparency.
	DisableClickThrough struct{}

	// OpenConfigLocation reveals the persisted store file.
	OpenConfigLocation struct{}

	// Exit closes all windows and quits the process.
	Exit struct{}
)

func (Rerender) Name() SignalName            { return SignalRerender }
func (ThemeChanged) Name() SignalName        { return SignalThemeChanged }
func (Close) Name() SignalName               { return SignalClose }
func (SetClickThrough) Name() SignalName     { return SignalSetClickThrough }
func (Minimize) Name() SignalName            { return SignalMinimize }
func (Vanish) Name() SignalName              { return SignalVanish }
func (OpenSettings) Name() SignalName        { return SignalOpenSettings }
func (RegisterNewKeybind) Name() SignalName  { return SignalRegisterNewKeybind }
func (CallStore) Name() SignalName           { return SignalCallStore }
func (GetPlatform) Name() SignalName         { return SignalGetPlatform }
func (CheckForUpdates) Name() SignalName     { return SignalCheckForUpdates }
func (DisableVanish) Name() SignalName       { return SignalDisableVanish }
func (DisableClickThrough) Name() SignalName { return SignalDisableClickThrough }
func (OpenConfigLocation) Name() SignalName  { return SignalOpenConfigLocation }
func (Exit) Name() SignalName                { return SignalExit }

func (Rerender) signal()            {}
func (ThemeChanged) signal()        {}
func (Close) signal()               {}
func (SetClickThrough) signal()     {}
func (Minimize) signal()            {}
func (Vanish) signal()              {}
func (OpenSettings) signal()        {}
func (RegisterNewKeybind) signal()  {}
func (CallStore) signal()           {}
func (GetPlatform) signal()         {}
func (CheckForUpdates) signal()     {}
func (DisableVanish) signal()       {}
func (DisableClickThrough) signal() {}
func (OpenConfigLocation) signal()  {}
func (Exit) signal()                {}

// ParseSignal builds a Signal from a name and an optional JSON payload, the
// shape in which web content hands signals to its host.
func ParseSignal(name string, payload json.RawMessage) (Signal, error) {
	switch SignalName(name) {
	case SignalRerender:
		var s Rerender
		if err := unmarshalPayload(name, payload, &s); err != nil {
			return nil, err
		}
		if s.Target != TargetChild && s.Target != TargetParent {
			return nil, fmt.Errorf("%s: invalid target %q", name, s.Target)
		}
		return s, nil
	case SignalThemeChanged:
		var s ThemeChanged
		if err := unmarshalPayload(name, payload, &s); err != nil {
			return nil, err
		}
		if s.Theme != ThemeDark && s.Theme != ThemeLight {
			return nil, fmt.Errorf("%s: invalid theme %q", name, s.Theme)
		}
		return s, nil
	case SignalCallStore:
		var s CallStore
		if err := unmarshalPayload(name, payload, &s); err != nil {
			return nil, err
		}
		return s, nil
	case SignalClose:
		return Close{}, nil
	case SignalSetClickThrough:
		return SetClickThrough{}, nil
	case SignalMinimize:
		return Minimize{}, nil
	case SignalVanish:
		return Vanish{}, nil
	case SignalOpenSettings:
		return OpenSettings{}, nil
	case SignalRegisterNewKeybind:
		return RegisterNewKeybind{}, nil
	case SignalGetPlatform:
		return GetPlatform{}, nil
	case SignalCheckForUpdates:
		return CheckForUpdates{}, nil
	case SignalDisableVanish:
		return DisableVanish{}, nil
	case SignalDisableClickThrough:
		return DisableClickThrough{}, nil
	case SignalOpenConfigLocation:
		return OpenConfigLocation{}, nil
	case SignalExit:
		return Exit{}, nil
	default:
		return nil, fmt.Errorf("unknown signal %q", name)
	}
}

func unmarshalPayload(name string, payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%s: missing payload", name)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
