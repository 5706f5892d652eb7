// Package window defines the boundary between the coordination engine and
// the platform that actually owns native windows. The engine never draws:
// it creates windows through a Host, drives them through Handles and reacts
// to their lifecycle through Hooks.
package window

import (
	"errors"

	"github.com/entrhq/ghostchat/pkg/types"
)

// ErrStaleHandle is reported when an operation expected a live window handle
// and found none.
var ErrStaleHandle = errors.New("window handle is gone")

// Bounds is the position and size of a window.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsUnpositioned reports whether the bounds were never placed on screen.
// A persisted (0,0) origin means "center me", not the literal corner.
func (b Bounds) IsUnpositioned() bool {
	return b.X == 0 && b.Y == 0
}

// Options describes a window to create.
type Options struct {
	Title string
	Bounds

	Transparent            bool
	Frameless              bool
	Resizable              bool
	Maximizable            bool
	Fullscreenable         bool
	HiddenTitleBar         bool
	AutoHideMenuBar        bool
	VisibleOnAllWorkspaces bool
}

// Level is an always-on-top stacking level.
type Level string

const (
	LevelNormal    Level = "normal"
	LevelPopUpMenu Level = "pop-up-menu"
)

// Hooks are the lifecycle callbacks a Host invokes for one window.
// Any hook may be nil.
type Hooks struct {
	// ReadyToShow fires once, after the content's first paint.
	ReadyToShow func()

	// Focus and Blur fire on every focus transition.
	Focus func()
	Blur  func()

	// Close fires before the window is destroyed; the handle is still usable.
	Close func()

	// Closed fires after destruction; the handle must not be used.
	Closed func()

	// WillNavigate fires when content tries to navigate away. Returning true
	// cancels the in-app navigation.
	WillNavigate func(url string) bool
}

// Handle is a live native window. Methods on a destroyed handle are no-ops.
type Handle interface {
	ID() string
	Bounds() Bounds
	IsDestroyed() bool

	// Load points the window at a file (with optional hash route) or URL.
	LoadFile(path, hash string) error
	LoadURL(url string) error
	OpenDevTools()

	Show()
	Focus()
	Center()
	Minimize()
	Close()

	SetAlwaysOnTop(onTop bool, level Level)
	SetIgnoreMouseEvents(ignore bool)
	SetBackgroundColor(color string)

	// Send delivers a notification to the window's content.
	Send(n types.Notification)
}

// Host owns native windows and the OS services the engine needs.
type Host interface {
	// NewWindow creates a hidden window. Display waits for Show.
	NewWindow(opts Options, hooks Hooks) (Handle, error)

	// OpenExternal hands url to the OS default handler.
	OpenExternal(url string) error

	// ShowItemInFolder reveals path in the OS file manager.
	ShowItemInFolder(path string) error

	// HideDock removes the application's dock presence (darwin).
	HideDock()

	// PrefersDarkColors reports the OS dark mode preference.
	PrefersDarkColors() bool

	// Quit ends the host's event processing.
	Quit()
}

// Transparent is the background color re-asserted on every focus change.
const Transparent = "#00000000"
