// Package windowtest provides a recording window.Host for tests.
package windowtest

import (
	"fmt"

	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
)

// Screen size used to center fake windows.
const (
	ScreenWidth  = 1920
	ScreenHeight = 1080
)

// Host is a fake window.Host that records every call.
type Host struct {
	Windows      []*Handle
	External     []string
	Revealed     []string
	DockHidden   int
	Dark         bool
	QuitCount    int
	NewWindowErr error
	ExternalErr  error
	nextID       int
}

// NewHost creates an empty fake host.
func NewHost() *Host {
	return &Host{}
}

// NewWindow records and returns a fake handle, or NewWindowErr if set.
func (h *Host) NewWindow(opts window.Options, hooks window.Hooks) (window.Handle, error) {
	if h.NewWindowErr != nil {
		return nil, h.NewWindowErr
	}
	h.nextID++
	w := &Handle{
		id:     fmt.Sprintf("window-%d", h.nextID),
		Opts:   opts,
		hooks:  hooks,
		bounds: opts.Bounds,
		OnTop:  map[bool]window.Level{},
	}
	h.Windows = append(h.Windows, w)
	return w, nil
}

// OpenExternal records url.
func (h *Host) OpenExternal(url string) error {
	h.External = append(h.External, url)
	return h.ExternalErr
}

// ShowItemInFolder records path.
func (h *Host) ShowItemInFolder(path string) error {
	h.Revealed = append(h.Revealed, path)
	return nil
}

// HideDock counts calls.
func (h *Host) HideDock() {
	h.DockHidden++
}

// PrefersDarkColors returns Dark.
func (h *Host) PrefersDarkColors() bool {
	return h.Dark
}

// Quit counts calls.
func (h *Host) Quit() {
	h.QuitCount++
}

// Last returns the most recently created window.
func (h *Host) Last() *Handle {
	if len(h.Windows) == 0 {
		return nil
	}
	return h.Windows[len(h.Windows)-1]
}

// Handle is a fake window.Handle.
type Handle struct {
	id        string
	hooks     window.Hooks
	bounds    window.Bounds
	destroyed bool

	Opts        window.Options
	Sent        []types.Notification
	IgnoreMouse bool
	IgnoreCalls []bool
	Background  []string
	OnTop       map[bool]window.Level
	Shown       int
	Focused     int
	Centered    int
	Minimized   int
	LoadedFile  string
	LoadedHash  string
	LoadedURL   string
	DevTools    bool
}

// ID returns the handle id.
func (w *Handle) ID() string { return w.id }

// Bounds returns the current bounds.
func (w *Handle) Bounds() window.Bounds { return w.bounds }

// IsDestroyed reports whether Close completed.
func (w *Handle) IsDestroyed() bool { return w.destroyed }

// LoadFile records the file and hash.
func (w *Handle) LoadFile(path, hash string) error {
	w.LoadedFile, w.LoadedHash = path, hash
	return nil
}

// LoadURL records the url.
func (w *Handle) LoadURL(url string) error {
	w.LoadedURL = url
	return nil
}

// OpenDevTools records the call.
func (w *Handle) OpenDevTools() { w.DevTools = true }

// Show counts calls.
func (w *Handle) Show() { w.Shown++ }

// Focus counts calls.
func (w *Handle) Focus() { w.Focused++ }

// Center moves the window to the middle of the fake screen.
func (w *Handle) Center() {
	w.Centered++
	w.bounds.X = (ScreenWidth - w.bounds.Width) / 2
	w.bounds.Y = (ScreenHeight - w.bounds.Height) / 2
}

// Minimize counts calls.
func (w *Handle) Minimize() { w.Minimized++ }

// Close runs the close hook, destroys the window, then runs the closed hook.
func (w *Handle) Close() {
	if w.destroyed {
		return
	}
	if w.hooks.Close != nil {
		w.hooks.Close()
	}
	w.destroyed = true
	if w.hooks.Closed != nil {
		w.hooks.Closed()
	}
}

// SetAlwaysOnTop records the level.
func (w *Handle) SetAlwaysOnTop(onTop bool, level window.Level) {
	w.OnTop[onTop] = level
}

// SetIgnoreMouseEvents records the state.
func (w *Handle) SetIgnoreMouseEvents(ignore bool) {
	w.IgnoreMouse = ignore
	w.IgnoreCalls = append(w.IgnoreCalls, ignore)
}

// SetBackgroundColor records the color.
func (w *Handle) SetBackgroundColor(color string) {
	w.Background = append(w.Background, color)
}

// Send records n.
func (w *Handle) Send(n types.Notification) {
	if w.destroyed {
		return
	}
	w.Sent = append(w.Sent, n)
}

// Move changes the bounds as if the user dragged the window.
func (w *Handle) Move(b window.Bounds) { w.bounds = b }

// Destroy marks the window destroyed without running hooks, as when the
// native window disappears underneath the engine.
func (w *Handle) Destroy() { w.destroyed = true }

// FireReadyToShow runs the ready-to-show hook.
func (w *Handle) FireReadyToShow() {
	if w.hooks.ReadyToShow != nil {
		w.hooks.ReadyToShow()
	}
}

// FireFocus runs the focus hook.
func (w *Handle) FireFocus() {
	if w.hooks.Focus != nil {
		w.hooks.Focus()
	}
}

// FireBlur runs the blur hook.
func (w *Handle) FireBlur() {
	if w.hooks.Blur != nil {
		w.hooks.Blur()
	}
}

// FireClose runs only the close hook.
func (w *Handle) FireClose() {
	if w.hooks.Close != nil {
		w.hooks.Close()
	}
}

// Navigate runs the will-navigate hook and reports whether it was cancelled.
func (w *Handle) Navigate(url string) bool {
	if w.hooks.WillNavigate == nil {
		return false
	}
	return w.hooks.WillNavigate(url)
}

// SentKinds returns the kinds of every notification sent so far.
func (w *Handle) SentKinds() []types.NotificationKind {
	kinds := make([]types.NotificationKind, 0, len(w.Sent))
	for _, n := range w.Sent {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}
