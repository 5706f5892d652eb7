// Package term is a terminal window host. Each native window is drawn as a
// panel in a Bubble Tea program, hotkeys are key presses and the tray is a
// numbered menu under the panels.
//
// Handle methods are called by the engine on its loop goroutine and run
// window hooks synchronously there. Input from the terminal never touches a
// handle directly: it is handed to the engine with Post or Do so hooks
// always run on the loop.
package term

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/entrhq/ghostchat/pkg/logging"
	"github.com/entrhq/ghostchat/pkg/tray"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
)

var (
	// ErrHostClosed is returned when a window is requested after Quit.
	ErrHostClosed = errors.New("terminal host has quit")

	// ErrInvalidSize is returned for a window without a positive size.
	ErrInvalidSize = errors.New("window size must be positive")

	// ErrReservedKey is returned when a hotkey collides with a host binding.
	ErrReservedKey = errors.New("key is reserved by the terminal host")

	// ErrEmptyCombo is returned when registering an empty hotkey.
	ErrEmptyCombo = errors.New("hotkey combo is empty")
)

var hostLog *logging.Logger

func init() {
	var err error
	hostLog, err = logging.NewLogger("host")
	if err != nil {
		hostLog.Warnf("Failed to initialize host logger, using stderr fallback: %v", err)
	}
}

// maxNotes is how many notifications each panel keeps.
const maxNotes = 4

// Engine is the part of the app the terminal feeds input into.
type Engine interface {
	Post(sig types.Signal) bool
	Do(fn func()) bool
	ActivateTray(i int) bool
	Tray() tray.Menu
}

// Options configures a Host.
type Options struct {
	// Screen is the virtual screen windows are centered on.
	Screen window.Bounds

	// Clipboard receives paths and links the terminal cannot open.
	// Defaults to the system clipboard.
	Clipboard func(string) error

	// Dark reports the color scheme. Defaults to asking the terminal.
	Dark func() bool
}

// Host implements window.Host and relay.Registrar for a terminal.
type Host struct {
	mu         sync.Mutex
	screen     window.Bounds
	copy       func(string) error
	dark       func() bool
	windows    []*Window
	focused    *Window
	hotkeys    map[string]func()
	status     string
	dockHidden bool
	quit       bool
	engine     Engine
	changes    chan struct{}
}

// NewHost creates a host with no windows.
func NewHost(opts Options) *Host {
	if opts.Screen.Width <= 0 || opts.Screen.Height <= 0 {
		opts.Screen = window.Bounds{Width: 1920, Height: 1080}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Dark == nil {
		opts.Dark = lipgloss.HasDarkBackground
	}
	return &Host{
		screen:  opts.Screen,
		copy:    opts.Clipboard,
		dark:    opts.Dark,
		hotkeys: make(map[string]func()),
		changes: make(chan struct{}, 1),
	}
}

// Attach connects terminal input to the engine.
func (h *Host) Attach(e Engine) {
	h.mu.Lock()
	h.engine = e
	h.mu.Unlock()
	h.changed()
}

// changed wakes the renderer. Bursts collapse into one redraw.
func (h *Host) changed() {
	select {
	case h.changes <- struct{}{}:
	default:
	}
}

// NewWindow creates a hidden panel.
func (h *Host) NewWindow(opts window.Options, hooks window.Hooks) (window.Handle, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}

	h.mu.Lock()
	if h.quit {
		h.mu.Unlock()
		return nil, ErrHostClosed
	}
	w := &Window{
		host:   h,
		id:     uuid.NewString(),
		opts:   opts,
		hooks:  hooks,
		bounds: opts.Bounds,
	}
	h.windows = append(h.windows, w)
	h.mu.Unlock()

	hostLog.Debugf("Created window %s (%q)", w.id, opts.Title)
	h.changed()
	return w, nil
}

// OpenExternal copies url to the clipboard.
func (h *Host) OpenExternal(url string) error {
	if err := h.copy(url); err != nil {
		return fmt.Errorf("failed to copy link: %w", err)
	}
	h.setStatus("Link copied to clipboard: " + url)
	return nil
}

// ShowItemInFolder copies path to the clipboard.
func (h *Host) ShowItemInFolder(path string) error {
	if err := h.copy(path); err != nil {
		return fmt.Errorf("failed to copy path: %w", err)
	}
	h.setStatus("Config path copied to clipboard: " + path)
	return nil
}

// HideDock records the request. A terminal has no dock.
func (h *Host) HideDock() {
	h.mu.Lock()
	h.dockHidden = true
	h.mu.Unlock()
	hostLog.Debugf("Dock hidden")
}

// PrefersDarkColors reports whether the terminal background is dark.
func (h *Host) PrefersDarkColors() bool {
	return h.dark()
}

// Quit ends the Bubble Tea program on its next redraw.
func (h *Host) Quit() {
	h.mu.Lock()
	h.quit = true
	h.mu.Unlock()
	hostLog.Infof("Quit requested")
	h.changed()
}

func (h *Host) quitting() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.quit
}

func (h *Host) setStatus(s string) {
	h.mu.Lock()
	h.status = s
	h.mu.Unlock()
	h.changed()
}

// UnregisterAll drops every hotkey.
func (h *Host) UnregisterAll() {
	h.mu.Lock()
	clear(h.hotkeys)
	h.mu.Unlock()
}

// Register binds combo, in Bubble Tea key notation such as "alt+v", to fn.
func (h *Host) Register(combo string, fn func()) error {
	combo = normalizeCombo(combo)
	if combo == "" {
		return ErrEmptyCombo
	}
	if slices.Contains(reservedKeys, combo) {
		return fmt.Errorf("%w: %s", ErrReservedKey, combo)
	}

	h.mu.Lock()
	h.hotkeys[combo] = fn
	h.mu.Unlock()
	hostLog.Debugf("Registered hotkey %s", combo)
	return nil
}

func normalizeCombo(combo string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(combo), " ", ""))
}

func (h *Host) hotkey(combo string) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hotkeys[combo]
}

func (h *Host) attached() Engine {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine
}

// Windows returns the live windows in creation order.
func (h *Host) Windows() []*Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.windows)
}

// Focused returns the focused window, or nil.
func (h *Host) Focused() *Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focused
}

// focusNext focuses the shown window after the current one.
func (h *Host) focusNext() {
	h.mu.Lock()
	var candidates []*Window
	for _, w := range h.windows {
		if w.shown && !w.minimized {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		h.mu.Unlock()
		return
	}
	next := candidates[0]
	if i := slices.Index(candidates, h.focused); i >= 0 {
		next = candidates[(i+1)%len(candidates)]
	}
	h.mu.Unlock()

	next.Focus()
}

// closeFocused closes the focused window as if its close button was used.
func (h *Host) closeFocused() {
	if w := h.Focused(); w != nil {
		w.Close()
	}
}

// moveFocused drags the focused window by dx, dy.
func (h *Host) moveFocused(dx, dy int) {
	h.mu.Lock()
	if w := h.focused; w != nil {
		w.bounds.X += dx
		w.bounds.Y += dy
	}
	h.mu.Unlock()
	h.changed()
}

// setFocus moves focus to w (or nowhere) and returns the window that had it.
func (h *Host) setFocus(w *Window) *Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.focused
	h.focused = w
	return prev
}

// Window is one panel. It implements window.Handle.
type Window struct {
	host  *Host
	id    string
	opts  window.Options
	hooks window.Hooks

	bounds      window.Bounds
	destroyed   bool
	shown       bool
	painted     bool
	minimized   bool
	ignoreMouse bool
	onTop       bool
	level       window.Level
	background  string
	location    string
	devTools    bool
	notes       []types.Notification
}

// ID returns the window id.
func (w *Window) ID() string { return w.id }

// Title returns the window title.
func (w *Window) Title() string { return w.opts.Title }

// Bounds returns the current bounds.
func (w *Window) Bounds() window.Bounds {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	return w.bounds
}

// IsDestroyed reports whether the window was closed.
func (w *Window) IsDestroyed() bool {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	return w.destroyed
}

// update runs fn under the host lock unless the window is gone, then
// redraws.
func (w *Window) update(fn func()) bool {
	w.host.mu.Lock()
	if w.destroyed {
		w.host.mu.Unlock()
		return false
	}
	fn()
	w.host.mu.Unlock()
	w.host.changed()
	return true
}

// LoadFile points the panel at path and hash. The first load counts as
// the first paint.
func (w *Window) LoadFile(path, hash string) error {
	location := path
	if hash != "" {
		location += "#" + hash
	}
	return w.load(location)
}

// LoadURL points the panel at url.
func (w *Window) LoadURL(url string) error {
	return w.load(url)
}

func (w *Window) load(location string) error {
	firstPaint := false
	ok := w.update(func() {
		w.location = location
		if !w.painted {
			w.painted = true
			firstPaint = true
		}
	})
	if !ok {
		return window.ErrStaleHandle
	}
	if firstPaint && w.hooks.ReadyToShow != nil {
		w.hooks.ReadyToShow()
	}
	return nil
}

// OpenDevTools marks the panel as inspected.
func (w *Window) OpenDevTools() {
	w.update(func() { w.devTools = true })
}

// Show makes the panel visible.
func (w *Window) Show() {
	w.update(func() {
		w.shown = true
		w.minimized = false
	})
}

// Focus gives the panel keyboard focus, blurring the previous one.
func (w *Window) Focus() {
	if !w.update(func() {
		w.shown = true
		w.minimized = false
	}) {
		return
	}
	prev := w.host.setFocus(w)
	if prev == w {
		return
	}
	if prev != nil && prev.hooks.Blur != nil && !prev.IsDestroyed() {
		prev.hooks.Blur()
	}
	if w.hooks.Focus != nil {
		w.hooks.Focus()
	}
}

// Center places the panel in the middle of the virtual screen.
func (w *Window) Center() {
	w.update(func() {
		w.bounds.X = max(0, (w.host.screen.Width-w.bounds.Width)/2)
		w.bounds.Y = max(0, (w.host.screen.Height-w.bounds.Height)/2)
	})
}

// Minimize hides the panel until it is shown or focused again.
func (w *Window) Minimize() {
	if !w.update(func() { w.minimized = true }) {
		return
	}
	if w.host.Focused() == w {
		w.host.setFocus(nil)
		if w.hooks.Blur != nil {
			w.hooks.Blur()
		}
	}
}

// Close runs the close hook, destroys the panel, then runs the closed hook.
func (w *Window) Close() {
	if w.IsDestroyed() {
		return
	}
	if w.hooks.Close != nil {
		w.hooks.Close()
	}

	h := w.host
	h.mu.Lock()
	w.destroyed = true
	h.windows = slices.DeleteFunc(h.windows, func(o *Window) bool { return o == w })
	if h.focused == w {
		h.focused = nil
	}
	h.mu.Unlock()
	hostLog.Debugf("Closed window %s", w.id)
	h.changed()

	if w.hooks.Closed != nil {
		w.hooks.Closed()
	}
}

// SetAlwaysOnTop records the stacking level.
func (w *Window) SetAlwaysOnTop(onTop bool, level window.Level) {
	w.update(func() {
		w.onTop = onTop
		w.level = level
	})
}

// SetIgnoreMouseEvents switches click-through.
func (w *Window) SetIgnoreMouseEvents(ignore bool) {
	w.update(func() { w.ignoreMouse = ignore })
}

// SetBackgroundColor records the background.
func (w *Window) SetBackgroundColor(color string) {
	w.update(func() { w.background = color })
}

// Send shows n in the panel's notification list.
func (w *Window) Send(n types.Notification) {
	w.update(func() {
		w.notes = append(w.notes, n)
		if len(w.notes) > maxNotes {
			w.notes = slices.Clone(w.notes[len(w.notes)-maxNotes:])
		}
	})
}

// Navigate runs the will-navigate hook for url and reports whether the
// in-app navigation was cancelled.
func (w *Window) Navigate(url string) bool {
	if w.IsDestroyed() || w.hooks.WillNavigate == nil {
		return false
	}
	return w.hooks.WillNavigate(url)
}

// panel is a render-time copy of a window.
type panel struct {
	title       string
	id          string
	bounds      window.Bounds
	focused     bool
	shown       bool
	minimized   bool
	ignoreMouse bool
	onTop       bool
	level       window.Level
	location    string
	devTools    bool
	notes       []types.Notification
}

type frame struct {
	panels     []panel
	status     string
	menu       tray.Menu
	hasTray    bool
	dockHidden bool
}

func (h *Host) snapshot() frame {
	h.mu.Lock()
	defer h.mu.Unlock()

	f := frame{status: h.status, dockHidden: h.dockHidden}
	for _, w := range h.windows {
		f.panels = append(f.panels, panel{
			title:       w.opts.Title,
			id:          w.id,
			bounds:      w.bounds,
			focused:     w == h.focused,
			shown:       w.shown,
			minimized:   w.minimized,
			ignoreMouse: w.ignoreMouse,
			onTop:       w.onTop,
			level:       w.level,
			location:    w.location,
			devTools:    w.devTools,
			notes:       slices.Clone(w.notes),
		})
	}
	if h.engine != nil {
		f.menu = h.engine.Tray()
		f.hasTray = true
	}
	return f
}
