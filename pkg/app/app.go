// Package app wires the coordination engine together and runs it on a
// single loop goroutine. Window events, hotkeys, tray clicks, update
// backend events and store reloads all enter through the loop, so no two
// handlers ever run at the same time.
package app

import (
	"context"
	"fmt"

	"github.com/entrhq/ghostchat/pkg/config"
	"github.com/entrhq/ghostchat/pkg/lifecycle"
	"github.com/entrhq/ghostchat/pkg/logging"
	"github.com/entrhq/ghostchat/pkg/relay"
	"github.com/entrhq/ghostchat/pkg/state"
	"github.com/entrhq/ghostchat/pkg/tray"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/updater"
	"github.com/entrhq/ghostchat/pkg/vanish"
	"github.com/entrhq/ghostchat/pkg/window"
)

var appLog *logging.Logger

func init() {
	var err error
	appLog, err = logging.NewLogger("app")
	if err != nil {
		appLog.Warnf("Failed to initialize app logger, using stderr fallback: %v", err)
	}
}

// Reloader is a store that can pick up edits made outside the process.
type Reloader interface {
	Path() string
	ReloadIfChanged() (bool, error)
}

// Config holds everything the app needs from the outside world.
type Config struct {
	Options   *config.Options
	Store     config.Store
	Host      window.Host
	Registrar relay.Registrar
	Backend   updater.Backend
	Platform  window.Platform
}

// App is the running engine.
type App struct {
	opts     *config.Options
	platform window.Platform
	host     window.Host
	store    config.Store
	model    *state.Model
	loop     *Loop
	overlay  *window.Slot
	settings *window.Slot

	overlayLifecycle  *lifecycle.Overlay
	settingsLifecycle *lifecycle.Settings
	vanish            *vanish.Controller
	updates           *updater.Coordinator
	relay             *relay.Relay
	tray              tray.Menu
}

// New builds the engine. Nothing is shown until Start.
func New(cfg Config) (*App, error) {
	if cfg.Options == nil {
		cfg.Options = config.DefaultOptions()
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	if cfg.Platform == "" {
		cfg.Platform = window.CurrentPlatform()
	}
	policy, err := cfg.Options.AccessPolicy()
	if err != nil {
		return nil, err
	}

	a := &App{
		opts:     cfg.Options,
		platform: cfg.Platform,
		host:     cfg.Host,
		store:    cfg.Store,
		model:    state.NewModel(cfg.Store),
		loop:     NewLoop(),
		overlay:  window.NewSlot("overlay"),
		settings: window.NewSlot("settings"),
		tray:     tray.Build(cfg.Options.Version),
	}

	entry := lifecycle.Entry{IndexHTML: cfg.Options.IndexHTML, DevServerURL: cfg.Options.DevServerURL}
	a.overlayLifecycle = lifecycle.NewOverlay(cfg.Host, a.model, a.overlay, cfg.Platform)
	a.overlayLifecycle.OnClosed(a.handleOverlayClosed)
	a.settingsLifecycle = lifecycle.NewSettings(cfg.Host, a.model, a.settings, a.overlay, entry)
	a.settingsLifecycle.OnTeardown(func() {
		appLog.Debugf("Settings window released")
	})
	a.vanish = vanish.NewController(a.model, a.overlay)

	if cfg.Backend != nil {
		a.updates = updater.New(updater.Options{
			Backend:              cfg.Backend,
			Settings:             a.settings,
			Platform:             cfg.Platform,
			Channel:              a.model.Updater().Channel,
			ForceDevUpdateConfig: cfg.Options.ForceDevUpdateConfig,
			Schedule:             a.schedule,
		})
	}

	relayCfg := relay.Config{
		Host:      cfg.Host,
		Model:     a.model,
		Overlay:   a.overlay,
		Settings:  a.settings,
		Vanish:    a.vanish,
		Opener:    a.settingsLifecycle,
		Registrar: cfg.Registrar,
		Policy:    policy,
		Platform:  cfg.Platform,
		Post:      func(sig types.Signal) { a.Post(sig) },
	}
	if a.updates != nil {
		relayCfg.Updates = a.updates
	}
	a.relay = relay.New(relayCfg)

	return a, nil
}

func (a *App) schedule(fn func()) {
	if !a.loop.Do(fn) {
		appLog.Debugf("Dropping event after shutdown")
	}
}

// Loop returns the loop every event must go through.
func (a *App) Loop() *Loop {
	return a.loop
}

// Model returns the typed state view.
func (a *App) Model() *state.Model {
	return a.model
}

// Tray returns the tray menu.
func (a *App) Tray() tray.Menu {
	return a.tray
}

// Updates returns the update coordinator, nil without a backend.
func (a *App) Updates() *updater.Coordinator {
	return a.updates
}

// Do runs fn on the loop. Hosts use it for window events that originate
// outside the engine, such as the user closing or focusing a window.
func (a *App) Do(fn func()) bool {
	return a.loop.Do(fn)
}

// ActivateTray posts the signal of tray item i.
func (a *App) ActivateTray(i int) bool {
	return a.tray.Activate(i, func(sig types.Signal) { a.Post(sig) })
}

// Start creates the overlay and registers hotkeys. It runs on the calling
// goroutine and must be called before Run.
func (a *App) Start() error {
	appLog.Infof("Starting Ghost Chat %s on %s", a.opts.Version, a.platform)

	// No settings window exists yet; a flag left by a killed process would
	// block vanish until settings were opened and closed again.
	if a.settings.Get() == nil && a.model.SettingsOpen() {
		appLog.Warnf("Clearing settings open flag left by a previous run")
		if err := a.model.WriteSettings(state.SettingsPatch{IsOpen: state.Bool(false)}); err != nil {
			appLog.Errorf("Failed to clear settings open flag: %v", err)
		}
	}

	entry := lifecycle.Entry{IndexHTML: a.opts.IndexHTML, DevServerURL: a.opts.DevServerURL}
	if _, err := a.overlayLifecycle.Create(entry); err != nil {
		appLog.Errorf("%v", err)
		return err
	}

	if n, err := a.relay.RegisterKeybinds(); err != nil {
		appLog.Warnf("Registered %d keybinds, some failed: %v", n, err)
	}
	return nil
}

// Post queues sig for dispatch. Results are discarded; failures are logged
// by the relay.
func (a *App) Post(sig types.Signal) bool {
	return a.loop.Do(func() {
		_, _ = a.relay.Dispatch(context.Background(), sig)
	})
}

type reply struct {
	value any
	err   error
}

// Call dispatches sig on the loop and waits for its result.
func (a *App) Call(ctx context.Context, sig types.Signal) (any, error) {
	ch := make(chan reply, 1)
	ok := a.loop.Do(func() {
		value, err := a.relay.Dispatch(ctx, sig)
		ch <- reply{value: value, err: err}
	})
	if !ok {
		return nil, ErrLoopStopped
	}

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-a.loop.Done():
		return nil, ErrLoopStopped
	}
}

// Run processes events until ctx ends or the overlay closes. With
// watch_store enabled, edits to the store file rerender both windows.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.opts.WatchStore {
		if err := a.watchStore(ctx); err != nil {
			appLog.Warnf("Store watching disabled: %v", err)
		}
	}

	err := a.loop.Run(ctx)
	appLog.Infof("Event loop stopped")
	return err
}

func (a *App) watchStore(ctx context.Context) error {
	reloader, ok := a.store.(Reloader)
	if !ok || reloader.Path() == "" {
		return fmt.Errorf("store is not file backed")
	}

	w, err := config.NewWatcher(reloader.Path(), config.DefaultWatchDebounce)
	if err != nil {
		return err
	}

	go func() {
		onChange := func() { a.schedule(func() { a.reloadStore(reloader) }) }
		onError := func(err error) { appLog.Warnf("Store watcher: %v", err) }
		if err := w.Run(ctx, onChange, onError); err != nil && ctx.Err() == nil {
			appLog.Errorf("Store watcher stopped: %v", err)
		}
	}()
	return nil
}

func (a *App) reloadStore(reloader Reloader) {
	changed, err := reloader.ReloadIfChanged()
	if err != nil {
		appLog.Errorf("Failed to reload store: %v", err)
		return
	}
	if !changed {
		return
	}
	appLog.Infof("Store changed on disk, rerendering")
	a.overlay.Send(types.NewRerenderNotification())
	a.settings.Send(types.NewRerenderNotification())
}

// handleOverlayClosed ends the process once the overlay is gone.
func (a *App) handleOverlayClosed() {
	appLog.Infof("Overlay closed, shutting down")
	a.settingsLifecycle.Close()
	a.host.Quit()
	a.loop.Stop()
}
