// Package relay dispatches signals from the windows, the tray and hotkeys
// to the controllers that own each behavior.
//
// Dispatch holds no window references of its own. It looks the overlay and
// settings handles up in their slots on every signal, so a window that has
// gone away is simply absent and sending to it is a silent no-op.
package relay

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/entrhq/ghostchat/pkg/config"
	"github.com/entrhq/ghostchat/pkg/logging"
	"github.com/entrhq/ghostchat/pkg/state"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
)

var (
	// ErrUnknownSignal is returned for a signal with no handler.
	ErrUnknownSignal = errors.New("unknown signal")

	// ErrUnknownStoreAction is returned for a CallStore action other than
	// get, set or delete.
	ErrUnknownStoreAction = errors.New("unknown store action")

	// ErrKeybindRegistration wraps the failure of a single hotkey.
	ErrKeybindRegistration = errors.New("failed to register keybind")
)

var relayLog *logging.Logger

func init() {
	var err error
	relayLog, err = logging.NewLogger("relay")
	if err != nil {
		relayLog.Warnf("Failed to initialize relay logger, using stderr fallback: %v", err)
	}
}

// Registrar binds OS-level hotkeys.
type Registrar interface {
	UnregisterAll()
	Register(combo string, fn func()) error
}

// Vanisher toggles vanish mode.
type Vanisher interface {
	Toggle() bool
	ForceDisable() bool
}

// SettingsOpener opens or focuses the settings window.
type SettingsOpener interface {
	Open() error
}

// UpdateChecker starts an update check when none is in flight.
type UpdateChecker interface {
	RequestCheck(ctx context.Context) bool
}

// Config holds the collaborators of a Relay. Registrar, Updates and Policy
// may be nil.
type Config struct {
	Host      window.Host
	Model     *state.Model
	Overlay   *window.Slot
	Settings  *window.Slot
	Vanish    Vanisher
	Opener    SettingsOpener
	Updates   UpdateChecker
	Registrar Registrar
	Policy    *config.AccessPolicy
	Platform  window.Platform

	// Post enqueues a signal for later dispatch. Hotkey callbacks use it so
	// they never run inside another handler.
	Post func(types.Signal)
}

// Relay routes signals to their handlers.
type Relay struct {
	host      window.Host
	model     *state.Model
	overlay   *window.Slot
	settings  *window.Slot
	vanish    Vanisher
	opener    SettingsOpener
	updates   UpdateChecker
	registrar Registrar
	policy    *config.AccessPolicy
	platform  window.Platform
	post      func(types.Signal)
	tracer    trace.Tracer
}

// New creates a relay from cfg.
func New(cfg Config) *Relay {
	return &Relay{
		host:      cfg.Host,
		model:     cfg.Model,
		overlay:   cfg.Overlay,
		settings:  cfg.Settings,
		vanish:    cfg.Vanish,
		opener:    cfg.Opener,
		updates:   cfg.Updates,
		registrar: cfg.Registrar,
		policy:    cfg.Policy,
		platform:  cfg.Platform,
		post:      cfg.Post,
		tracer:    otel.Tracer("github.com/entrhq/ghostchat/pkg/relay"),
	}
}

// Dispatch runs the handler for sig. Only CallStore (get) and GetPlatform
// return a value. Errors never reach a window; callers log them.
func (r *Relay) Dispatch(ctx context.Context, sig types.Signal) (any, error) {
	ctx, span := r.tracer.Start(ctx, "relay."+string(sig.Name()),
		trace.WithAttributes(attribute.String("ghostchat.signal", string(sig.Name()))))
	defer span.End()

	result, err := r.dispatch(ctx, sig)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		relayLog.Errorf("Signal %s failed: %v", sig.Name(), err)
	}
	return result, err
}

func (r *Relay) dispatch(ctx context.Context, sig types.Signal) (any, error) {
	switch s := sig.(type) {
	case types.Rerender:
		r.rerender(s.Target)
	case types.ThemeChanged:
		relayLog.Infof("Theme changed %s", s.Theme)
		r.settings.Send(types.NewThemeChangedNotification(s.Theme))
	case types.Close:
		r.closeAll()
	case types.SetClickThrough:
		return nil, r.setClickThrough(true)
	case types.DisableClickThrough:
		return nil, r.setClickThrough(false)
	case types.Minimize:
		relayLog.Infof("Minimizing overlay")
		r.overlay.Do(func(h window.Handle) { h.Minimize() })
	case types.Vanish:
		r.vanish.Toggle()
	case types.DisableVanish:
		r.vanish.ForceDisable()
	case types.OpenSettings:
		relayLog.Infof("Opening settings window")
		if err := r.opener.Open(); err != nil {
			return nil, err
		}
	case types.RegisterNewKeybind:
		r.RegisterKeybinds()
	case types.CallStore:
		return r.callStore(s)
	case types.GetPlatform:
		return r.platform.String(), nil
	case types.CheckForUpdates:
		if r.updates == nil {
			relayLog.Warnf("No update coordinator, ignoring check")
			return nil, nil
		}
		r.updates.RequestCheck(ctx)
	case types.OpenConfigLocation:
		return nil, r.openConfigLocation()
	case types.Exit:
		relayLog.Infof("Exiting")
		r.closeAll()
		r.host.Quit()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSignal, sig.Name())
	}
	return nil, nil
}

func (r *Relay) rerender(target types.RerenderTarget) {
	relayLog.Infof("Rerendering %s", target)
	switch target {
	case types.TargetChild:
		r.settings.Send(types.NewRerenderNotification())
	case types.TargetParent:
		r.overlay.Send(types.NewRerenderNotification())
	}
}

// closeAll closes settings first so its close handler persists before the
// overlay's close handler clears the open flag.
func (r *Relay) closeAll() {
	relayLog.Infof("Closing all windows")
	r.settings.Do(func(h window.Handle) { h.Close() })
	r.overlay.Do(func(h window.Handle) { h.Close() })
}

// setClickThrough changes only the persisted click-through flag and the
// mouse state; transparency and the vanish state are left alone.
func (r *Relay) setClickThrough(enabled bool) error {
	relayLog.Infof("Setting click through to %t", enabled)
	if err := r.model.Store().Set(state.KeyClickThrough, enabled); err != nil {
		return fmt.Errorf("failed to persist click-through: %w", err)
	}
	r.overlay.Do(func(h window.Handle) { h.SetIgnoreMouseEvents(enabled) })
	return nil
}

func (r *Relay) callStore(s types.CallStore) (any, error) {
	relayLog.Debugf("Calling store %s %s", s.Action, s.Key)
	if err := r.policy.Check(s.Key); err != nil {
		return nil, err
	}

	store := r.model.Store()
	switch s.Action {
	case types.StoreGet:
		value, _ := store.Get(s.Key)
		return value, nil
	case types.StoreSet:
		return nil, store.Set(s.Key, s.Value)
	case types.StoreDelete:
		return nil, store.Delete(s.Key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStoreAction, s.Action)
	}
}

func (r *Relay) openConfigLocation() error {
	path := r.model.Store().Path()
	if path == "" {
		relayLog.Warnf("Store is not backed by a file")
		return nil
	}
	return r.host.ShowItemInFolder(path)
}

// RegisterKeybinds replaces every hotkey with the persisted keybind table.
// Entries without a key combination are skipped. A failing entry is logged
// and the rest still register. It returns how many registered and the
// joined per-entry failures.
func (r *Relay) RegisterKeybinds() (int, error) {
	if r.registrar == nil {
		relayLog.Warnf("No hotkey registrar, skipping keybind registration")
		return 0, nil
	}
	relayLog.Infof("Registering all keybinds")

	r.registrar.UnregisterAll()

	var (
		registered int
		errs       []error
	)
	for _, kb := range r.model.Keybinds() {
		if kb.Keybind.Keybind == "" {
			continue
		}

		message := kb.ActivationMessage
		err := r.registrar.Register(kb.Keybind.Keybind, func() {
			relayLog.Infof("%s", message)
			r.post(types.Vanish{})
		})
		if err != nil {
			err = fmt.Errorf("%w [%s] %s: %v", ErrKeybindRegistration, kb.Keybind.Keybind, kb.Name, err)
			relayLog.Errorf("%v", err)
			errs = append(errs, err)
			continue
		}

		relayLog.Infof("Registered [%s]: %s", kb.Keybind.Keybind, kb.Name)
		registered++
	}
	return registered, errors.Join(errs...)
}
