package vanish

import (
	"github.com/entrhq/ghostchat/pkg/logging"
	"github.com/entrhq/ghostchat/pkg/state"
	"github.com/entrhq/ghostchat/pkg/window"
)

var vanishLog *logging.Logger

func init() {
	var err error
	vanishLog, err = logging.NewLogger("vanish")
	if err != nil {
		vanishLog.Warnf("Failed to initialize vanish logger, using stderr fallback: %v", err)
	}
}

// Controller applies vanish transitions to the overlay. The mode is read
// from the persisted overlay record on every call, so edits made through the
// store (CallStore, a reload from disk) are honored by the next toggle.
// It is not safe for concurrent use; callers serialize through the app loop.
type Controller struct {
	model   *state.Model
	overlay *window.Slot
}

func NewController(model *state.Model, overlay *window.Slot) *Controller {
	return &Controller{model: model, overlay: overlay}
}

// State returns the persisted mode: Vanished while the overlay is
// click-through.
func (c *Controller) State() State {
	if c.model.Overlay().IsClickThrough {
		return Vanished
	}
	return Visible
}

// Toggle flips the mode. It reports whether anything changed.
func (c *Controller) Toggle() bool {
	return c.apply(Toggle)
}

// ForceDisable leaves vanish mode if active. It reports whether anything
// changed.
func (c *Controller) ForceDisable() bool {
	return c.apply(ForceDisable)
}

func (c *Controller) apply(input Input) bool {
	current := c.State()
	settingsOpen := c.model.SettingsOpen()
	next, effects := Transition(current, input, settingsOpen)
	if len(effects) == 0 {
		if settingsOpen {
			vanishLog.Infof("Ignoring %s while settings are open", input)
		} else {
			vanishLog.Debugf("Ignoring %s, already %s", input, current)
		}
		return false
	}

	for _, effect := range effects {
		c.perform(effect)
	}
	vanishLog.Infof("Overlay %s -> %s", current, next)
	return true
}

func (c *Controller) perform(effect Effect) {
	switch effect.Kind {
	case EffectPersist:
		var bounds *window.Bounds
		if effect.CaptureBounds {
			if h := c.overlay.Get(); h != nil {
				b := h.Bounds()
				bounds = &b
			} else {
				vanishLog.Warnf("No overlay window to capture bounds from, keeping persisted geometry")
			}
		}
		if err := c.model.WriteOverlay(state.VanishPatch(effect.Vanished, bounds)); err != nil {
			vanishLog.Errorf("Failed to persist vanish state: %v", err)
		}
	case EffectIgnoreMouse:
		c.overlay.Do(func(h window.Handle) {
			h.SetIgnoreMouseEvents(effect.Vanished)
		})
	case EffectNotify:
		c.overlay.Send(effect.Notification)
	}
}
