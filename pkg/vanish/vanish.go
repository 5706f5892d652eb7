// Package vanish switches the overlay between its interactive mode and the
// click-through, transparent mode.
//
// The rules live in Transition, a pure function from the current state and
// an input to the next state and the side effects to perform. Controller
// applies those effects to the persisted state and the overlay window.
package vanish

import "github.com/entrhq/ghostchat/pkg/types"

// State is the overlay visibility mode.
type State int

const (
	// Visible is interactive and receives mouse input.
	Visible State = iota
	// Vanished is click-through and transparent.
	Vanished
)

func (s State) String() string {
	switch s {
	case Visible:
		return "visible"
	case Vanished:
		return "vanished"
	default:
		return "unknown"
	}
}

// Input is a request to change the mode.
type Input int

const (
	// Toggle flips between Visible and Vanished.
	Toggle Input = iota
	// ForceDisable returns to Visible and does nothing when already there.
	ForceDisable
)

func (i Input) String() string {
	switch i {
	case Toggle:
		return "toggle"
	case ForceDisable:
		return "force-disable"
	default:
		return "unknown"
	}
}

// EffectKind identifies a side effect of a transition.
type EffectKind int

const (
	// EffectPersist writes isClickThrough and isTransparent, both set to
	// Vanished. When CaptureBounds is set the overlay geometry is written too.
	EffectPersist EffectKind = iota
	// EffectIgnoreMouse sets whether the overlay ignores mouse input.
	EffectIgnoreMouse
	// EffectNotify sends Notification to the overlay.
	EffectNotify
)

// Effect is one side effect a transition requires.
type Effect struct {
	Kind          EffectKind
	Vanished      bool
	CaptureBounds bool
	Notification  types.Notification
}

// Transition returns the next state and its effects. While settings are open
// every input is rejected: the state is returned unchanged with no effects.
func Transition(current State, input Input, settingsOpen bool) (State, []Effect) {
	if settingsOpen {
		return current, nil
	}

	switch {
	case current == Visible && input == Toggle:
		return Vanished, []Effect{
			{Kind: EffectPersist, Vanished: true, CaptureBounds: true},
			{Kind: EffectIgnoreMouse, Vanished: true},
			{Kind: EffectNotify, Notification: types.NewVanishNotification()},
		}
	case current == Vanished:
		return Visible, []Effect{
			{Kind: EffectPersist, Vanished: false},
			{Kind: EffectIgnoreMouse, Vanished: false},
			{Kind: EffectNotify, Notification: types.NewShowAppNotification()},
		}
	default:
		return current, nil
	}
}
