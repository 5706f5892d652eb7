package window

import "github.com/entrhq/ghostchat/pkg/types"

// Slot holds the current handle of one window role. The owning lifecycle
// fills and clears it; every other component looks the handle up on demand
// instead of keeping its own reference, so a destroyed window reads as
// absent rather than stale.
type Slot struct {
	name   string
	handle Handle
}

// NewSlot creates an empty slot for the named window role.
func NewSlot(name string) *Slot {
	return &Slot{name: name}
}

// Name returns the window role.
func (s *Slot) Name() string {
	return s.name
}

// Get returns the live handle, or nil when empty or destroyed.
func (s *Slot) Get() Handle {
	if s.handle == nil || s.handle.IsDestroyed() {
		return nil
	}
	return s.handle
}

// Set stores h as the current handle.
func (s *Slot) Set(h Handle) {
	s.handle = h
}

// Clear empties the slot.
func (s *Slot) Clear() {
	s.handle = nil
}

// Send delivers n to the live handle. Sending to an absent window is a
// silent no-op and reports false.
func (s *Slot) Send(n types.Notification) bool {
	h := s.Get()
	if h == nil {
		return false
	}
	h.Send(n)
	return true
}

// Do runs fn with the live handle and reports whether it ran.
func (s *Slot) Do(fn func(Handle)) bool {
	h := s.Get()
	if h == nil {
		return false
	}
	fn(h)
	return true
}
