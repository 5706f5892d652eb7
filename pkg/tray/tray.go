// Package tray describes the tray menu. Every actionable item maps to a
// signal so tray clicks take the same path as window signals.
package tray

import (
	"fmt"

	"github.com/entrhq/ghostchat/pkg/logging"
	"github.com/entrhq/ghostchat/pkg/types"
)

var trayLog *logging.Logger

func init() {
	var err error
	trayLog, err = logging.NewLogger("tray")
	if err != nil {
		trayLog.Warnf("Failed to initialize tray logger, using stderr fallback: %v", err)
	}
}

// Item is one menu entry. Disabled items carry no signal.
type Item struct {
	Label   string
	Enabled bool
	Signal  types.Signal
}

// Menu is the tray tooltip and its entries, top to bottom.
type Menu struct {
	Tooltip string
	Items   []Item
}

// Build returns the menu for the running version.
func Build(version string) Menu {
	title := fmt.Sprintf("GhostChat v%s", version)
	return Menu{
		Tooltip: title,
		Items: []Item{
			{Label: title},
			{Label: "Open config", Enabled: true, Signal: types.OpenConfigLocation{}},
			{Label: "Disable Vanish", Enabled: true, Signal: types.DisableVanish{}},
			{Label: "Disable Click-Through", Enabled: true, Signal: types.DisableClickThrough{}},
			{Label: "Exit", Enabled: true, Signal: types.Exit{}},
		},
	}
}

// Activate posts the signal of item i. It reports false for disabled or
// out-of-range items.
func (m Menu) Activate(i int, post func(types.Signal)) bool {
	if i < 0 || i >= len(m.Items) {
		return false
	}
	item := m.Items[i]
	if !item.Enabled || item.Signal == nil {
		return false
	}
	trayLog.Infof("Tray item %q selected", item.Label)
	post(item.Signal)
	return true
}
