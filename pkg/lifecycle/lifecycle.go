// Package lifecycle creates and tears down the overlay and settings windows
// and keeps their persisted records in step with the native windows.
package lifecycle

import (
	"errors"

	"github.com/entrhq/ghostchat/pkg/logging"
	"github.com/entrhq/ghostchat/pkg/window"
)

var (
	// ErrCreateOverlay is fatal: without an overlay there is no app.
	ErrCreateOverlay = errors.New("failed to create overlay window")

	// ErrCreateSettings leaves the settings slot empty; the next open retries.
	ErrCreateSettings = errors.New("failed to create settings window")
)

var (
	overlayLog  *logging.Logger
	settingsLog *logging.Logger
)

func init() {
	var err error
	overlayLog, err = logging.NewLogger("overlay")
	if err != nil {
		overlayLog.Warnf("Failed to initialize overlay logger, using stderr fallback: %v", err)
	}
	settingsLog, err = logging.NewLogger("settings")
	if err != nil {
		settingsLog.Warnf("Failed to initialize settings logger, using stderr fallback: %v", err)
	}
}

// SettingsRoute is the content route the settings window opens on.
const SettingsRoute = "settings/general"

// Entry is where window content is loaded from. A non-empty DevServerURL
// wins over IndexHTML and opens devtools.
type Entry struct {
	IndexHTML    string
	DevServerURL string
}

func (e Entry) load(h window.Handle, route string) error {
	if e.DevServerURL != "" {
		url := e.DevServerURL
		if route != "" {
			url += "#" + route
		}
		if err := h.LoadURL(url); err != nil {
			return err
		}
		h.OpenDevTools()
		return nil
	}
	return h.LoadFile(e.IndexHTML, route)
}

// openExternally returns a WillNavigate hook that sends every navigation to
// the OS handler instead of the window.
func openExternally(host window.Host, log *logging.Logger) func(string) bool {
	return func(url string) bool {
		log.Infof("Opening external link to %s", url)
		if err := host.OpenExternal(url); err != nil {
			log.Errorf("Failed to open %s: %v", url, err)
		}
		return true
	}
}
