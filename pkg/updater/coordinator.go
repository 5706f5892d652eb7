// Package updater runs the update check state machine on top of a release
// backend, gated by the user's update channel and the host platform.
package updater

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/entrhq/ghostchat/pkg/logging"
	"github.com/entrhq/ghostchat/pkg/state"
	"github.com/entrhq/ghostchat/pkg/types"
	"github.com/entrhq/ghostchat/pkg/window"
)

// ErrBackend wraps every failure reported by the release backend.
var ErrBackend = errors.New("update backend failed")

var updaterLog *logging.Logger

func init() {
	var err error
	updaterLog, err = logging.NewLogger("updater")
	if err != nil {
		updaterLog.Warnf("Failed to initialize updater logger, using stderr fallback: %v", err)
	}
}

// Status is the state of the current update cycle.
type Status int

const (
	Idle Status = iota
	Checking
	NoUpdateFound
	UpdateFound
	Downloading
	Downloaded
	ManualActionRequired
	Errored
)

var statusNames = map[Status]string{
	Idle:                 "idle",
	Checking:             "checking",
	NoUpdateFound:        "no-update-found",
	UpdateFound:          "update-found",
	Downloading:          "downloading",
	Downloaded:           "downloaded",
	ManualActionRequired: "manual-action-required",
	Errored:              "errored",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal reports whether s ends a cycle. A terminal cycle returns to
// Idle on the next check request.
func (s Status) IsTerminal() bool {
	switch s {
	case Downloaded, NoUpdateFound, ManualActionRequired, Errored:
		return true
	}
	return false
}

// Options configures a Coordinator.
type Options struct {
	Backend  Backend
	Settings *window.Slot
	Platform window.Platform
	Channel  state.UpdateChannel

	ForceDevUpdateConfig bool

	// Schedule, when set, moves backend events onto the caller's goroutine.
	Schedule func(func())

	// Context bounds downloads started from backend events.
	Context context.Context
}

// Coordinator tracks one update cycle at a time and reports progress to the
// settings window. It is not safe for concurrent use; backend events must be
// serialized through Options.Schedule.
type Coordinator struct {
	backend         Backend
	settings        *window.Slot
	platform        window.Platform
	allowPrerelease bool
	ctx             context.Context

	status  Status
	version string
}

// New builds a coordinator and configures the backend: downloads are always
// explicit, the web installer is off and prereleases follow the channel.
func New(opts Options) *Coordinator {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Coordinator{
		backend:         opts.Backend,
		settings:        opts.Settings,
		platform:        opts.Platform,
		allowPrerelease: opts.Channel == state.ChannelBeta,
		ctx:             ctx,
	}

	var l Listener = c
	if opts.Schedule != nil {
		l = Scheduled(c, opts.Schedule)
	}
	c.backend.Configure(Config{
		AutoDownload:         false,
		DisableWebInstaller:  true,
		AllowPrerelease:      c.allowPrerelease,
		ForceDevUpdateConfig: opts.ForceDevUpdateConfig,
	}, l)

	return c
}

// Status returns the current state.
func (c *Coordinator) Status() Status {
	return c.status
}

// Version returns the version of the last visible update, if any.
func (c *Coordinator) Version() string {
	return c.version
}

// RequestCheck starts a check when idle or after a finished cycle. A cycle
// in flight is never re-entered. It reports whether a check started.
func (c *Coordinator) RequestCheck(ctx context.Context) bool {
	if c.status.IsTerminal() {
		c.transition(Idle)
	}
	if c.status != Idle {
		updaterLog.Infof("Update check already in progress (%s), ignoring request", c.status)
		return false
	}

	c.version = ""
	c.transition(Checking)
	if err := c.backend.CheckForUpdatesAndNotify(ctx); err != nil {
		c.Error(err)
	}
	return true
}

// CheckingForUpdate is reported by the backend when a check begins.
func (c *Coordinator) CheckingForUpdate() {
	updaterLog.Infof("Checking for update")
	if c.status == Idle {
		c.transition(Checking)
	}
}

// UpdateAvailable handles a release newer than the running version.
func (c *Coordinator) UpdateAvailable(version string) {
	updaterLog.Infof("Update available %s", version)
	if c.status != Checking && c.status != Idle {
		updaterLog.Warnf("Ignoring update-available in state %s", c.status)
		return
	}

	if isPrerelease(version) && !c.allowPrerelease {
		updaterLog.Infof("Prerelease %s hidden on the stable channel", version)
		c.finish(NoUpdateFound, types.NewUpdateNotAvailableNotification())
		return
	}

	c.version = version
	c.transition(UpdateFound)

	if !c.platform.SupportsSilentUpdate() {
		c.finish(ManualActionRequired, types.NewManualUpdateRequiredNotification(version))
		return
	}

	c.transition(Downloading)
	c.settings.Send(types.NewUpdateAvailableNotification(version))
	if err := c.backend.DownloadUpdate(c.ctx); err != nil {
		c.Error(err)
	}
}

// UpdateNotAvailable ends the cycle with nothing to do.
func (c *Coordinator) UpdateNotAvailable() {
	updaterLog.Infof("Update not available")
	if c.status != Checking && c.status != Idle {
		updaterLog.Warnf("Ignoring update-not-available in state %s", c.status)
		return
	}
	c.finish(NoUpdateFound, types.NewUpdateNotAvailableNotification())
}

// UpdateDownloaded ends the cycle with an installable update.
func (c *Coordinator) UpdateDownloaded() {
	updaterLog.Infof("Update downloaded %s", c.version)
	if c.status != Downloading {
		updaterLog.Warnf("Ignoring update-downloaded in state %s", c.status)
		return
	}
	c.finish(Downloaded, types.NewUpdateDownloadedNotification())
}

// Error ends the cycle. The settings window only learns that something
// failed; the detail stays in the log.
func (c *Coordinator) Error(err error) {
	updaterLog.Errorf("%v", fmt.Errorf("%w: %v", ErrBackend, err))
	c.finish(Errored, types.NewUpdateErrorNotification())
}

func (c *Coordinator) finish(status Status, n types.Notification) {
	c.transition(status)
	c.settings.Send(n)
}

func (c *Coordinator) transition(to Status) {
	if c.status != to {
		updaterLog.Debugf("Update state %s -> %s", c.status, to)
	}
	c.status = to
}

// isPrerelease reports whether version carries a prerelease tag. Versions
// that are not valid semver fall back to looking for a beta marker.
func isPrerelease(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return strings.Contains(version, "beta")
	}
	return v.Prerelease() != ""
}
