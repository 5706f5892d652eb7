package updater

import "context"

// Config is applied to a Backend once, when the coordinator is built.
type Config struct {
	AutoDownload         bool
	DisableWebInstaller  bool
	AllowPrerelease      bool
	ForceDevUpdateConfig bool
}

// Listener receives backend events. Backends may call it from any
// goroutine; wrap it with Scheduled to move events onto one goroutine.
type Listener interface {
	CheckingForUpdate()
	UpdateAvailable(version string)
	UpdateNotAvailable()
	UpdateDownloaded()
	Error(err error)
}

// Backend checks for and downloads releases. Both operations return as soon
// as the work is started; outcomes arrive on the Listener.
type Backend interface {
	Configure(cfg Config, l Listener)
	CheckForUpdatesAndNotify(ctx context.Context) error
	DownloadUpdate(ctx context.Context) error
}

type scheduled struct {
	l        Listener
	schedule func(func())
}

// Scheduled returns a Listener that hands every event to schedule instead
// of calling l directly.
func Scheduled(l Listener, schedule func(func())) Listener {
	return &scheduled{l: l, schedule: schedule}
}

func (s *scheduled) CheckingForUpdate() {
	s.schedule(s.l.CheckingForUpdate)
}

func (s *scheduled) UpdateAvailable(version string) {
	s.schedule(func() { s.l.UpdateAvailable(version) })
}

func (s *scheduled) UpdateNotAvailable() {
	s.schedule(s.l.UpdateNotAvailable)
}

func (s *scheduled) UpdateDownloaded() {
	s.schedule(s.l.UpdateDownloaded)
}

func (s *scheduled) Error(err error) {
	s.schedule(func() { s.l.Error(err) })
}
