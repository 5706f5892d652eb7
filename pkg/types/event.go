package types

// NotificationKind identifies a message sent from the engine to a window.
type NotificationKind string

const (
	NotifyRerender             NotificationKind = "rerender"               // NotifyRerender asks the window to rerender from the store.
	NotifyThemeChanged         NotificationKind = "theme-changed"          // NotifyThemeChanged carries the new theme.
	NotifyShowApp              NotificationKind = "show-app"               // NotifyShowApp asks the overlay to leave vanished visuals.
	NotifyVanish               NotificationKind = "vanish"                 // NotifyVanish asks the overlay to enter vanished visuals.
	NotifyCloseSettings        NotificationKind = "close-settings"         // NotifyCloseSettings tells the overlay settings closed.
	NotifyUpdateAvailable      NotificationKind = "update-available"       // NotifyUpdateAvailable carries the version being downloaded.
	NotifyUpdateNotAvailable   NotificationKind = "update-not-available"   // NotifyUpdateNotAvailable reports no visible update.
	NotifyManualUpdateRequired NotificationKind = "manual-update-required" // NotifyManualUpdateRequired carries a version the user must install.
	NotifyUpdateDownloaded     NotificationKind = "update-downloaded"      // NotifyUpdateDownloaded reports a finished download.
	NotifyUpdateError          NotificationKind = "update-error"           // NotifyUpdateError reports a failure without detail.
)

// Notification is a named message delivered to a window's content.
type Notification struct {
	// Kind indicates the kind of notification.
	Kind NotificationKind

	// Payload holds the optional argument (theme, version).
	Payload string
}

// NewRerenderNotification creates a rerender notice.
func NewRerenderNotification() Notification {
	return Notification{Kind: NotifyRerender}
}

// NewThemeChangedNotification creates a theme change notice.
func NewThemeChangedNotification(theme Theme) Notification {
	return Notification{Kind: NotifyThemeChanged, Payload: string(theme)}
}

// NewShowAppNotification creates a notice that leaves vanished visuals.
func NewShowAppNotification() Notification {
	return Notification{Kind: NotifyShowApp}
}

// NewVanishNotification creates a notice that enters vanished visuals.
func NewVanishNotification() Notification {
	return Notification{Kind: NotifyVanish}
}

// NewCloseSettingsNotification creates the settings-closed notice.
func NewCloseSettingsNotification() Notification {
	return Notification{Kind: NotifyCloseSettings}
}

// NewUpdateAvailableNotification creates an update-available notice.
func NewUpdateAvailableNotification(version string) Notification {
	return Notification{Kind: NotifyUpdateAvailable, Payload: version}
}

// NewUpdateNotAvailableNotification creates a no-update notice.
func NewUpdateNotAvailableNotification() Notification {
	return Notification{Kind: NotifyUpdateNotAvailable}
}

// NewManualUpdateRequiredNotification creates a manual-install notice.
func NewManualUpdateRequiredNotification(version string) Notification {
	return Notification{Kind: NotifyManualUpdateRequired, Payload: version}
}

// NewUpdateDownloadedNotification creates a download-finished notice.
func NewUpdateDownloadedNotification() Notification {
	return Notification{Kind: NotifyUpdateDownloaded}
}

// NewUpdateErrorNotification creates a generic update failure notice.
func NewUpdateErrorNotification() Notification {
	return Notification{Kind: NotifyUpdateError}
}

// IsUpdateNotification returns true for update status notices.
func (n Notification) IsUpdateNotification() bool {
	switch n.Kind {
	case NotifyUpdateAvailable, NotifyUpdateNotAvailable, NotifyManualUpdateRequired,
		NotifyUpdateDownloaded, NotifyUpdateError:
		return true
	default:
		return false
	}
}

// IsVisibilityNotification returns true for vanish/show notices.
func (n Notification) IsVisibilityNotification() bool {
	return n.Kind == NotifyShowApp || n.Kind == NotifyVanish
}

// String renders the notification as kind or kind(payload).
func (n Notification) String() string {
	if n.Payload == "" {
		return string(n.Kind)
	}
	return string(n.Kind) + "(" + n.Payload + ")"
}
