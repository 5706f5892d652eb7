package window

import "runtime"

// Platform is the host operating system identifier reported to content.
type Platform string

const (
	PlatformDarwin  Platform = "darwin"
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "windows"
)

// CurrentPlatform returns the platform this binary was built for.
func CurrentPlatform() Platform {
	return Platform(runtime.GOOS)
}

// IsDarwin reports whether p is macOS.
func (p Platform) IsDarwin() bool {
	return p == PlatformDarwin
}

// SupportsSilentUpdate reports whether updates may be downloaded and
// installed in the background. macOS builds require a manual install.
func (p Platform) SupportsSilentUpdate() bool {
	return !p.IsDarwin()
}

// String returns the identifier.
func (p Platform) String() string {
	return string(p)
}
