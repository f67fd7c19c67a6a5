package capture

import (
	"github.com/lumocast/pickerd/internal/logger"
)

// The portal backend never enumerates sources itself; the Lumocast app
// owns the real capture pipeline. This package exists for diagnostics
// (startup logging and the CLI dump commands) and is best-effort by
// design.

// MonitorInfo describes a connected display.
type MonitorInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	X       int32  `json:"x"`
	Y       int32  `json:"y"`
	Width   uint32 `json:"width"`
	Height  uint32 `json:"height"`
	Primary bool   `json:"primary"`
}

// WindowInfo describes a visible application window.
type WindowInfo struct {
	ID    uint32 `json:"id"`
	Title string `json:"title"`
	Class string `json:"class"`
}

// MonitorEnumerator lists connected monitors.
type MonitorEnumerator interface {
	ListMonitors() ([]MonitorInfo, error)
}

// WindowEnumerator lists visible, capturable windows.
type WindowEnumerator interface {
	ListWindows() ([]WindowInfo, error)
}

// Backend is a platform enumeration backend.
type Backend interface {
	MonitorEnumerator
	WindowEnumerator

	// Name returns the backend name (e.g. "x11").
	Name() string

	// Close releases the display server connection, if any.
	Close() error
}

// ListMonitors enumerates monitors via the platform backend. Enumeration
// failure degrades to an empty result with a logged warning; callers here
// are diagnostic and must not fail because a display server is missing.
func ListMonitors() []MonitorInfo {
	backend, err := NewBackend()
	if err != nil {
		logger.WithComponent("capture").Warn().Err(err).Msg("Monitor enumeration unavailable")
		return []MonitorInfo{}
	}
	defer backend.Close()

	monitors, err := backend.ListMonitors()
	if err != nil {
		logger.WithComponent("capture").Warn().Err(err).Msg("Monitor enumeration failed")
		return []MonitorInfo{}
	}
	return monitors
}

// ListWindows enumerates windows via the platform backend, with the same
// log-and-default policy as ListMonitors.
func ListWindows() []WindowInfo {
	backend, err := NewBackend()
	if err != nil {
		logger.WithComponent("capture").Warn().Err(err).Msg("Window enumeration unavailable")
		return []WindowInfo{}
	}
	defer backend.Close()

	windows, err := backend.ListWindows()
	if err != nil {
		logger.WithComponent("capture").Warn().Err(err).Msg("Window enumeration failed")
		return []WindowInfo{}
	}
	return windows
}
