//go:build !linux

package capture

import "fmt"

// NewBackend returns an error on platforms without an enumeration
// backend. macOS and Windows support lives in the Lumocast app itself;
// pickerd only runs where xdg-desktop-portal does.
func NewBackend() (Backend, error) {
	return nil, fmt.Errorf("source enumeration not implemented on this platform")
}
