//go:build linux

package capture

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// X11Backend enumerates monitors and windows over an X11 (or XWayland)
// connection.
type X11Backend struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window
}

// NewBackend connects to the X server.
func NewBackend() (Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	return &X11Backend{
		conn:   conn,
		screen: screen,
		root:   screen.Root,
	}, nil
}

// Name returns the backend name.
func (b *X11Backend) Name() string {
	return "x11"
}

// Close closes the X connection.
func (b *X11Backend) Close() error {
	b.conn.Close()
	return nil
}

// ListMonitors reports the root screen as a single monitor. Multi-head
// layouts show up as one combined screen here; per-output geometry would
// need RandR, which this diagnostic surface does not justify.
func (b *X11Backend) ListMonitors() ([]MonitorInfo, error) {
	return []MonitorInfo{
		{
			ID:      "x11-0",
			Name:    "X11 Screen 0",
			X:       0,
			Y:       0,
			Width:   uint32(b.screen.WidthInPixels),
			Height:  uint32(b.screen.HeightInPixels),
			Primary: true,
		},
	}, nil
}

// ListWindows returns visible application windows from the EWMH
// _NET_CLIENT_LIST. Windows without a title and class are skipped; those
// are usually not user windows.
func (b *X11Backend) ListWindows() ([]WindowInfo, error) {
	clientListAtom, err := b.getAtom("_NET_CLIENT_LIST")
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST atom: %w", err)
	}

	reply, err := xproto.GetProperty(
		b.conn,
		false,
		b.root,
		clientListAtom,
		xproto.GetPropertyTypeAny,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST property: %w", err)
	}

	windows := make([]WindowInfo, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		winID := xproto.Window(uint32(reply.Value[i]) |
			uint32(reply.Value[i+1])<<8 |
			uint32(reply.Value[i+2])<<16 |
			uint32(reply.Value[i+3])<<24)

		info := WindowInfo{
			ID:    uint32(winID),
			Title: b.windowTitle(winID),
			Class: b.windowClass(winID),
		}
		if info.Title == "" && info.Class == "" {
			continue
		}
		windows = append(windows, info)
	}

	return windows, nil
}

// windowTitle reads _NET_WM_NAME, falling back to WM_NAME.
func (b *X11Backend) windowTitle(win xproto.Window) string {
	if title := b.stringProperty(win, "_NET_WM_NAME"); title != "" {
		return title
	}
	return b.stringProperty(win, "WM_NAME")
}

// windowClass reads the class part of WM_CLASS (instance\0class\0).
func (b *X11Backend) windowClass(win xproto.Window) string {
	raw := b.stringProperty(win, "WM_CLASS")
	if raw == "" {
		return ""
	}
	parts := bytes.Split([]byte(raw), []byte{0})
	if len(parts) >= 2 && len(parts[1]) > 0 {
		return string(parts[1])
	}
	return string(parts[0])
}

func (b *X11Backend) stringProperty(win xproto.Window, name string) string {
	atom, err := b.getAtom(name)
	if err != nil {
		return ""
	}
	reply, err := xproto.GetProperty(
		b.conn,
		false,
		win,
		atom,
		xproto.GetPropertyTypeAny,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil || reply.ValueLen == 0 {
		return ""
	}
	return string(bytes.TrimRight(reply.Value, "\x00"))
}

func (b *X11Backend) getAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(b.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}
