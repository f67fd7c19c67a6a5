package portal

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/lumocast/pickerd/internal/logger"
)

// Bus identity. The interface and object path are fixed by the portal
// contract; the service name is what the xdg-desktop-portal configuration
// points at to route ScreenCast to us.
const (
	ServiceName         = "org.freedesktop.impl.portal.desktop.lumocast"
	ObjectPath          = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	ScreenCastInterface = "org.freedesktop.impl.portal.ScreenCast"
	introspectableIface = "org.freedesktop.DBus.Introspectable"
)

// PortalVersion is the implemented ScreenCast interface version.
const PortalVersion uint32 = 4

// Register exports the backend on the session bus and claims the service
// name. Failure here is fatal to the daemon: without the name the portal
// can never reach us.
func Register(conn *dbus.Conn, backend *Backend) error {
	log := logger.WithComponent("portal")

	if err := conn.Export(backend, ObjectPath, ScreenCastInterface); err != nil {
		return fmt.Errorf("failed to export ScreenCast interface: %w", err)
	}

	// Static capability properties, read by the portal before any session
	// exists: monitors and windows (no virtual), embedded cursor only.
	propsSpec := map[string]map[string]*prop.Prop{
		ScreenCastInterface: {
			"AvailableSourceTypes": {
				Value:    uint32(SourceTypeMonitor | SourceTypeWindow),
				Writable: false,
				Emit:     prop.EmitConst,
			},
			"AvailableCursorModes": {
				Value:    uint32(CursorModeEmbedded),
				Writable: false,
				Emit:     prop.EmitConst,
			},
			"Version": {
				Value:    PortalVersion,
				Writable: false,
				Emit:     prop.EmitConst,
			},
		},
	}
	props, err := prop.Export(conn, ObjectPath, propsSpec)
	if err != nil {
		return fmt.Errorf("failed to export properties: %w", err)
	}

	node := &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       ScreenCastInterface,
				Methods:    screenCastMethods(),
				Properties: props.Introspection(ScreenCastInterface),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath, introspectableIface); err != nil {
		return fmt.Errorf("failed to export introspection data: %w", err)
	}

	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name %s: %w", ServiceName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already owned (reply %d)", ServiceName, reply)
	}

	log.Info().
		Str("service", ServiceName).
		Str("path", string(ObjectPath)).
		Msg("Portal backend registered")
	return nil
}

// screenCastMethods declares the introspection data by hand so the XML
// carries only the portal contract, not accessor methods.
func screenCastMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "CreateSession",
			Args: []introspect.Arg{
				{Name: "handle", Type: "o", Direction: "in"},
				{Name: "session_handle", Type: "o", Direction: "in"},
				{Name: "app_id", Type: "s", Direction: "in"},
				{Name: "options", Type: "a{sv}", Direction: "in"},
				{Name: "response", Type: "u", Direction: "out"},
				{Name: "results", Type: "a{sv}", Direction: "out"},
			},
		},
		{
			Name: "SelectSources",
			Args: []introspect.Arg{
				{Name: "handle", Type: "o", Direction: "in"},
				{Name: "session_handle", Type: "o", Direction: "in"},
				{Name: "app_id", Type: "s", Direction: "in"},
				{Name: "options", Type: "a{sv}", Direction: "in"},
				{Name: "response", Type: "u", Direction: "out"},
				{Name: "results", Type: "a{sv}", Direction: "out"},
			},
		},
		{
			Name: "Start",
			Args: []introspect.Arg{
				{Name: "handle", Type: "o", Direction: "in"},
				{Name: "session_handle", Type: "o", Direction: "in"},
				{Name: "app_id", Type: "s", Direction: "in"},
				{Name: "parent_window", Type: "s", Direction: "in"},
				{Name: "options", Type: "a{sv}", Direction: "in"},
				{Name: "response", Type: "u", Direction: "out"},
				{Name: "results", Type: "a{sv}", Direction: "out"},
			},
		},
	}
}
