package portal

import (
	"github.com/godbus/dbus/v5"
	"github.com/lumocast/pickerd/internal/ipc"
)

// Stream is one entry of the a(ua{sv}) streams array the portal expects
// from Start. Node ID 0 is a placeholder meaning "resolve the identified
// source to a real PipeWire node downstream"; this daemon never owns a
// node itself.
type Stream struct {
	NodeID     uint32
	Properties map[string]dbus.Variant
}

// point marshals as (ii), the shape the portal documents for stream
// position and size.
type point struct {
	X int32
	Y int32
}

// mapSourceType maps the app's selection tag to the portal's numeric
// source type. A region is reported as a full monitor; the consumer crops
// to the attached geometry. Unknown tags also fall back to monitor so the
// mapping stays total and deterministic.
func mapSourceType(tag string) uint32 {
	switch tag {
	case "monitor":
		return SourceTypeMonitor
	case "window":
		return SourceTypeWindow
	case "region":
		return SourceTypeMonitor
	default:
		return SourceTypeMonitor
	}
}

// buildStreams builds the single-element streams array for a selection.
func buildStreams(sel *ipc.Selection) []Stream {
	props := map[string]dbus.Variant{
		"source_type": dbus.MakeVariant(mapSourceType(sel.SourceType)),
		"id":          dbus.MakeVariant(sel.SourceID),
	}

	if geom := sel.Geometry; geom != nil {
		props["position"] = dbus.MakeVariant(point{X: geom.X, Y: geom.Y})
		props["size"] = dbus.MakeVariant(point{X: int32(geom.Width), Y: int32(geom.Height)})
	}

	return []Stream{{NodeID: 0, Properties: props}}
}
