package portal

import (
	"github.com/godbus/dbus/v5"
)

// Portal options arrive as a{sv} bags. Each key is optional and a value of
// the wrong type counts as absent, falling back to the default: the portal
// spec gives us no way to report a bad option, so defaulting is the only
// non-destructive choice.

func optUint32(options map[string]dbus.Variant, key string, def uint32) uint32 {
	v, ok := options[key]
	if !ok {
		return def
	}
	val, ok := v.Value().(uint32)
	if !ok {
		return def
	}
	return val
}

func optString(options map[string]dbus.Variant, key string, def string) string {
	v, ok := options[key]
	if !ok {
		return def
	}
	val, ok := v.Value().(string)
	if !ok {
		return def
	}
	return val
}

// parseSelectOptions extracts the SelectSources options with their
// documented defaults: all offered source types, embedded cursor, no
// persistence.
func parseSelectOptions(options map[string]dbus.Variant) SelectOptions {
	return SelectOptions{
		SourceTypes:  optUint32(options, "types", SourceTypeMonitor|SourceTypeWindow),
		CursorMode:   optUint32(options, "cursor_mode", CursorModeEmbedded),
		PersistMode:  optUint32(options, "persist_mode", PersistModeNone),
		RestoreToken: optString(options, "restore_token", ""),
	}
}
