package portal

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/lumocast/pickerd/internal/ipc"
	"github.com/lumocast/pickerd/internal/logger"
)

// Portal response codes. OtherError is part of the protocol but this
// backend never emits it: every failure is an auto-cancel.
const (
	ResponseSuccess    uint32 = 0
	ResponseCancelled  uint32 = 1
	ResponseOtherError uint32 = 2
)

// SelectionQuerier asks the Lumocast app for the current capture
// selection. Satisfied by *ipc.Client.
type SelectionQuerier interface {
	QuerySelection(ctx context.Context) (*ipc.Response, error)
}

// Backend implements org.freedesktop.impl.portal.ScreenCast. Instead of
// showing a picker dialog it auto-approves with whatever the user already
// selected in the Lumocast app.
//
// xdg-desktop-portal dispatches method calls concurrently; all shared
// state lives in the registry behind its mutex, and the IPC query in Start
// runs outside any lock so slow queries never stall other sessions.
type Backend struct {
	registry *Registry
	querier  SelectionQuerier
}

// NewBackend creates a ScreenCast backend over the given registry and
// selection querier.
func NewBackend(registry *Registry, querier SelectionQuerier) *Backend {
	return &Backend{
		registry: registry,
		querier:  querier,
	}
}

// Registry returns the session registry, for the status API.
func (b *Backend) Registry() *Registry {
	return b.registry
}

// CreateSession seeds a default session for the handle. It always
// succeeds; the portal has already authorized the caller, so appID is
// informational only.
func (b *Backend) CreateSession(handle, sessionHandle dbus.ObjectPath, appID string, options map[string]dbus.Variant) (uint32, map[string]dbus.Variant, *dbus.Error) {
	logger.WithComponent("portal").Info().
		Str("handle", string(handle)).
		Str("session", string(sessionHandle)).
		Str("app_id", appID).
		Msg("CreateSession")

	b.registry.Create(string(sessionHandle))

	return ResponseSuccess, map[string]dbus.Variant{}, nil
}

// SelectSources stores the requested capture preferences on the session.
// Always succeeds, even for an unknown session: the update is dropped with
// a warning because the portal cannot act on a failure here.
func (b *Backend) SelectSources(handle, sessionHandle dbus.ObjectPath, appID string, options map[string]dbus.Variant) (uint32, map[string]dbus.Variant, *dbus.Error) {
	opts := parseSelectOptions(options)

	logger.WithComponent("portal").Info().
		Str("session", string(sessionHandle)).
		Uint32("types", opts.SourceTypes).
		Uint32("cursor_mode", opts.CursorMode).
		Uint32("persist_mode", opts.PersistMode).
		Bool("has_restore_token", opts.RestoreToken != "").
		Msg("SelectSources")

	b.registry.Update(string(sessionHandle), opts)

	return ResponseSuccess, map[string]dbus.Variant{}, nil
}

// Start queries the app for the current selection and answers the portal.
// A selection becomes a single stream descriptor; no selection, an app
// error, or an unreachable app all become a user-style cancel, since the
// portal protocol has no error-detail field on this path.
func (b *Backend) Start(handle, sessionHandle dbus.ObjectPath, appID, parentWindow string, options map[string]dbus.Variant) (uint32, map[string]dbus.Variant, *dbus.Error) {
	log := logger.WithComponent("portal")
	log.Info().
		Str("handle", string(handle)).
		Str("session", string(sessionHandle)).
		Msg("Start")

	if session, ok := b.registry.Get(string(sessionHandle)); ok {
		// Stored preferences could narrow the query in the future; today
		// they only inform logging.
		log.Debug().
			Uint32("types", session.SourceTypes).
			Uint32("cursor_mode", session.CursorMode).
			Msg("Session preferences")
	} else {
		log.Warn().
			Str("session", string(sessionHandle)).
			Msg("Start for unknown session")
	}

	resp, err := b.querier.QuerySelection(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Failed to query app for selection, cancelling")
		return ResponseCancelled, map[string]dbus.Variant{}, nil
	}

	switch resp.Kind {
	case ipc.KindSelection:
		sel := resp.Selection
		log.Info().
			Str("source_type", sel.SourceType).
			Str("source_id", sel.SourceID).
			Bool("has_geometry", sel.Geometry != nil).
			Msg("Got selection from app")

		results := map[string]dbus.Variant{
			"streams": dbus.MakeVariant(buildStreams(sel)),
		}
		return ResponseSuccess, results, nil

	case ipc.KindNoSelection:
		log.Warn().Msg("No selection available in app, cancelling")
		return ResponseCancelled, map[string]dbus.Variant{}, nil

	case ipc.KindError:
		log.Error().Str("message", resp.Message).Msg("App reported selection error, cancelling")
		return ResponseCancelled, map[string]dbus.Variant{}, nil

	default:
		log.Error().Int("kind", int(resp.Kind)).Msg("Unhandled response kind, cancelling")
		return ResponseCancelled, map[string]dbus.Variant{}, nil
	}
}
