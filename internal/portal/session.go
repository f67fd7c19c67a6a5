package portal

import (
	"sync"

	"github.com/lumocast/pickerd/internal/logger"
)

// Source types offered to requesting apps
const (
	SourceTypeMonitor = 1 << 0
	SourceTypeWindow  = 1 << 1
	SourceTypeVirtual = 1 << 2
)

// Cursor modes
const (
	CursorModeHidden   = 1 << 0
	CursorModeEmbedded = 1 << 1
	CursorModeMetadata = 1 << 2
)

// Persist modes
const (
	PersistModeNone        = 0
	PersistModeApplication = 1
	PersistModeSession     = 2
)

// Session holds the capture preferences accumulated for one portal
// negotiation, keyed by the session handle the portal hands us.
type Session struct {
	SourceTypes  uint32
	CursorMode   uint32
	PersistMode  uint32
	RestoreToken string
}

// SelectOptions carries the already-defaulted values parsed from a
// SelectSources options bag.
type SelectOptions struct {
	SourceTypes  uint32
	CursorMode   uint32
	PersistMode  uint32
	RestoreToken string
}

// Registry tracks sessions by handle. The portal dispatches method calls
// concurrently, so every access goes through the mutex; critical sections
// are map operations only, never I/O.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create inserts a session with default preferences. A duplicate create
// overwrites the previous entry; the portal owns handle uniqueness, so
// this is deliberately not an error.
func (r *Registry) Create(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[handle] = &Session{
		SourceTypes:  0,
		CursorMode:   CursorModeEmbedded,
		PersistMode:  PersistModeNone,
		RestoreToken: "",
	}
}

// Update overwrites the preferences of a known session. An unknown handle
// is a no-op: the portal has no recovery action for it, so we log and
// move on rather than fail the call.
func (r *Registry) Update(handle string, opts SelectOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[handle]
	if !ok {
		logger.WithComponent("registry").Warn().
			Str("session", handle).
			Msg("Update for unknown session, ignoring")
		return
	}

	session.SourceTypes = opts.SourceTypes
	session.CursorMode = opts.CursorMode
	session.PersistMode = opts.PersistMode
	session.RestoreToken = opts.RestoreToken
}

// Get returns a copy of the session for the given handle.
func (r *Registry) Get(handle string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[handle]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Snapshot returns a copy of all tracked sessions, for diagnostics.
func (r *Registry) Snapshot() map[string]Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Session, len(r.sessions))
	for handle, session := range r.sessions {
		out[handle] = *session
	}
	return out
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
