package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/lumocast/pickerd/internal/ipc"
	"github.com/lumocast/pickerd/internal/logger"
	"github.com/lumocast/pickerd/internal/portal"
)

// Server is the localhost status API. It is a diagnostic surface only:
// the portal backend never depends on it, and it is disabled unless a
// port is configured.
type Server struct {
	router   *mux.Router
	registry *portal.Registry
	querier  portal.SelectionQuerier
	upgrader websocket.Upgrader
}

// NewServer creates a status API server over the portal's registry and
// selection querier.
func NewServer(registry *portal.Registry, querier portal.SelectionQuerier) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		registry: registry,
		querier:  querier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Loopback-only server; origin checks add nothing here.
				return true
			},
		},
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/sessions", s.handleSessions).Methods("GET")
	api.HandleFunc("/selection", s.handleSelection).Methods("GET")
	api.HandleFunc("/selection/stream", s.handleSelectionStream)
}

// Start starts the HTTP server on loopback.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	logger.WithComponent("api").Info().Str("addr", addr).Msg("Status API listening")
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	type sessionView struct {
		Handle       string `json:"handle"`
		SourceTypes  uint32 `json:"source_types"`
		CursorMode   uint32 `json:"cursor_mode"`
		PersistMode  uint32 `json:"persist_mode"`
		RestoreToken bool   `json:"has_restore_token"`
	}

	snapshot := s.registry.Snapshot()
	sessions := make([]sessionView, 0, len(snapshot))
	for handle, session := range snapshot {
		sessions = append(sessions, sessionView{
			Handle:       handle,
			SourceTypes:  session.SourceTypes,
			CursorMode:   session.CursorMode,
			PersistMode:  session.PersistMode,
			RestoreToken: session.RestoreToken != "",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

// selectionView is the JSON shape for one selection query outcome.
type selectionView struct {
	State     string         `json:"state"` // "selection", "none", "error" or "unreachable"
	Selection *ipc.Selection `json:"selection,omitempty"`
	Message   string         `json:"message,omitempty"`
}

func (s *Server) querySelectionView(r *http.Request) selectionView {
	resp, err := s.querier.QuerySelection(r.Context())
	if err != nil {
		return selectionView{State: "unreachable", Message: err.Error()}
	}
	switch resp.Kind {
	case ipc.KindSelection:
		return selectionView{State: "selection", Selection: resp.Selection}
	case ipc.KindError:
		return selectionView{State: "error", Message: resp.Message}
	default:
		return selectionView{State: "none"}
	}
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	view := s.querySelectionView(r)

	w.Header().Set("Content-Type", "application/json")
	if view.State == "unreachable" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(view)
}

// handleSelectionStream pushes the selection state over a websocket,
// polling the app at a gentle interval and writing only on change.
func (s *Server) handleSelectionStream(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("api")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var last selectionView
	first := true
	for {
		view := s.querySelectionView(r)
		if first || !reflect.DeepEqual(view, last) {
			if err := conn.WriteJSON(view); err != nil {
				log.Debug().Err(err).Msg("Websocket client gone")
				return
			}
			last = view
			first = false
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
