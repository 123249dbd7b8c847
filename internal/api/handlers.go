package api

import (
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/calvinwijaya/concentor/internal/assets"
	"github.com/calvinwijaya/concentor/internal/game"
	"github.com/calvinwijaya/concentor/internal/session"
	"github.com/calvinwijaya/concentor/internal/store"
)

//go:embed web/index.html
var web embed.FS

// SessionFactory builds an unstarted session that reports events to notify
type SessionFactory func(id string, notify session.Notifier) (*session.Session, error)

// Handlers contains all the API handlers
type Handlers struct {
	store      store.Store
	hub        *Hub
	images     *assets.Set
	newSession SessionFactory
	log        zerolog.Logger
}

// NewHandlers creates a new instance of Handlers and routes socket commands
// from hub to the stored sessions.
func NewHandlers(store store.Store, hub *Hub, images *assets.Set, factory SessionFactory, log zerolog.Logger) *Handlers {
	h := &Handlers{
		store:      store,
		hub:        hub,
		images:     images,
		newSession: factory,
		log:        log,
	}
	hub.SetCommandHandler(h.applyCommand)
	return h
}

// RegisterRoutes registers all routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Board page and card images
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/assets/cards", h.CardNames).Methods("GET")
	r.HandleFunc("/assets/cards/{name}", h.CardImage).Methods("GET")

	// Session endpoints
	r.HandleFunc("/api/session", h.NewSession).Methods("POST")
	r.HandleFunc("/api/sessions", h.ListSessions).Methods("GET")
	r.HandleFunc("/api/session/{id}", h.GetSession).Methods("GET")
	r.HandleFunc("/api/session/{id}", h.DeleteSession).Methods("DELETE")
	r.HandleFunc("/api/session/{id}/select", h.Select).Methods("POST")
	r.HandleFunc("/api/session/{id}/restart", h.Restart).Methods("POST")

	// WebSocket endpoint
	r.HandleFunc("/ws", h.WebSocket)
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

// Index serves the board page
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	page, err := web.ReadFile("web/index.html")
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Board page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// CardNames lists every servable image so the page can preload them
func (h *Handlers) CardNames(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, h.images.Names())
}

// CardImage serves one card face or the card back
func (h *Handlers) CardImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	data, ok := h.images.Image(name)
	if !ok {
		errorResponse(w, http.StatusNotFound, "Image not found")
		return
	}

	w.Header().Set("Content-Type", assets.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}

// NewSession creates and starts a new round
func (h *Handlers) NewSession(w http.ResponseWriter, r *http.Request) {
	id := store.NewID()

	sess, err := h.newSession(id, h.hub.Publish)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create session")
		errorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	if err := h.store.SaveSession(sess); err != nil {
		sess.Close()
		h.log.Error().Err(err).Msg("failed to save session")
		errorResponse(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	snap := sess.Start()
	h.log.Info().Str("session", id).Msg("session created")

	response(w, http.StatusCreated, map[string]interface{}{
		"id":   id,
		"game": snap,
	})
}

// GetSession returns the current board of a session
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	response(w, http.StatusOK, sess.Snapshot())
}

// DeleteSession stops a session's timers and forgets it
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.DeleteSession(id); err != nil {
		errorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	h.hub.BroadcastToSession(id, Message{Type: "closed", SessionID: id})

	response(w, http.StatusOK, map[string]string{
		"success": "true",
		"message": "Session closed",
	})
}

// Select reveals a tile. Rejected selections still succeed so the board
// stays forgiving; the outcome says what happened.
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req struct {
		Index *int `json:"index"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, snap := sess.Select(*req.Index)

	response(w, http.StatusOK, map[string]interface{}{
		"outcome": outcome,
		"game":    snap,
	})
}

// Restart reshuffles the board once the preview has finished
func (h *Handlers) Restart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	snap, err := sess.Restart()
	switch {
	case errors.Is(err, session.ErrRestartUnavailable):
		errorResponse(w, http.StatusConflict, "Restart is not available yet")
		return
	case errors.Is(err, session.ErrClosed):
		errorResponse(w, http.StatusNotFound, "Session not found")
		return
	case err != nil:
		errorResponse(w, http.StatusInternalServerError, "Unable to restart")
		return
	}

	response(w, http.StatusOK, snap)
}

// ListSessions returns a summary of every live session
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.AllSessions()
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Error retrieving sessions")
		return
	}

	list := make([]map[string]interface{}, 0, len(sessions))
	for _, sess := range sessions {
		snap := sess.Snapshot()
		list = append(list, map[string]interface{}{
			"id":         sess.ID,
			"phase":      snap.Phase,
			"matches":    snap.Matches,
			"errors":     snap.Errors,
			"elapsed":    snap.Elapsed,
			"clients":    h.hub.ClientCount(sess.ID),
			"lastActive": sess.LastActive().Format(time.RFC3339),
		})
	}

	response(w, http.StatusOK, list)
}

// WebSocket attaches a socket to an existing session
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("sessionId")

	sess, err := h.store.GetSession(id)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	h.hub.Serve(w, r, id, func(send func(Message)) {
		sess.View(func(snap game.Snapshot) {
			send(Message{
				Type:      string(session.StateEvent),
				SessionID: id,
				Data:      snap,
			})
		})
	})
}

// applyCommand runs a socket command; results reach the client as events
func (h *Handlers) applyCommand(sessionID string, cmd Command) {
	sess, err := h.store.GetSession(sessionID)
	if err != nil {
		return
	}

	switch cmd.Type {
	case "select":
		sess.Select(cmd.Index)
	case "restart":
		if _, err := sess.Restart(); err != nil {
			h.log.Debug().Err(err).Str("session", sessionID).Msg("restart ignored")
		}
	default:
		h.log.Debug().Str("session", sessionID).Str("type", cmd.Type).Msg("unknown command")
	}
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := mux.Vars(r)["id"]

	sess, err := h.store.GetSession(id)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return sess, true
}

// Reap closes sessions idle since before cutoff and tells their clients
func (h *Handlers) Reap(cutoff time.Time) []string {
	ids := h.store.Reap(cutoff)
	for _, id := range ids {
		h.hub.BroadcastToSession(id, Message{Type: "expired", SessionID: id})
		h.log.Info().Str("session", id).Msg("session expired")
	}
	return ids
}
