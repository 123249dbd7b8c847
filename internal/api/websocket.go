package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/calvinwijaya/concentor/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 * 1024
)

// Message represents a WebSocket message
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Command is a player action sent by the browser over the socket
type Command struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// CommandHandler applies a command to the session it was sent for
type CommandHandler func(sessionID string, cmd Command)

// Client represents a connected WebSocket client
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	hub       *Hub
}

// Hub maintains the set of active clients and pushes session events to them
type Hub struct {
	clients    map[*Client]bool
	unregister chan *Client
	sessions   map[string]map[*Client]bool
	handler    CommandHandler
	upgrader   websocket.Upgrader
	log        zerolog.Logger
	done       chan struct{}
	stopped    bool
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub. Origins are checked by checkOrigin; a
// nil func accepts same-host requests only.
func NewHub(checkOrigin func(r *http.Request) bool, log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		unregister: make(chan *Client),
		sessions:   make(map[string]map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log:  log,
		done: make(chan struct{}),
	}
}

// SetCommandHandler installs the function that applies inbound commands
func (h *Hub) SetCommandHandler(fn CommandHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = fn
}

// Run starts the hub and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// add registers a client so it receives every later broadcast. It reports
// false once the hub has stopped.
func (h *Hub) add(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return false
	}
	h.clients[client] = true
	if _, exists := h.sessions[client.sessionID]; !exists {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true
	return true
}

// deliver queues a message for one registered client
func (h *Hub) deliver(client *Client, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

// remove must be called with h.mu held
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	if sessionClients := h.sessions[client.sessionID]; sessionClients != nil {
		delete(sessionClients, client)
		if len(sessionClients) == 0 {
			delete(h.sessions, client.sessionID)
		}
	}
}

// Publish forwards a session event to every client watching that session
func (h *Hub) Publish(e session.Event) {
	h.BroadcastToSession(e.SessionID, Message{
		Type:      string(e.Type),
		SessionID: e.SessionID,
		Data:      e.Snapshot,
	})
}

// BroadcastToSession sends a message to all clients of a specific session
func (h *Hub) BroadcastToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.sessions[sessionID] {
		select {
		case client.send <- data:
		default:
			// Slow client; it will get the next snapshot
		}
	}
}

// ClientCount returns the number of sockets watching a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Serve upgrades the request and attaches the socket to a session. The client
// is registered before welcome runs, so welcome must hand the current state to
// send while holding off newer events.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string, welcome func(send func(Message))) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
		hub:       h,
	}

	if !h.add(client) {
		conn.Close()
		return
	}
	welcome(func(m Message) { h.deliver(client, m) })

	go client.readPump()
	go client.writePump()
}

func (h *Hub) dispatch(sessionID string, cmd Command) {
	h.mu.RLock()
	handler := h.handler
	h.mu.RUnlock()

	if handler != nil {
		handler(sessionID, cmd)
	}
}

// readPump pumps commands from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Err(err).Str("session", c.sessionID).Msg("websocket closed")
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.log.Debug().Err(err).Str("session", c.sessionID).Msg("malformed command")
			continue
		}
		c.hub.dispatch(c.sessionID, cmd)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
