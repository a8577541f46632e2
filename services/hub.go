package services

import (
	"encoding/json"
	"log"
	"sync"

	"teamquiz/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Outbound frame types.
const (
	FrameGameState = "game_state"
	FrameTimer     = "timer"
	FrameError     = "error"
)

type gameStateFrame struct {
	Type    string              `json:"type"`
	Session *models.GameSession `json:"session"`
	Teams   []models.Team       `json:"teams"`
}

type timerFrame struct {
	Type    string `json:"type"`
	Seconds int    `json:"seconds"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Hub is the connection registry and broadcast dispatcher: it tracks which
// live connections belong to which session group and fans state frames out
// to whole groups. All mutation goes through the SessionService; the hub
// only reads.
type Hub struct {
	sessions   *SessionService
	clients    map[*Client]bool
	groups     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

type Client struct {
	hub       *Hub
	id        string
	socket    *websocket.Conn
	send      chan []byte
	sessionID string
}

func NewHub(sessions *SessionService) *Hub {
	return &Hub{
		sessions:   sessions,
		clients:    make(map[*Client]bool),
		groups:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			if _, ok := h.groups[client.sessionID]; !ok {
				h.groups[client.sessionID] = make(map[*Client]bool)
			}
			h.groups[client.sessionID][client] = true
			h.mutex.Unlock()
			log.Printf("Client %s joined session %s - total clients: %d", client.id, client.sessionID, len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			h.dropClient(client)
			h.mutex.Unlock()
			log.Printf("Client %s left session %s - total clients: %d", client.id, client.sessionID, len(h.clients))
		}
	}
}

// dropClient removes a client from its group. Safe to call more than once
// for the same client. Callers hold h.mutex.
func (h *Hub) dropClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	if group, ok := h.groups[client.sessionID]; ok {
		delete(group, client)
		if len(group) == 0 {
			delete(h.groups, client.sessionID)
		}
	}
}

// RegisterClient enrolls an already-upgraded connection in its session's
// group, starts its pumps, and queues the initial game_state frame.
func (h *Hub) RegisterClient(conn *websocket.Conn, sessionID string) *Client {
	client := &Client{
		hub:       h,
		id:        uuid.NewString(),
		socket:    conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	client.sendState()
	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// BroadcastToSession delivers one pre-encoded frame to every connection in
// a session's group. Slow clients are dropped rather than blocking the
// rest of the group.
func (h *Hub) BroadcastToSession(sessionID string, data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	group, ok := h.groups[sessionID]
	if !ok {
		return
	}

	for client := range group {
		select {
		case client.send <- data:
		default:
			h.dropClient(client)
		}
	}
}

// BroadcastState reads one consistent snapshot and sends it to the whole
// group. Called after every successful mutating command.
func (h *Hub) BroadcastState(sessionID string) {
	snap, err := h.sessions.Snapshot(sessionID)
	if err != nil {
		log.Printf("Skipping state broadcast for session %s: %v", sessionID, err)
		return
	}

	data, err := json.Marshal(gameStateFrame{
		Type:    FrameGameState,
		Session: snap.Session,
		Teams:   snap.Teams,
	})
	if err != nil {
		log.Printf("Error marshaling game state for session %s: %v", sessionID, err)
		return
	}

	h.BroadcastToSession(sessionID, data)
}

// BroadcastTimer relays an advisory countdown tick. Timer frames are never
// merged into game_state snapshots and touch no stored state.
func (h *Hub) BroadcastTimer(sessionID string, seconds int) {
	data, err := json.Marshal(timerFrame{Type: FrameTimer, Seconds: seconds})
	if err != nil {
		log.Printf("Error marshaling timer frame: %v", err)
		return
	}

	h.BroadcastToSession(sessionID, data)
}

// dispatch routes one decoded command. Mutations go through the store (the
// buzz through its arbitration path) and trigger a group broadcast on
// success; failures are reported to the sender only, with no broadcast.
func (h *Hub) dispatch(c *Client, cmd Command) {
	switch cmd := cmd.(type) {
	case UpdateScoreCommand:
		if _, err := h.sessions.AdjustScore(c.sessionID, cmd.TeamID, cmd.Points); err != nil {
			c.sendError(err)
			return
		}
		h.BroadcastState(c.sessionID)

	case UpdateStatusCommand:
		if err := h.sessions.SetStatus(c.sessionID, cmd.TeamID, cmd.Status); err != nil {
			c.sendError(err)
			return
		}
		h.BroadcastState(c.sessionID)

	case NextQuestionCommand:
		if err := h.sessions.AdvanceQuestion(c.sessionID, cmd.QuestionID); err != nil {
			c.sendError(err)
			return
		}
		h.BroadcastState(c.sessionID)

	case BuzzCommand:
		if _, err := h.sessions.Buzz(c.sessionID, cmd.TeamID); err != nil {
			c.sendError(err)
			return
		}
		// Broadcast even when the buzz lost the race, so every client
		// converges on the winning state at the same time.
		h.BroadcastState(c.sessionID)

	case TimerTickCommand:
		h.BroadcastTimer(c.sessionID, cmd.Seconds)

	default:
		log.Printf("Unhandled command %T from client %s", cmd, c.id)
		c.sendError(ErrUnknownAction)
	}
}

// sendState queues the current snapshot to this client only. Used for the
// initial frame on join.
func (c *Client) sendState() {
	snap, err := c.hub.sessions.CachedSnapshot(c.sessionID)
	if err != nil {
		log.Printf("Error reading state for client %s: %v", c.id, err)
		return
	}

	data, err := json.Marshal(gameStateFrame{
		Type:    FrameGameState,
		Session: snap.Session,
		Teams:   snap.Teams,
	})
	if err != nil {
		log.Printf("Error marshaling game state for client %s: %v", c.id, err)
		return
	}

	c.queue(data)
}

func (c *Client) sendError(err error) {
	data, merr := json.Marshal(errorFrame{Type: FrameError, Error: err.Error()})
	if merr != nil {
		return
	}
	c.queue(data)
}

func (c *Client) queue(data []byte) {
	defer func() {
		// The send channel closes on unregister; losing a frame to a
		// just-departed client is fine.
		_ = recover()
	}()

	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		cmd, err := DecodeCommand(message)
		if err != nil {
			log.Printf("Rejecting message from client %s: %v", c.id, err)
			c.sendError(err)
			continue
		}

		c.hub.dispatch(c, cmd)
	}
}

func (c *Client) writePump() {
	defer func() {
		c.socket.Close()
	}()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}

	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}
