package ws

import (
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server message types
const (
	MsgState            MessageType = "state"
	MsgSubmissionResult MessageType = "submission_result"
	MsgError            MessageType = "error"
)

// Client event types
const (
	EventSetAnswer MessageType = "set_answer"
	EventAdvance   MessageType = "advance"
	EventRetreat   MessageType = "retreat"
	EventSubmit    MessageType = "submit"
	EventRestart   MessageType = "restart"
	EventState     MessageType = "state"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorPayload is sent with MsgError
type ErrorPayload struct {
	Error string `json:"error"`
	Event string `json:"event,omitempty"`
}

// Hub manages WebSocket connections for applicant sessions.
// A session may have several connections, e.g. one per browser tab.
type Hub struct {
	sessions map[string]map[*Connection]struct{}

	mu sync.RWMutex

	broadcast chan *BroadcastMessage
	done      chan struct{}
	closed    bool
	closeOnce sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID string
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		sessions:  make(map[string]map[*Connection]struct{}),
		broadcast: make(chan *BroadcastMessage, 256),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				log.WithError(err).Error("failed to encode websocket message")
				continue
			}
			h.mu.RLock()
			for conn := range h.sessions[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, conns := range h.sessions {
				for conn := range conns {
					close(conn.Send)
				}
			}
			h.sessions = make(map[string]map[*Connection]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection; it is usable for SendTo as soon as Register returns
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(conn.Send)
		return
	}
	if h.sessions[conn.SessionID] == nil {
		h.sessions[conn.SessionID] = make(map[*Connection]struct{})
	}
	h.sessions[conn.SessionID][conn] = struct{}{}
	log.WithField("session", conn.SessionID).Debug("websocket connected")
}

// Unregister removes a connection and closes its send channel
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.sessions[conn.SessionID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	close(conn.Send)
	if len(conns) == 0 {
		delete(h.sessions, conn.SessionID)
	}
	log.WithField("session", conn.SessionID).Debug("websocket disconnected")
}

// Close disconnects every connection and stops the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()
		close(h.done)
	})
}

// ConnectionCount returns the number of open connections for a session
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// BroadcastToSession sends a message to every connection of a session (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	msg, err := newMessage(MessageType(msgType), payload)
	if err != nil {
		log.WithError(err).WithField("session", sessionID).Error("failed to encode broadcast payload")
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: msg}:
	case <-h.done:
	}
}

// SendTo queues a message for one connection only
func (c *Connection) SendTo(msgType MessageType, payload interface{}) {
	msg, err := newMessage(msgType, payload)
	if err != nil {
		log.WithError(err).WithField("session", c.SessionID).Error("failed to encode message")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.Hub.mu.RLock()
	defer c.Hub.mu.RUnlock()
	if _, ok := c.Hub.sessions[c.SessionID][c]; !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func newMessage(msgType MessageType, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Payload: data}, nil
}
