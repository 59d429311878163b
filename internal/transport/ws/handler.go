package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"syntexapply/internal/flow"
	"syntexapply/internal/model"
	"syntexapply/internal/service"
	"syntexapply/internal/transport/rest/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// ClientEvent is a message sent by the browser
type ClientEvent struct {
	Type  MessageType `json:"type"`
	Key   string      `json:"key,omitempty"`
	Value string      `json:"value,omitempty"`
}

// SessionService is the part of the application service driven over WebSocket
type SessionService interface {
	Resolve(token string) (string, error)
	State(ctx context.Context, sessionID string) (*model.FlowView, error)
	SetAnswer(ctx context.Context, sessionID, key, value string) (*model.FlowView, error)
	Advance(ctx context.Context, sessionID string) (*model.FlowView, error)
	Retreat(ctx context.Context, sessionID string) (*model.FlowView, error)
	Submit(ctx context.Context, sessionID string) (*model.FlowView, error)
	Restart(ctx context.Context, sessionID string) (*model.FlowView, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub    *Hub
	appSvc SessionService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, appSvc SessionService) *Handler {
	return &Handler{
		hub:    hub,
		appSvc: appSvc,
	}
}

// SessionWS handles GET /v1/ws/sessions/{token}
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.appSvc.Resolve(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	view, err := h.appSvc.State(r.Context(), sessionID)
	if errors.Is(err, service.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).WithField("session", sessionID).Error("failed to load session for websocket")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	conn := &Connection{
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		Hub:       h.hub,
	}

	h.hub.Register(conn)
	conn.SendTo(MsgState, view)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).WithField("session", conn.SessionID).Warn("websocket read failed")
			}
			break
		}

		var event ClientEvent
		if err := json.Unmarshal(data, &event); err != nil {
			conn.SendTo(MsgError, ErrorPayload{Error: "invalid message"})
			continue
		}
		h.dispatch(context.Background(), conn, event)
	}
}

// dispatch applies one client event. Successful changes reach this
// connection through the session broadcast.
func (h *Handler) dispatch(ctx context.Context, conn *Connection, event ClientEvent) {
	var err error
	switch event.Type {
	case EventSetAnswer:
		_, err = h.appSvc.SetAnswer(ctx, conn.SessionID, event.Key, event.Value)
	case EventAdvance:
		_, err = h.appSvc.Advance(ctx, conn.SessionID)
	case EventRetreat:
		_, err = h.appSvc.Retreat(ctx, conn.SessionID)
	case EventRestart:
		_, err = h.appSvc.Restart(ctx, conn.SessionID)
	case EventSubmit:
		_, err = h.appSvc.Submit(ctx, conn.SessionID)
		if errors.Is(err, flow.ErrSubmission) {
			// already reported through submission_result
			return
		}
	case EventState:
		var view *model.FlowView
		view, err = h.appSvc.State(ctx, conn.SessionID)
		if err == nil {
			conn.SendTo(MsgState, view)
		}
	default:
		err = errors.New("unknown event type")
	}

	if err != nil {
		conn.SendTo(MsgError, ErrorPayload{Error: err.Error(), Event: string(event.Type)})
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
