package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/olahol/melody"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/prefs"
)

// Message types pushed to websocket clients.
const (
	TypeNotification = "notification"
	TypePreferences  = "preferences"
)

// Message is the envelope of every websocket frame.
type Message struct {
	Type         string             `json:"type"`
	Notification *core.Notification `json:"notification,omitempty"`
	Preferences  *prefs.State       `json:"preferences,omitempty"`
}

// Hub pushes toasts and theme changes to every connected browser session.
type Hub struct {
	m      *melody.Melody
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Discard()
	}
	h := &Hub{m: melody.New(), logger: logger.WithComponent(log.ComponentNotify)}

	h.m.Config.MaxMessageSize = 4096
	h.m.Config.PingPeriod = 30 * time.Second
	h.m.Config.PongWait = 60 * time.Second

	h.m.HandleConnect(func(s *melody.Session) {
		h.logger.Debug("Websocket client connected", "remote_addr", s.Request.RemoteAddr)
	})
	h.m.HandleDisconnect(func(s *melody.Session) {
		h.logger.Debug("Websocket client disconnected", "remote_addr", s.Request.RemoteAddr)
	})
	h.m.HandleError(func(s *melody.Session, err error) {
		h.logger.Warn("Websocket error", log.FieldError, err)
	})
	return h
}

// HandleRequest upgrades the request to a websocket session.
func (h *Hub) HandleRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.m.HandleRequest(w, r); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to upgrade websocket", log.FieldError, err)
	}
}

func (h *Hub) Notify(ctx context.Context, n core.Notification) {
	h.broadcast(ctx, Message{Type: TypeNotification, Notification: &n})
}

// PreferencesChanged is a prefs.Listener.
func (h *Hub) PreferencesChanged(st prefs.State) {
	h.broadcast(context.Background(), Message{Type: TypePreferences, Preferences: &st})
}

func (h *Hub) broadcast(ctx context.Context, msg Message) {
	if h.m.IsClosed() || h.m.Len() == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to encode websocket message", log.FieldError, err)
		return
	}
	if err := h.m.Broadcast(data); err != nil {
		h.logger.WarnContext(ctx, "Failed to broadcast websocket message", log.FieldError, err)
	}
}

// Sessions is the number of connected clients.
func (h *Hub) Sessions() int {
	return h.m.Len()
}

func (h *Hub) Close() error {
	if h.m.IsClosed() {
		return nil
	}
	return h.m.Close()
}
