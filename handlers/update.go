package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"guestlist-backend/notifier"
)

const keepaliveInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UpdateHandler pushes each successful check-in to connected WebSocket
// clients.
type UpdateHandler struct {
	notifier *notifier.Notifier
	log      *slog.Logger
}

func NewUpdateHandler(n *notifier.Notifier, log *slog.Logger) *UpdateHandler {
	return &UpdateHandler{notifier: n, log: log}
}

// Updates upgrades the request to a WebSocket and streams checked-in entries
// until the client disconnects or falls too far behind.
func (h *UpdateHandler) Updates(c *gin.Context) {
	// register before the handshake completes so a check-in racing the
	// connection setup is not missed
	sub := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(sub)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	l := h.log.With("subscriber", sub.ID)
	l.Info("update stream opened")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			l.Info("update stream closed by client")
			return
		case entry, ok := <-sub.C:
			if !ok {
				// dropped by the notifier for falling behind
				l.Warn("update stream closed: subscriber dropped")
				return
			}
			if err := conn.WriteJSON(entry); err != nil {
				l.Error("failed to push update", "err", err)
				return
			}
		case <-time.After(keepaliveInterval):
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				l.Error("failed to write keepalive", "err", err)
				return
			}
		}
	}
}
