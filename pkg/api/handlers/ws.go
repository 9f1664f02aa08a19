package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/yeehome/pkg/progress"
)

const (
	wsPongWait     = 60 * time.Second
	wsPingInterval = 25 * time.Second
	wsWriteWait    = 5 * time.Second
	wsReadLimit    = 1024
)

// WebSocketHandler pushes progress events to browser clients over a
// websocket, one subscription per connection.
type WebSocketHandler struct {
	hub      *progress.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(hub *progress.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// LAN-only service, any origin may subscribe.
				return true
			},
		},
	}
}

// Serve handles GET /ws/progress
// @Summary      Progress websocket
// @Description  Websocket stream of progress events. Recent history is replayed on connect.
// @Tags         events
// @Router       /ws/progress [get]
func (h *WebSocketHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}

	history, events := h.hub.SubscribeWithHistory(defaultRecent)
	done := make(chan struct{})

	go h.writePump(conn, history, events, done)
	h.readPump(conn)

	close(done)
	h.hub.Unsubscribe(events)
}

func (h *WebSocketHandler) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) writePump(conn *websocket.Conn, history []progress.Event, events <-chan progress.Event, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for _, ev := range history {
		if err := writeEvent(conn, ev); err != nil {
			return
		}
	}

	for {
		select {
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev progress.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}
