package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/yeehome/pkg/api/types"
	"github.com/urmzd/yeehome/pkg/progress"
)

const (
	heartbeatInterval = 30 * time.Second
	defaultRecent     = 50
)

// EventsHandler streams progress events
type EventsHandler struct {
	hub *progress.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *progress.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Recent handles GET /events/recent
// @Summary      Recent progress events
// @Description  Returns the most recent progress events, oldest first
// @Tags         events
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of events (default 50)"
// @Success      200    {object}  types.EventsResponse
// @Router       /events/recent [get]
func (h *EventsHandler) Recent(c *gin.Context) {
	limit := defaultRecent
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	c.JSON(http.StatusOK, types.EventsResponse{Events: h.hub.Recent(limit)})
}

// Stream handles GET /events (SSE stream)
// @Summary      Subscribe to progress events
// @Description  Server-Sent Events stream of scan, connect and control progress
// @Tags         events
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE event stream"
// @Router       /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events := h.hub.Subscribe()
	defer h.hub.Unsubscribe(events)

	sendSSEEvent(c.Writer, "connected", map[string]any{
		"timestamp": time.Now(),
		"message":   "Connected to progress event stream",
	})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			sendSSEEvent(c.Writer, "progress", ev)
			c.Writer.Flush()

		case <-ticker.C:
			sendSSEEvent(c.Writer, "heartbeat", map[string]any{
				"timestamp": time.Now(),
			})
			c.Writer.Flush()
		}
	}
}

// sendSSEEvent writes an SSE event to the response
func sendSSEEvent(w io.Writer, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: "+string(jsonData)+"\n\n")
}
