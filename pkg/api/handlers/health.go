package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/yeehome/pkg/api/types"
	"github.com/urmzd/yeehome/pkg/device"
)

// HealthHandler reports whether a gateway session is up
type HealthHandler struct {
	controller device.Controller
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(controller device.Controller) *HealthHandler {
	return &HealthHandler{controller: controller}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Reports the gateway session and the size of the topology cache. Degraded while no gateway is connected.
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Gateway connected"
// @Failure      503  {object}  types.HealthResponse  "No gateway session"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := types.HealthResponse{
		Status:    "healthy",
		Gateway:   "connected",
		Timestamp: time.Now(),
	}

	session := h.controller.Gateway()
	if h.controller.IsConnected() {
		resp.Address = session.Address
		if !session.ConnectedAt.IsZero() {
			resp.UptimeSeconds = int64(time.Since(session.ConnectedAt).Seconds())
		}
	} else {
		resp.Status = "degraded"
		resp.Gateway = "disconnected"
	}

	// Cache only; never touches the gateway.
	if nodes, err := h.controller.CachedTopology(c.Request.Context()); err != nil {
		log.Debug().Err(err).Msg("Health check could not read topology cache")
	} else {
		resp.CachedNodes = len(nodes)
	}

	httpStatus := http.StatusOK
	if resp.Status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, resp)
}
