package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/yeehome/pkg/api/types"
	"github.com/urmzd/yeehome/pkg/device"
)

// GatewayHandler handles gateway discovery and session endpoints
type GatewayHandler struct {
	controller device.Controller
}

// NewGatewayHandler creates a new gateway handler
func NewGatewayHandler(controller device.Controller) *GatewayHandler {
	return &GatewayHandler{controller: controller}
}

// Status handles GET /gateway
// @Summary      Gateway status
// @Description  Returns the current gateway session
// @Tags         gateway
// @Produce      json
// @Success      200  {object}  device.GatewayStatus
// @Router       /gateway [get]
func (h *GatewayHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Gateway())
}

// Scan handles POST /gateway/scan
// @Summary      Scan and connect
// @Description  Broadcasts a discovery probe and connects to the first gateway that answers
// @Tags         gateway
// @Produce      json
// @Success      200  {object}  device.GatewayStatus
// @Failure      503  {object}  types.ErrorResponse  "Gateway unreachable"
// @Failure      504  {object}  types.ErrorResponse  "No gateway answered"
// @Router       /gateway/scan [post]
func (h *GatewayHandler) Scan(c *gin.Context) {
	if _, err := h.controller.ScanAndConnect(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.controller.Gateway())
}

// Connect handles POST /gateway/connect
// @Summary      Connect to a known gateway
// @Description  Opens a session to the given host without discovery
// @Tags         gateway
// @Accept       json
// @Produce      json
// @Param        request  body      types.ConnectRequest  true  "Gateway host"
// @Success      200      {object}  device.GatewayStatus
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      503      {object}  types.ErrorResponse  "Gateway unreachable"
// @Router       /gateway/connect [post]
func (h *GatewayHandler) Connect(c *gin.Context) {
	var req types.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "host is required")
		return
	}

	if _, err := h.controller.Connect(c.Request.Context(), req.Host); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.controller.Gateway())
}
