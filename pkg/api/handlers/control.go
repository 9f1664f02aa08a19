package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/yeehome/pkg/api/types"
	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/device"
)

// ControlHandler handles intent execution endpoints
type ControlHandler struct {
	controller device.Controller
}

// NewControlHandler creates a new control handler
func NewControlHandler(controller device.Controller) *ControlHandler {
	return &ControlHandler{controller: controller}
}

// Execute handles POST /control
// @Summary      Execute an intent
// @Description  Resolves the intent against the topology and sends the control command to the gateway
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        request  body      command.Intent  true  "Intent to execute"
// @Success      200      {object}  device.Result
// @Failure      400      {object}  types.ErrorResponse  "Invalid intent"
// @Failure      404      {object}  types.ErrorResponse  "No matching device"
// @Failure      502      {object}  types.ErrorResponse  "Unexpected gateway reply"
// @Failure      503      {object}  types.ErrorResponse  "Gateway disconnected"
// @Failure      504      {object}  types.ErrorResponse  "Request timed out"
// @Router       /control [post]
func (h *ControlHandler) Execute(c *gin.Context) {
	var intent command.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	res, err := h.controller.Execute(c.Request.Context(), intent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Resolve handles POST /control/resolve
// @Summary      Resolve an intent
// @Description  Returns the topology nodes an intent would address, without sending anything
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        request  body      command.Intent  true  "Intent to resolve"
// @Success      200      {object}  types.DevicesResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid intent"
// @Failure      404      {object}  types.ErrorResponse  "No matching device"
// @Router       /control/resolve [post]
func (h *ControlHandler) Resolve(c *gin.Context) {
	var intent command.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	nodes, err := h.controller.FindDevices(c.Request.Context(), intent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DevicesResponse{Devices: nodes, Count: len(nodes)})
}

// Extract handles POST /intent/extract
// @Summary      Extract an intent from model output
// @Description  Parses the intent object out of raw language-model text and optionally executes it
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        request  body      types.ExtractIntentRequest  true  "Raw model output"
// @Success      200      {object}  types.ExtractIntentResponse
// @Failure      400      {object}  types.ErrorResponse  "No intent found"
// @Router       /intent/extract [post]
func (h *ControlHandler) Extract(c *gin.Context) {
	var req types.ExtractIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "text is required")
		return
	}

	intent, err := command.ExtractIntent(req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := types.ExtractIntentResponse{Intent: intent}
	if req.Execute {
		res, err := h.controller.Execute(c.Request.Context(), *intent)
		if err != nil {
			log.Warn().Err(err).Str("domain", intent.Domain).Str("name", intent.Name).Msg("Extracted intent failed")
			respondError(c, err)
			return
		}
		resp.Message = res.Message
	}
	c.JSON(http.StatusOK, resp)
}
