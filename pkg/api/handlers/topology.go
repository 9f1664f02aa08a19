package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/yeehome/pkg/api/types"
	"github.com/urmzd/yeehome/pkg/device"
	"github.com/urmzd/yeehome/pkg/topology"
)

// TopologyHandler handles topology endpoints
type TopologyHandler struct {
	controller device.Controller
}

// NewTopologyHandler creates a new topology handler
func NewTopologyHandler(controller device.Controller) *TopologyHandler {
	return &TopologyHandler{controller: controller}
}

// Get handles GET /topology
// @Summary      Gateway topology
// @Description  Returns devices, groups, scenes and rooms. With cached=true the stored snapshot is returned without contacting the gateway.
// @Tags         topology
// @Produce      json
// @Param        cached    query     bool  false  "Serve the cached snapshot"
// @Param        describe  query     bool  false  "Include the grouped text description"
// @Success      200       {object}  types.TopologyResponse
// @Failure      503       {object}  types.ErrorResponse  "Gateway disconnected"
// @Failure      504       {object}  types.ErrorResponse  "Request timed out"
// @Router       /topology [get]
func (h *TopologyHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	cached, _ := strconv.ParseBool(c.Query("cached"))
	describe, _ := strconv.ParseBool(c.Query("describe"))

	var (
		nodes []topology.NodeInfo
		err   error
	)
	if cached {
		nodes, err = h.controller.CachedTopology(ctx)
	} else {
		nodes, err = h.controller.Topology(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if nodes == nil {
		nodes = []topology.NodeInfo{}
	}

	resp := types.TopologyResponse{
		Nodes:  nodes,
		Count:  len(nodes),
		Cached: cached,
	}
	if describe {
		resp.Description = topology.Describe(nodes)
	}
	c.JSON(http.StatusOK, resp)
}
