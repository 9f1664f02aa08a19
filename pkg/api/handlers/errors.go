package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/yeehome/pkg/api/types"
	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/gateway"
)

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{gateway.ErrNotConnected, http.StatusServiceUnavailable, "gateway_disconnected"},
	{gateway.ErrConnection, http.StatusServiceUnavailable, "gateway_unreachable"},
	{gateway.ErrProtocolTimeout, http.StatusGatewayTimeout, "timeout"},
	{gateway.ErrDiscovery, http.StatusGatewayTimeout, "discovery_failed"},
	{gateway.ErrProtocolDecode, http.StatusBadGateway, "bad_gateway_reply"},
	{gateway.ErrCorrelation, http.StatusBadGateway, "unmatched_gateway_reply"},
	{command.ErrInvalidIntent, http.StatusBadRequest, "invalid_intent"},
	{command.ErrUnknownDomain, http.StatusBadRequest, "unknown_domain"},
	{command.ErrDeviceNotFound, http.StatusNotFound, "not_found"},
}

// respondError maps err onto an HTTP status and writes an ErrorResponse.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			c.JSON(e.status, types.ErrorResponse{Error: e.code, Message: err.Error()})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, types.ErrorResponse{
		Error:   "controller_error",
		Message: err.Error(),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{
		Error:   "invalid_request",
		Message: msg,
	})
}
