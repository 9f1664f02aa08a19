package types

import (
	"time"

	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/progress"
	"github.com/urmzd/yeehome/pkg/topology"
)

// --- Request DTOs ---

// ConnectRequest is the request body for POST /gateway/connect
type ConnectRequest struct {
	Host string `json:"host" binding:"required"`
}

// ExtractIntentRequest is the request body for POST /intent/extract
type ExtractIntentRequest struct {
	Text    string `json:"text" binding:"required"`
	Execute bool   `json:"execute"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status        string    `json:"status"`
	Gateway       string    `json:"gateway"`
	Address       string    `json:"address,omitempty"`
	UptimeSeconds int64     `json:"uptime_seconds,omitempty"`
	CachedNodes   int       `json:"cached_nodes"`
	Timestamp     time.Time `json:"timestamp"`
}

// TopologyResponse is returned from GET /topology
type TopologyResponse struct {
	Nodes       []topology.NodeInfo `json:"nodes"`
	Count       int                 `json:"count"`
	Cached      bool                `json:"cached"`
	Description string              `json:"description,omitempty"`
}

// DevicesResponse is returned from POST /control/resolve
type DevicesResponse struct {
	Devices []topology.NodeInfo `json:"devices"`
	Count   int                 `json:"count"`
}

// ExtractIntentResponse is returned from POST /intent/extract
type ExtractIntentResponse struct {
	Intent  *command.Intent `json:"intent"`
	Message string          `json:"message,omitempty"`
}

// EventsResponse is returned from GET /events/recent
type EventsResponse struct {
	Events []progress.Event `json:"events"`
}
