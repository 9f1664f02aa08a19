package device

import (
	"context"
	"time"

	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/gateway"
	"github.com/urmzd/yeehome/pkg/topology"
)

// Result is the outcome of one executed intent.
type Result struct {
	Message string                  `json:"message"`
	Command *command.ControlCommand `json:"command"`
	Targets []topology.NodeInfo     `json:"targets"`
	Reply   gateway.Response        `json:"reply"`
}

// GatewayStatus describes the current gateway session.
type GatewayStatus struct {
	Connected   bool          `json:"connected"`
	Address     string        `json:"address,omitempty"`
	Info        *gateway.Info `json:"info,omitempty"`
	ConnectedAt time.Time     `json:"connected_at,omitempty"`
}

// TopologyStore caches topology snapshots between fetches. ReplaceNodes
// stores a fresh fetch as the whole snapshot.
type TopologyStore interface {
	ReplaceNodes(ctx context.Context, nodes []topology.NodeInfo) error
	ListNodes(ctx context.Context) ([]topology.NodeInfo, error)
}

// GatewayRegistry remembers gateways the controller has connected to.
type GatewayRegistry interface {
	Remember(ctx context.Context, ip string, info map[string]string) error
}
